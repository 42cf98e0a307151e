package handler

import (
	"errors"
	"net/http"

	"github.com/buddyboard/buddyboard/internal/middleware"
	"github.com/buddyboard/buddyboard/internal/models"
	"github.com/buddyboard/buddyboard/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// ApplicationsHandler lets admins decide job applications
type ApplicationsHandler struct {
	jobs *service.JobService
}

func NewApplicationsHandler(jobs *service.JobService) *ApplicationsHandler {
	return &ApplicationsHandler{jobs: jobs}
}

// Approve handles PUT /api/v1/admin/applications/{id}/approve
func (h *ApplicationsHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, true)
}

// Reject handles PUT /api/v1/admin/applications/{id}/reject
func (h *ApplicationsHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, false)
}

func (h *ApplicationsHandler) decide(w http.ResponseWriter, r *http.Request, accept bool) {
	id := chi.URLParam(r, "id")
	app, err := h.jobs.DecideApplication(r.Context(), id, accept)
	if errors.Is(err, service.ErrNotFound) {
		models.WriteError(w, http.StatusNotFound, "application not found")
		return
	}
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	log.Info().
		Str("application_id", app.ID).
		Str("job_id", app.JobID).
		Str("status", app.Status).
		Str("request_id", middleware.GetRequestID(r.Context())).
		Msg("application decided")
	models.WriteJSON(w, http.StatusOK, app)
}
