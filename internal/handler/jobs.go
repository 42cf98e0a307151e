package handler

import (
	"encoding/json"
	"net/http"

	"github.com/buddyboard/buddyboard/internal/models"
	"github.com/buddyboard/buddyboard/internal/service"
	"github.com/go-chi/chi/v5"
)

// JobsHandler handles job post endpoints
type JobsHandler struct {
	jobs *service.JobService
}

func NewJobsHandler(jobs *service.JobService) *JobsHandler {
	return &JobsHandler{jobs: jobs}
}

// ListCategories handles GET /api/v1/jobs/categories
func (h *JobsHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.jobs.ListCategories(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	models.WriteJSON(w, http.StatusOK, categories)
}

// ListJobs handles GET /api/v1/jobs?categoryId=
func (h *JobsHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.jobs.ListJobs(r.Context(), r.URL.Query().Get("categoryId"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	models.WriteJSON(w, http.StatusOK, jobs)
}

// GetJob handles GET /api/v1/jobs/{id}
func (h *JobsHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	job, err := h.jobs.GetJob(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	models.WriteJSON(w, http.StatusOK, job)
}

// CreateJob handles POST /api/v1/jobs
func (h *JobsHandler) CreateJob(w http.ResponseWriter, r *http.Request) {
	var req models.CreateJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		models.WriteError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	job, err := h.jobs.CreateJob(r.Context(), actorFrom(r), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	models.WriteJSON(w, http.StatusCreated, job)
}

// UpdateJob handles PUT /api/v1/jobs/{id}
func (h *JobsHandler) UpdateJob(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		models.WriteError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	job, err := h.jobs.UpdateJob(r.Context(), actorFrom(r), chi.URLParam(r, "id"), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	models.WriteJSON(w, http.StatusOK, job)
}

// DeleteJob handles DELETE /api/v1/jobs/{id}
func (h *JobsHandler) DeleteJob(w http.ResponseWriter, r *http.Request) {
	if err := h.jobs.DeleteJob(r.Context(), actorFrom(r), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListComments handles GET /api/v1/jobs/{id}/comments
func (h *JobsHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	comments, err := h.jobs.ListComments(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	models.WriteJSON(w, http.StatusOK, comments)
}

// CreateComment handles POST /api/v1/jobs/{id}/comments
func (h *JobsHandler) CreateComment(w http.ResponseWriter, r *http.Request) {
	var req models.CreateCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		models.WriteError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	comment, err := h.jobs.CreateComment(r.Context(), actorFrom(r), chi.URLParam(r, "id"), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	models.WriteJSON(w, http.StatusCreated, comment)
}

// Apply handles POST /api/v1/jobs/{id}/apply
func (h *JobsHandler) Apply(w http.ResponseWriter, r *http.Request) {
	app, err := h.jobs.ApplyToJob(r.Context(), actorFrom(r), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	models.WriteJSON(w, http.StatusCreated, app)
}

// MyApplications handles GET /api/v1/users/my-applications
func (h *JobsHandler) MyApplications(w http.ResponseWriter, r *http.Request) {
	apps, err := h.jobs.ListMyApplications(r.Context(), actorFrom(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	models.WriteJSON(w, http.StatusOK, apps)
}
