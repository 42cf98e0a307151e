package handler

import (
	"errors"
	"net/http"

	"github.com/buddyboard/buddyboard/internal/middleware"
	"github.com/buddyboard/buddyboard/internal/models"
	"github.com/buddyboard/buddyboard/internal/service"
	"github.com/rs/zerolog/log"
)

// UserIDHeader carries the authenticated user ID set by the upstream gateway
const UserIDHeader = middleware.UserIDHeader

func actorFrom(r *http.Request) service.Actor {
	return service.Actor{
		UserID:    r.Header.Get(UserIDHeader),
		RequestID: middleware.GetRequestID(r.Context()),
	}
}

// writeServiceError maps service errors onto HTTP responses
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var contentErr *service.ContentError
	var validationErr *service.ValidationError

	switch {
	case errors.As(err, &contentErr):
		models.WriteFieldErrors(w, http.StatusUnprocessableEntity, "content policy violation", contentErr.Fields())
	case errors.As(err, &validationErr):
		models.WriteFieldErrors(w, http.StatusBadRequest, "validation failed", validationErr.Fields)
	case errors.Is(err, service.ErrUnauthenticated):
		models.WriteError(w, http.StatusUnauthorized, "user identity required")
	case errors.Is(err, service.ErrForbidden):
		models.WriteError(w, http.StatusForbidden, "only the author can modify this job post")
	case errors.Is(err, service.ErrAlreadyApplied), errors.Is(err, service.ErrAlreadyDecided):
		models.WriteError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrNotFound):
		models.WriteError(w, http.StatusNotFound, "job post not found")
	default:
		log.Error().Err(err).
			Str("path", r.URL.Path).
			Str("request_id", middleware.GetRequestID(r.Context())).
			Msg("request failed")
		models.WriteError(w, http.StatusInternalServerError, "internal server error")
	}
}
