package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/buddyboard/buddyboard/internal/models"
	"github.com/rs/zerolog/log"
)

// Recovery turns a handler panic into a 500 carrying the request ID so the
// client can quote it.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			id := GetRequestID(r.Context())
			log.Error().
				Interface("panic", rec).
				Bytes("stack", debug.Stack()).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("request_id", id).
				Msg("panic recovered")

			msg := "internal server error"
			if id != "" {
				msg += " (request " + id + ")"
			}
			models.WriteError(w, http.StatusInternalServerError, msg)
		}()
		next.ServeHTTP(w, r)
	})
}
