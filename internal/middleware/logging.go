package middleware

import (
	"net/http"
	"time"

	"github.com/buddyboard/buddyboard/internal/security"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type responseWriter struct {
	http.ResponseWriter
	status int
	size   int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.size += n
	return n, err
}

// Logging writes one line per request. 5xx logs at error, 4xx at warn; the
// acting user is logged hashed.
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rw, r)

		var evt *zerolog.Event
		switch {
		case rw.status >= 500:
			evt = log.Error()
		case rw.status >= 400:
			evt = log.Warn()
		default:
			evt = log.Info()
		}
		if user := r.Header.Get(UserIDHeader); user != "" {
			evt = evt.Str("user_hash", security.HashID(user))
		}
		evt.Str("request_id", GetRequestID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rw.status).
			Int("size", rw.size).
			Dur("duration", time.Since(start)).
			Str("remote_addr", r.RemoteAddr).
			Msg("request")
	})
}
