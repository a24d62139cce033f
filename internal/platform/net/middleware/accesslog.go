package middleware

import (
	"net/http"
	"time"

	"gittracker/internal/platform/logger"
)

// AccessLog emits one structured line per request
func AccessLog() func(http.Handler) http.Handler {
	log := logger.Named("http.access")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			cw := &captureWriter{ResponseWriter: w}
			next.ServeHTTP(cw, r)

			status := cw.status
			if status == 0 {
				status = http.StatusOK
			}
			log.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", status).
				Int("bytes", cw.bytes).
				Dur("dur", time.Since(start)).
				Str("remote", r.RemoteAddr).
				Msg("request")
		})
	}
}
