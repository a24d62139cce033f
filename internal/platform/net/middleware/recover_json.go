package middleware

import (
	"net/http"
	"runtime/debug"

	perr "gittracker/internal/platform/errors"
	"gittracker/internal/platform/logger"
	phttp "gittracker/internal/platform/net/http"
)

// RecoverJSON converts handler panics into a JSON 500 instead of a dropped conn
func RecoverJSON() func(http.Handler) http.Handler {
	log := logger.Named("http.recover")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					log.Error().
						Any("panic", rec).
						Bytes("stack", debug.Stack()).
						Str("path", r.URL.Path).
						Msg("handler panic")
					phttp.RespondError(w, perr.Internalf("internal error"))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
