package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/wolfman30/orbit-landing/pkg/logging"
)

// Recoverer turns a handler panic into a logged JSON 500.
func Recoverer(logger *logging.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				logger.Error("panic serving request",
					"panic", rec,
					"path", r.URL.Path,
					"request_id", RequestIDFromContext(r.Context()),
					"stack", string(debug.Stack()),
				)
				writeError(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred.")
			}()
			next.ServeHTTP(w, r)
		})
	}
}
