package middleware

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	"mbatrack/pkg/requestcontext"
)

// AdminTokenHeader carries the shared operator token for mutating routes.
const AdminTokenHeader = "X-Admin-Token"

// RequireAdminToken guards mutating routes behind a shared token; safe
// methods pass through unchecked. When the configured token is empty the
// middleware is a no-op, which keeps local development and handler tests
// friction-free.
func RequireAdminToken(token string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token == "" || isSafeMethod(r.Method) {
				next.ServeHTTP(w, r)
				return
			}

			presented := r.Header.Get(AdminTokenHeader)
			if subtle.ConstantTimeCompare([]byte(presented), []byte(token)) != 1 {
				if logger != nil {
					logger.WarnContext(r.Context(), "admin token rejected",
						"request_id", requestcontext.RequestID(r.Context()),
						"path", r.URL.Path,
					)
				}
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				_, _ = w.Write([]byte(`{"error":"forbidden"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}
