package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"mbatrack/pkg/requestcontext"
)

// RequestIDHeader is honored when the caller supplies its own correlation ID.
const RequestIDHeader = "X-Request-ID"

// RequestID attaches a correlation ID to every request. Incoming IDs are
// reused so log lines can be joined across services; otherwise a fresh UUID
// is generated. The ID is echoed on the response.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, requestID)

		ctx := requestcontext.WithRequestID(r.Context(), requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
