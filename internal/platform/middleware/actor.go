package middleware

import (
	"net/http"

	"mbatrack/pkg/requestcontext"
)

// Actor identity headers. Authentication is out of scope for this service;
// the reverse proxy in front of it asserts these headers after login, and the
// audit trail records them as the acting user.
const (
	UserIDHeader    = "X-User-ID"
	UserEmailHeader = "X-User-Email"
)

// Actor copies the asserted actor identity into the request context so the
// audit recorder can attribute mutations. Both headers are optional and are
// stored independently.
func Actor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithActor(r.Context(),
			r.Header.Get(UserIDHeader),
			r.Header.Get(UserEmailHeader),
		)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
