package middleware

import (
	"net/http"
	"time"

	"mbatrack/pkg/requestcontext"
)

// RequestTime captures one "now" at the start of the request. Every timestamp
// a mutation produces (UpdatedAt, audit CreatedAt fallbacks, payment dates
// defaulted server-side) derives from it, so a single request never straddles
// a clock tick.
func RequestTime(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithTime(r.Context(), time.Now())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
