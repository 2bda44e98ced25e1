// Package requestcontext provides HTTP-independent context accessors for
// request-scoped values.
//
// Middleware sets these values; services and the audit recorder consume them.
// Keeping the package free of net/http lets workers and tests inject values
// without running the middleware chain.
//
// Usage in services (read values):
//
//	actorID := requestcontext.ActorID(ctx)
//	requestID := requestcontext.RequestID(ctx)
//	now := requestcontext.Now(ctx)
//
// Usage in middleware (set values):
//
//	ctx = requestcontext.WithActor(ctx, userID, userEmail)
//	ctx = requestcontext.WithRequestID(ctx, requestID)
package requestcontext

import (
	"context"
	"time"
)

type (
	actorIDKey     struct{}
	actorEmailKey  struct{}
	requestIDKey   struct{}
	requestTimeKey struct{}
)

// ActorID retrieves the acting user's identifier from the context.
// Returns empty string if not set (anonymous mutation).
func ActorID(ctx context.Context) string {
	if v, ok := ctx.Value(actorIDKey{}).(string); ok {
		return v
	}
	return ""
}

// ActorEmail retrieves the acting user's email from the context.
func ActorEmail(ctx context.Context) string {
	if v, ok := ctx.Value(actorEmailKey{}).(string); ok {
		return v
	}
	return ""
}

// WithActor injects actor identity into the context. Either value may be
// empty; the audit trail stores them independently.
func WithActor(ctx context.Context, actorID, actorEmail string) context.Context {
	if actorID != "" {
		ctx = context.WithValue(ctx, actorIDKey{}, actorID)
	}
	if actorEmail != "" {
		ctx = context.WithValue(ctx, actorEmailKey{}, actorEmail)
	}
	return ctx
}

// RequestID retrieves the request ID from the context.
func RequestID(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDKey{}).(string); ok {
		return v
	}
	return ""
}

// WithRequestID injects a request ID into the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// Now retrieves the request-scoped time from context.
// Falls back to time.Now() for non-HTTP contexts (workers, CLI, tests).
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(requestTimeKey{}).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime injects a specific time into a context. Useful for service unit
// tests that don't run the full HTTP middleware chain.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, requestTimeKey{}, t)
}
