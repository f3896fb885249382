// Package requestcontext provides HTTP-independent accessors for
// request-scoped values.
//
// Middleware sets these values; services and handlers read them. Keeping the
// package free of net/http lets services depend on it without pulling in
// transport code, and lets tests inject values directly:
//
//	ctx = requestcontext.WithActor(ctx, actorID, role)
//	ctx = requestcontext.WithTime(ctx, fixedTime)
package requestcontext

import (
	"context"
	"time"

	"cargotrace/pkg/domain"
)

type (
	actorIDKey     struct{}
	actorRoleKey   struct{}
	requestIDKey   struct{}
	requestTimeKey struct{}
)

// Exported keys for tests that need raw context.WithValue.
var (
	ContextKeyActorID     = actorIDKey{}
	ContextKeyActorRole   = actorRoleKey{}
	ContextKeyRequestID   = requestIDKey{}
	ContextKeyRequestTime = requestTimeKey{}
)

// ActorID retrieves the authenticated actor ID, or the zero value if unset.
func ActorID(ctx context.Context) domain.ActorID {
	if id, ok := ctx.Value(ContextKeyActorID).(domain.ActorID); ok {
		return id
	}
	return domain.ActorID{}
}

// ActorRole retrieves the authenticated actor's role, or "" if unset.
func ActorRole(ctx context.Context) domain.Role {
	if role, ok := ctx.Value(ContextKeyActorRole).(domain.Role); ok {
		return role
	}
	return ""
}

// WithActor injects the authenticated actor identity into the context.
func WithActor(ctx context.Context, id domain.ActorID, role domain.Role) context.Context {
	ctx = context.WithValue(ctx, ContextKeyActorID, id)
	return context.WithValue(ctx, ContextKeyActorRole, role)
}

// RequestID retrieves the request ID assigned by the router middleware.
func RequestID(ctx context.Context) string {
	if reqID, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return reqID
	}
	return ""
}

// WithRequestID injects a request ID into the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// Now retrieves the request-scoped time, falling back to time.Now() for
// non-HTTP contexts (workers, pollers, tests that don't care).
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(ContextKeyRequestTime).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime pins the request-scoped clock. Used by tests that need
// deterministic timestamps and by workers batching under one instant.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, ContextKeyRequestTime, t)
}
