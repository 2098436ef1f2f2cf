package middleware

import (
	"context"

	"github.com/orderdesk/orderdesk-backend/internal/identity"
)

type contextKey string

const ctxActor contextKey = "actor"

// ActorFromContext returns the authenticated actor seeded by Auth, or a zero
// actor when the request is unauthenticated.
func ActorFromContext(ctx context.Context) identity.Actor {
	if ctx == nil {
		return identity.Actor{}
	}
	if actor, ok := ctx.Value(ctxActor).(identity.Actor); ok {
		return actor
	}
	return identity.Actor{}
}

// WithActor injects the actor into the context.
func WithActor(ctx context.Context, actor identity.Actor) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxActor, actor)
}
