package middleware

import (
	"context"

	"github.com/karavanrugs/karavan-backend/pkg/types"
)

type contextKey string

const ctxActor contextKey = "actor"

// ActorFromContext returns the authenticated actor, or a zero Actor when the
// request never passed the auth middleware.
func ActorFromContext(ctx context.Context) types.Actor {
	if ctx == nil {
		return types.Actor{}
	}
	if actor, ok := ctx.Value(ctxActor).(types.Actor); ok {
		return actor
	}
	return types.Actor{}
}

// WithActor injects the actor into the context.
func WithActor(ctx context.Context, actor types.Actor) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxActor, actor)
}
