package shared

import (
	"context"

	"github.com/sefer-erp/sefer-erp/internal/rbac"
)

// Actor identifies the authenticated caller for capability checks.
// Session issuance itself happens in an external auth service; this
// core only consumes the resolved identity.
type Actor struct {
	ID   int64
	Name string
	Role rbac.Role
}

type actorContextKey struct{}

// ContextWithActor stores the actor in context.
func ContextWithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

// ActorFromContext extracts the actor from context. The second return
// value is false for unauthenticated requests.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(Actor)
	return actor, ok
}
