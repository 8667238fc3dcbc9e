package authz

import "context"

// Actor is the authenticated caller of a request. Platform administrators
// have no tenant; TenantID is empty for them.
type Actor struct {
	UserID   string
	TenantID string
	Role     Role
}

func (a Actor) IsPlatformAdmin() bool {
	return a.Role == RolePlatformAdmin && a.TenantID == ""
}

type actorKey struct{}

func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

func ActorFromContext(ctx context.Context) (Actor, bool) {
	actor, ok := ctx.Value(actorKey{}).(Actor)
	return actor, ok
}

// MustActor returns the actor or a zero Actor when unauthenticated; callers
// that require authentication go through the Authenticate middleware first.
func MustActor(ctx context.Context) Actor {
	actor, _ := ActorFromContext(ctx)
	return actor
}
