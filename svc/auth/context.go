package auth

import "context"

// Identity is the resolved (user, session) pair the authentication stage
// attaches to the request context for downstream handlers.
type Identity struct {
	User    *User
	Session *Session
}

type identityContextKey struct{}

// WithIdentity stores the resolved identity in ctx.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, id)
}

// IdentityFromContext retrieves the identity attached by Authenticate.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityContextKey{}).(Identity)
	return id, ok
}

// MustIdentityFromContext retrieves the identity or panics. For handlers
// that are only ever mounted behind Authenticate.
func MustIdentityFromContext(ctx context.Context) Identity {
	id, ok := IdentityFromContext(ctx)
	if !ok {
		panic("auth: identity not found in context")
	}
	return id
}
