package notes

import (
	"context"

	"github.com/goliatone/go-notes/middleware/jwtware"
)

// Identity is the resolved principal attached to an authenticated request
type Identity = jwtware.Identity

var identityCtxKey = &contextKey{"identity"}

type contextKey struct {
	name string
}

// WithIdentity sets the Identity in the given context
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityCtxKey, id)
}

// IdentityFromContext finds the Identity in the context.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	raw, ok := ctx.Value(identityCtxKey).(Identity)
	return raw, ok
}

func identityEnricher(ctx context.Context, id jwtware.Identity) context.Context {
	return WithIdentity(ctx, id)
}
