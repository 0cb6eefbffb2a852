package httpapi

import (
	"context"

	"github.com/scc-freight/freight-api/internal/domain"
)

type principalKey struct{}

func WithPrincipal(ctx context.Context, p domain.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

func PrincipalFromContext(ctx context.Context) (domain.Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(domain.Principal)
	return p, ok && p.UserID != ""
}

// MustPrincipal returns the request principal and panics when the request
// reached a handler without passing the auth middleware. The panic marks a
// routing bug, not a client error.
func MustPrincipal(ctx context.Context) domain.Principal {
	p, ok := PrincipalFromContext(ctx)
	if !ok {
		panic("httpapi: handler reached without authenticated principal")
	}
	return p
}
