package guard

import "context"

// principalCtxKey is the context key for storing the principal.
type principalCtxKey struct{}

// WithPrincipal stores the principal in the context. The authentication
// middleware calls this after token verification.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalCtxKey{}, p)
}

// PrincipalFromContext retrieves the principal from the context.
func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalCtxKey{}).(*Principal)
	if !ok || p == nil {
		return nil, false
	}
	return p, true
}
