package rbac

import (
	"context"
	"strings"
)

// Principal describes the authenticated actor of one request.
type Principal struct {
	UserID int64
	Email  string
	Roles  []string
}

// HasRole reports literal, case-insensitive membership of role.
func (p *Principal) HasRole(role string) bool {
	if p == nil {
		return false
	}
	want := CanonicalRole(role)
	for _, r := range p.Roles {
		if strings.EqualFold(strings.TrimSpace(r), want) {
			return true
		}
	}
	return false
}

type principalContextKey struct{}

// WithPrincipal stores the principal in context.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, p)
}

// PrincipalFromContext extracts the principal attached by the authentication step.
func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalContextKey{}).(*Principal)
	return p, ok && p != nil
}
