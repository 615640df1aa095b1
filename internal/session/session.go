// Package session carries the authenticated principal through request
// contexts.
package session

import "context"

// RoleAdmin marks accounts allowed on the administrative surface.
const RoleAdmin = "admin"

// Principal identifies the authenticated account for a request.
type Principal struct {
	AccountID string
	Username  string
	Email     string
	Role      string
}

// IsAdmin reports whether the principal holds the admin role.
func (p Principal) IsAdmin() bool { return p.Role == RoleAdmin }

type contextKey struct{}

// WithPrincipal returns a context carrying the principal.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, contextKey{}, p)
}

// FromContext extracts the principal set by the auth middleware.
func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(contextKey{}).(Principal)
	return p, ok
}
