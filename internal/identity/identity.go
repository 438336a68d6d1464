// Package identity carries the authenticated caller through a request context.
package identity

import "context"

// Identity is the authenticated caller as asserted by the identity provider.
type Identity struct {
	ID    string
	Email string
}

// IsZero reports whether no caller is set.
func (i Identity) IsZero() bool {
	return i.ID == ""
}

type contextKey struct{}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// FromContext returns the caller stored in ctx, if any.
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(contextKey{}).(Identity)
	if !ok || id.IsZero() {
		return Identity{}, false
	}
	return id, true
}
