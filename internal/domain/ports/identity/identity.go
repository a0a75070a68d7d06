// Package identity defines the port through which the service learns who is
// calling. Session and token management live outside this core; all that
// crosses the boundary is the resolved caller identity.
package identity

import "context"

// Context is the caller's identity as supplied by the identity provider.
type Context struct {
	UserID      string
	Email       string
	DisplayName string
}

// Provider resolves the identity bound to the current call, typically from
// transport-level credentials. Implementations return domain.ErrNoIdentity
// when the call carries none.
type Provider interface {
	Current(ctx context.Context) (*Context, error)
}
