package identity

import "context"

// Authorizer decides whether the caller in a context may perform admin operations.
// Services receive it at construction instead of looking up admin status themselves.
type Authorizer interface {
	// IsAdmin reports whether the caller is an administrator
	IsAdmin(ctx context.Context) bool

	// RequireAdmin returns shared.ErrUnauthorized when there is no caller and
	// shared.ErrForbidden when the caller is not an administrator
	RequireAdmin(ctx context.Context) error
}
