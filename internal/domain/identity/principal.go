package identity

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

// Principal is the authenticated caller of an operation
type Principal struct {
	UserID *uuid.UUID
	Email  string
	Name   string
}

// NormalizedEmail returns the lowercased, trimmed email
func (p Principal) NormalizedEmail() string {
	return NormalizeEmail(p.Email)
}

// NormalizeEmail lowercases and trims an email for comparisons
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

type principalKey struct{}

// WithPrincipal returns a copy of ctx carrying the principal
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext returns the principal stored in ctx, if any
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}
