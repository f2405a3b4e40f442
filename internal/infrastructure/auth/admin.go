package auth

import (
	"context"

	"github.com/travelpkg/backend/internal/domain/identity"
	"github.com/travelpkg/backend/internal/domain/shared"
)

// AdminAllowlist treats callers whose email is on a configured list as administrators
type AdminAllowlist struct {
	emails map[string]struct{}
}

// NewAdminAllowlist builds an allowlist; emails are compared case-insensitively
func NewAdminAllowlist(emails []string) *AdminAllowlist {
	a := &AdminAllowlist{emails: make(map[string]struct{}, len(emails))}
	for _, e := range emails {
		if e = identity.NormalizeEmail(e); e != "" {
			a.emails[e] = struct{}{}
		}
	}
	return a
}

// IsAdmin implements identity.Authorizer
func (a *AdminAllowlist) IsAdmin(ctx context.Context) bool {
	p, ok := identity.PrincipalFromContext(ctx)
	if !ok {
		return false
	}
	_, admin := a.emails[p.NormalizedEmail()]
	return admin
}

// RequireAdmin implements identity.Authorizer
func (a *AdminAllowlist) RequireAdmin(ctx context.Context) error {
	if _, ok := identity.PrincipalFromContext(ctx); !ok {
		return shared.ErrUnauthorized
	}
	if !a.IsAdmin(ctx) {
		return shared.ErrForbidden
	}
	return nil
}

// Len returns the number of configured administrators
func (a *AdminAllowlist) Len() int {
	return len(a.emails)
}

var _ identity.Authorizer = (*AdminAllowlist)(nil)
