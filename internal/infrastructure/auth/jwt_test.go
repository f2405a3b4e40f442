package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/travelpkg/backend/internal/domain/identity"
	"github.com/travelpkg/backend/internal/domain/shared"
	"github.com/travelpkg/backend/internal/infrastructure/config"
)

func newTestJWTService(t *testing.T) *JWTService {
	t.Helper()
	svc, err := NewJWTService(config.JWTConfig{
		Secret: "test-secret-key-at-least-32-chars",
		Issuer: "travel-auth",
	})
	require.NoError(t, err)
	return svc
}

func TestNewJWTService_RequiresSecret(t *testing.T) {
	_, err := NewJWTService(config.JWTConfig{})
	assert.ErrorIs(t, err, ErrMissingSecret)
}

func TestJWTService_RoundTrip(t *testing.T) {
	svc := newTestJWTService(t)
	userID := uuid.New()

	token, err := svc.IssueToken(identity.Principal{UserID: &userID, Email: "Minji@Example.com", Name: "Minji"}, time.Hour)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)

	p := claims.Principal()
	require.NotNil(t, p.UserID)
	assert.Equal(t, userID, *p.UserID)
	assert.Equal(t, "minji@example.com", p.Email)
	assert.Equal(t, "Minji", p.Name)
}

func TestJWTService_ValidateToken_Rejects(t *testing.T) {
	svc := newTestJWTService(t)
	base := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

	sign := func(t *testing.T, method jwt.SigningMethod, key interface{}, claims Claims) string {
		t.Helper()
		s, err := jwt.NewWithClaims(method, &claims).SignedString(key)
		require.NoError(t, err)
		return s
	}
	valid := func() Claims {
		return Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    "travel-auth",
				ExpiresAt: jwt.NewNumericDate(base.Add(time.Hour)),
				IssuedAt:  jwt.NewNumericDate(base),
			},
			Email: "minji@example.com",
		}
	}
	svc.now = func() time.Time { return base }

	tests := []struct {
		name  string
		token func(t *testing.T) string
		want  error
	}{
		{
			name:  "garbage",
			token: func(*testing.T) string { return "not.a.token" },
			want:  ErrInvalidToken,
		},
		{
			name: "wrong secret",
			token: func(t *testing.T) string {
				return sign(t, jwt.SigningMethodHS256, []byte("another-secret"), valid())
			},
			want: ErrInvalidToken,
		},
		{
			name: "wrong algorithm",
			token: func(t *testing.T) string {
				return sign(t, jwt.SigningMethodHS512, svc.secret, valid())
			},
			want: ErrInvalidToken,
		},
		{
			name: "expired",
			token: func(t *testing.T) string {
				c := valid()
				c.ExpiresAt = jwt.NewNumericDate(base.Add(-time.Hour))
				return sign(t, jwt.SigningMethodHS256, svc.secret, c)
			},
			want: ErrExpiredToken,
		},
		{
			name: "not yet valid",
			token: func(t *testing.T) string {
				c := valid()
				c.NotBefore = jwt.NewNumericDate(base.Add(time.Hour))
				return sign(t, jwt.SigningMethodHS256, svc.secret, c)
			},
			want: ErrTokenNotYetValid,
		},
		{
			name: "foreign issuer",
			token: func(t *testing.T) string {
				c := valid()
				c.Issuer = "someone-else"
				return sign(t, jwt.SigningMethodHS256, svc.secret, c)
			},
			want: ErrInvalidToken,
		},
		{
			name: "no expiry",
			token: func(t *testing.T) string {
				c := valid()
				c.ExpiresAt = nil
				return sign(t, jwt.SigningMethodHS256, svc.secret, c)
			},
			want: ErrInvalidToken,
		},
		{
			name: "no email",
			token: func(t *testing.T) string {
				c := valid()
				c.Email = " "
				return sign(t, jwt.SigningMethodHS256, svc.secret, c)
			},
			want: ErrMissingEmail,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ValidateToken(tt.token(t))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestClaims_PrincipalWithoutUUIDSubject(t *testing.T) {
	c := Claims{Email: "guest@example.com"}
	c.Subject = "guest-17"

	p := c.Principal()
	assert.Nil(t, p.UserID)
	assert.Equal(t, "guest@example.com", p.Email)
}

func TestAdminAllowlist(t *testing.T) {
	authz := NewAdminAllowlist([]string{" Admin@Example.com ", "", "ops@example.com"})
	assert.Equal(t, 2, authz.Len())

	anonymous := context.Background()
	assert.False(t, authz.IsAdmin(anonymous))
	assert.ErrorIs(t, authz.RequireAdmin(anonymous), shared.ErrUnauthorized)

	customer := identity.WithPrincipal(anonymous, identity.Principal{Email: "minji@example.com"})
	assert.False(t, authz.IsAdmin(customer))
	assert.ErrorIs(t, authz.RequireAdmin(customer), shared.ErrForbidden)

	admin := identity.WithPrincipal(anonymous, identity.Principal{Email: "ADMIN@example.com"})
	assert.True(t, authz.IsAdmin(admin))
	assert.NoError(t, authz.RequireAdmin(admin))
}
