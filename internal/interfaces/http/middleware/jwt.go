package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/travelpkg/backend/internal/domain/identity"
	"github.com/travelpkg/backend/internal/infrastructure/auth"
	"github.com/travelpkg/backend/internal/infrastructure/logger"
	"github.com/travelpkg/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// Header names
const (
	AuthHeaderKey        = "Authorization"
	BearerPrefix         = "Bearer "
	IdempotencyKeyHeader = "Idempotency-Key"
)

// JWTClaimsKey is the gin context key holding the validated claims
const JWTClaimsKey = "jwt_claims"

// TokenValidator validates a bearer token string
type TokenValidator interface {
	ValidateToken(tokenString string) (*auth.Claims, error)
}

// Authenticate resolves the bearer token, when one is sent, into an
// identity.Principal on the request context. Requests without a token pass
// through anonymously; a token that fails validation is rejected with 401.
func Authenticate(validator TokenValidator, log *zap.Logger) gin.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}
	return func(c *gin.Context) {
		header := c.GetHeader(AuthHeaderKey)
		if header == "" {
			c.Next()
			return
		}
		if !strings.HasPrefix(header, BearerPrefix) {
			abortUnauthorized(c, log, auth.ErrInvalidToken)
			return
		}

		claims, err := validator.ValidateToken(strings.TrimSpace(strings.TrimPrefix(header, BearerPrefix)))
		if err != nil {
			abortUnauthorized(c, log, err)
			return
		}

		p := claims.Principal()
		c.Set(JWTClaimsKey, claims)
		ctx := identity.WithPrincipal(c.Request.Context(), p)
		ctx = logger.WithCaller(ctx, p.Email)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequireAuth rejects requests that carry no authenticated principal
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := identity.PrincipalFromContext(c.Request.Context()); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeUnauthorized, "Authentication required", GetRequestID(c)))
			return
		}
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, log *zap.Logger, err error) {
	logger.Enrich(c.Request.Context(), log).Warn("bearer token rejected",
		zap.Error(err),
		zap.String("path", c.Request.URL.Path),
	)

	code, message := dto.ErrCodeTokenInvalid, "Invalid token"
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		code, message = dto.ErrCodeTokenExpired, "Token has expired"
	case errors.Is(err, auth.ErrTokenNotYetValid):
		message = "Token is not yet valid"
	case errors.Is(err, auth.ErrMissingEmail):
		message = "Token carries no email"
	}
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponseWithRequestID(code, message, GetRequestID(c)))
}

// GetJWTClaims retrieves the validated claims from gin.Context
func GetJWTClaims(c *gin.Context) *auth.Claims {
	if claims, exists := c.Get(JWTClaimsKey); exists {
		if jwtClaims, ok := claims.(*auth.Claims); ok {
			return jwtClaims
		}
	}
	return nil
}
