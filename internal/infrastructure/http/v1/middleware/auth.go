package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"stockledger/internal/core/apperror"
	"stockledger/internal/core/appctx"
)

// JWTValidator interface for token validation.
type JWTValidator interface {
	ValidateToken(tokenString string) (*appctx.RequestScope, error)
}

// Auth middleware validates JWT tokens and populates the request scope.
// Every route behind it can rely on appctx.GetCompanyID returning a
// non-zero company.
func Auth(validator JWTValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, "missing authorization header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			abortUnauthorized(c, "invalid authorization header format")
			return
		}

		scope, err := validator.ValidateToken(parts[1])
		if err != nil {
			abortUnauthorized(c, "invalid token")
			return
		}

		ctx := appctx.WithScope(c.Request.Context(), scope)
		c.Request = c.Request.WithContext(ctx)

		// Store in gin context for easy access
		c.Set("user_id", scope.UserID)
		c.Set("company_id", scope.CompanyID.String())

		c.Next()
	}
}

// RequireRole middleware checks if the caller has one of the required roles.
// Admins pass regardless.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		scope := appctx.GetScope(c.Request.Context())
		if scope == nil {
			abortUnauthorized(c, "authentication required")
			return
		}

		if scope.IsAdmin {
			c.Next()
			return
		}

		for _, required := range roles {
			for _, role := range scope.Roles {
				if role == required {
					c.Next()
					return
				}
			}
		}

		_ = c.Error(
			apperror.NewForbidden("insufficient permissions").
				WithDetail("required_roles", roles),
		)
		c.Abort()
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	_ = c.Error(apperror.NewUnauthorized(message))
	c.Abort()
}
