package middleware

import (
	"strings"

	"go-print-erp/internal/apperr"
	"go-print-erp/internal/auth"
	"go-print-erp/internal/models"

	"github.com/gin-gonic/gin"
)

const principalKey = "principal"

// AuthMiddleware checks if the user has a valid JWT token
func AuthMiddleware(tokens *auth.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Format: "Bearer <token>"
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			AbortWithError(c, apperr.Unauthorized("authorization header is required"))
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			AbortWithError(c, apperr.Unauthorized("authorization header must start with Bearer"))
			return
		}

		principal, err := tokens.ValidateToken(tokenString)
		if err != nil {
			AbortWithError(c, apperr.Unauthorized("invalid or expired token"))
			return
		}

		c.Set(principalKey, principal)
		c.Next()
	}
}

// RequireRole lets the request through only for the listed roles.
func RequireRole(allowed ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := PrincipalFrom(c)
		if !ok {
			AbortWithError(c, apperr.Unauthorized("authentication required"))
			return
		}
		for _, role := range allowed {
			if p.Role == role {
				c.Next()
				return
			}
		}
		AbortWithError(c, apperr.Forbidden("you do not have permission to access this resource"))
	}
}

func PrincipalFrom(c *gin.Context) (auth.Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return auth.Principal{}, false
	}
	p, ok := v.(auth.Principal)
	return p, ok
}

// SetPrincipal is used by tests that bypass token parsing.
func SetPrincipal(c *gin.Context, p auth.Principal) {
	c.Set(principalKey, p)
}
