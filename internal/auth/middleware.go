package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const identityKey = "auth_identity"

// Middleware verifies the Bearer token and stores the claims in the gin
// context for handlers.
func Middleware(tokens *TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		claims, err := tokens.Verify(c.Request.Context(), strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			status := http.StatusUnauthorized
			message := "invalid token"
			if errors.Is(err, ErrTokenRevoked) {
				message = "token revoked"
			}
			c.AbortWithStatusJSON(status, gin.H{"error": message})
			return
		}

		c.Set(identityKey, claims)
		c.Next()
	}
}

// RequireRole guards a route group behind one role.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := Identity(c)
		if !ok || claims.Role != role {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient role"})
			return
		}
		c.Next()
	}
}

// Identity returns the verified claims stored by Middleware.
func Identity(c *gin.Context) (*Claims, bool) {
	value, ok := c.Get(identityKey)
	if !ok {
		return nil, false
	}
	claims, ok := value.(*Claims)
	return claims, ok
}
