package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/vansh3175/FlashNotes/utils"
)

// OptionalAuthMiddleware resolves identity from a bearer token when one is
// presented. Requests without one pass through untouched; controllers then
// fall back to the identity the client forwarded from its auth session
// (the "user" form field on uploads, query params elsewhere).
func OptionalAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			// malformed header -> treat as anonymous
			c.Next()
			return
		}

		claims, err := utils.VerifyToken(parts[1])
		if err != nil {
			c.Next()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("email_verified", claims.EmailVerified)
		c.Next()
	}
}
