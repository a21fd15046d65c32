package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/phillip/evently-go/auth"
)

// AuthMiddleware requires a bearer session token and exposes its user id
// as "user_id" (and role as "role") on the gin context.
func AuthMiddleware(sessions *auth.SessionManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := auth.TokenFromHeader(c.GetHeader("Authorization"))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or malformed token"})
			return
		}
		claims, err := sessions.Validate(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("role", claims.Role)
		c.Next()
	}
}

// WebhookSecret guards identity-provider webhooks with a shared secret sent
// in the X-Webhook-Secret header. With no secret configured every call is
// refused.
func WebhookSecret(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "webhooks are disabled"})
			return
		}
		got := c.GetHeader("X-Webhook-Secret")
		if subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid webhook secret"})
			return
		}
		c.Next()
	}
}
