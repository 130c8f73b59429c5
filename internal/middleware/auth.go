package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"reservation-agent/internal/auth"
)

const SubjectKey = "subject"

// Auth guards the analytics routes with a bearer token from /login.
func Auth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		// token from Authorization: Bearer <jwt>
		raw := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "no token"})
			return
		}

		claims, err := auth.ParseToken(raw, secret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "bad token"})
			return
		}

		c.Set(SubjectKey, claims.Subject)
		c.Next()
	}
}
