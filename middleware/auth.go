package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/lifeonloan/wealth-api/utils"
)

const userIDKey = "user_id"

// AuthMiddleware validates the bearer token and stores the authenticated
// user id on the request context. Everything downstream trusts that id.
func AuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(header, "Bearer ")
		if tokenString == header {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Bearer token required"})
			c.Abort()
			return
		}

		claims, err := utils.ParseAccessToken(jwtSecret, tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		c.Set(userIDKey, claims.UserID)
		c.Next()
	}
}

// GetUserID returns the authenticated user id, or "" when the request was
// not authenticated.
func GetUserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}

// SetUserID exists for tests that bypass token validation.
func SetUserID(c *gin.Context, userID string) {
	c.Set(userIDKey, userID)
}
