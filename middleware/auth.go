package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"pbank/auth"
)

// UserIDKey is the gin context key under which JWTAuth stores the
// authenticated user's ID.
const UserIDKey = "user_id"

// JWTAuth validates the Bearer token on protected routes. Expired and
// malformed tokens get the same opaque 401 body so the response leaks
// nothing about why validation failed.
func JWTAuth(tokens *auth.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		tokenString, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code":  "unauthorized",
				"error": "missing or malformed Authorization header",
			})
			return
		}

		userID, err := tokens.Validate(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code":  "unauthorized",
				"error": "invalid or expired token",
			})
			return
		}

		c.Set(UserIDKey, userID)
		c.Next()
	}
}
