package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"filerelay/internal/pkg/jwt"
	"filerelay/internal/pkg/response"
)

const SessionCookie = "session"

// SessionAuth reads the session cookie and, when it carries a valid token,
// puts user_id, username and first_name into the context. It never aborts.
func SessionAuth(jwtService *jwt.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(SessionCookie)
		if err != nil || token == "" {
			c.Next()
			return
		}

		claims, err := jwtService.ValidateToken(token)
		if err != nil {
			c.Next()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("username", claims.Username)
		c.Set("first_name", claims.FirstName)
		c.Next()
	}
}

// RequireSessionPage sends visitors without a session back to the home page.
func RequireSessionPage() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetInt64("user_id") == 0 {
			c.Redirect(http.StatusFound, "/")
			c.Abort()
			return
		}
		c.Next()
	}
}

func RequireSessionJSON() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetInt64("user_id") == 0 {
			response.AbortError(c, http.StatusUnauthorized, "Authentication required")
			return
		}
		c.Next()
	}
}
