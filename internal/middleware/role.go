package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"filerelay/internal/pkg/response"
)

type AdminChecker interface {
	Contains(userID int64) bool
}

// AdminOnly requires the session user to be a configured admin.
// Run it after SessionAuth and one of the RequireSession guards.
func AdminOnly(admins AdminChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !admins.Contains(c.GetInt64("user_id")) {
			response.AbortError(c, http.StatusForbidden, "Access denied")
			return
		}
		c.Next()
	}
}

// AdminOnlyPage is AdminOnly for HTML routes.
func AdminOnlyPage(admins AdminChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !admins.Contains(c.GetInt64("user_id")) {
			c.Data(http.StatusForbidden, "text/plain; charset=utf-8", []byte("Access denied"))
			c.Abort()
			return
		}
		c.Next()
	}
}
