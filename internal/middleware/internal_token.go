package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"filerelay/internal/pkg/response"
)

const WebhookSecretHeader = "X-Telegram-Bot-Api-Secret-Token"

// WebhookSecret rejects webhook deliveries whose secret header does not match.
// An empty secret disables the check.
func WebhookSecret(secret string, log *zap.Logger) gin.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}
	return func(c *gin.Context) {
		if secret == "" {
			c.Next()
			return
		}

		got := c.GetHeader(WebhookSecretHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
			reason := "invalid_secret"
			if got == "" {
				reason = "missing_secret"
			}
			log.Warn("webhook auth failed",
				zap.String("reason", reason),
				zap.String("client_ip", c.ClientIP()),
				zap.String("request_id", RequestID(c)),
			)
			response.AbortError(c, http.StatusUnauthorized, "Unauthorized")
			return
		}

		c.Next()
	}
}
