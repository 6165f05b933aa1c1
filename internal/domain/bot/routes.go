package bot

import "github.com/gin-gonic/gin"

func RegisterRoutes(r gin.IRoutes, h *Handler, guards ...gin.HandlerFunc) {
	handlers := append(guards, h.Webhook)
	r.POST("/webhook", handlers...)
}
