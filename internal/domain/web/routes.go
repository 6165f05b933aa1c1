package web

import (
	"github.com/gin-gonic/gin"

	"filerelay/internal/middleware"
)

// RegisterRoutes mounts the pages. SessionAuth must already run on r.
// loginGuards run in front of the login callback only.
func RegisterRoutes(r gin.IRouter, h *Handler, loginGuards ...gin.HandlerFunc) {
	r.GET("/", h.Home)
	r.GET("/privacy", h.Privacy)
	r.GET("/health", h.Health)

	r.GET("/auth/telegram", append(loginGuards, h.TelegramLogin)...)
	r.POST("/logout", h.Logout)

	r.GET("/setwebhook", h.SetWebhook)
	r.POST("/setwebhook", h.SetWebhook)

	r.GET("/admin", middleware.RequireSessionPage(), middleware.AdminOnlyPage(h.admins), h.Admin)
}
