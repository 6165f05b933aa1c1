package upload

import "github.com/gin-gonic/gin"

// RegisterRoutes registers the admin deletion endpoint.
// r must already enforce an admin session.
func RegisterRoutes(r gin.IRoutes, h *Handler) {
	r.POST("/delete_file/:id", h.Delete)
}
