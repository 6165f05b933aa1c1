package upload

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"filerelay/internal/pkg/response"
)

// Handler exposes record deletion to the admin web page.
// Session and admin checks run in middleware before it.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Delete removes a forwarded file by channel message id.
// POST /delete_file/:id -> 200 | 400 | 404
func (h *Handler) Delete(c *gin.Context) {
	userID := c.GetInt64("user_id")

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "Invalid file id")
		return
	}

	err = h.service.Delete(c.Request.Context(), userID, id)
	switch {
	case err == nil:
		response.Success(c, http.StatusOK, "File deleted")
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrGateway):
		response.Error(c, http.StatusNotFound, "File not found or deletion failed")
	case errors.Is(err, ErrPermissionDenied):
		response.Error(c, http.StatusForbidden, "Access denied")
	default:
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "Deletion failed")
	}
}
