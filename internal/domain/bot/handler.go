package bot

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"filerelay/internal/pkg/response"
	"filerelay/internal/telegram"
)

type Handler struct {
	dispatcher *Dispatcher
	observe    func(kind string)
	log        *zap.Logger
}

// NewHandler wires the webhook endpoint. observe, when set, is told the kind of every parsed update.
func NewHandler(dispatcher *Dispatcher, observe func(kind string), log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{dispatcher: dispatcher, observe: observe, log: log}
}

// Webhook receives one update per request.
// POST /webhook -> 200 {status:processed} | 400 {status:error}
func (h *Handler) Webhook(c *gin.Context) {
	var update telegram.Update
	if err := c.ShouldBindJSON(&update); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid update payload")
		return
	}
	if update == (telegram.Update{}) {
		response.Error(c, http.StatusBadRequest, "No data")
		return
	}

	ev := Parse(update)
	if h.observe != nil {
		h.observe(Kind(ev))
	}

	if err := h.dispatcher.Dispatch(c.Request.Context(), ev); err != nil {
		// acknowledged anyway, otherwise the platform redelivers it
		h.log.Warn("update handled with undelivered reply",
			zap.Int64("update_id", update.UpdateID),
			zap.String("kind", Kind(ev)),
			zap.Error(err),
		)
	}

	c.JSON(http.StatusOK, gin.H{"status": "processed"})
}
