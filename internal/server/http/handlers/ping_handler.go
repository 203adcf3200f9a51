package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// PingHandler reports service health.
type PingHandler struct {
	pinger Pinger
}

// NewPingHandler constructs PingHandler.
func NewPingHandler(pinger Pinger) *PingHandler {
	return &PingHandler{pinger: pinger}
}

// Handle processes GET /ping.
func (h *PingHandler) Handle(c *gin.Context) {
	if err := h.pinger.Ping(c.Request.Context()); err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}
	c.Status(http.StatusOK)
}
