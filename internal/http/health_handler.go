package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Pinger es la dependencia mínima para el chequeo de salud.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler maneja GET /healthz.
type HealthHandler struct {
	db Pinger
}

func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

func (h *HealthHandler) Health(c *gin.Context) {
	if h.db != nil {
		if err := h.db.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
