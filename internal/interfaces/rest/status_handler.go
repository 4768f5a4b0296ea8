package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/omnihive/backend/internal/domain/events"
	"github.com/omnihive/backend/internal/domain/models"
)

// StatusSource reports the lifecycle state shown on the status page
type StatusSource interface {
	Status() events.StatusPayload
	URLs() []models.RegisteredURL
}

// StatusHandler serves GET /
type StatusHandler struct {
	source StatusSource
}

// NewStatusHandler creates the status page handler
func NewStatusHandler(source StatusSource) *StatusHandler {
	return &StatusHandler{source: source}
}

// Get returns {status, error, urls}
func (h *StatusHandler) Get(c *gin.Context) {
	st := h.source.Status()
	urls := h.source.URLs()
	if urls == nil {
		urls = []models.RegisteredURL{}
	}
	c.JSON(http.StatusOK, gin.H{
		"status": st.ServerStatus,
		"error":  st.ServerError,
		"urls":   urls,
	})
}
