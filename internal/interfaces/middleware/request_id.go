package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/omnihive/backend/pkg/constants"
)

// RequestID keeps an incoming X-Request-ID or assigns a new one
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(constants.HeaderXRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(constants.ContextKeyRequestID, id)
		c.Header(constants.HeaderXRequestID, id)
		c.Next()
	}
}

// AccessLog writes one line per request
func AccessLog(logger logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		started := time.Now()
		c.Next()

		entry := logger.WithFields(logrus.Fields{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"duration":   time.Since(started).String(),
			"request_id": c.GetString(constants.ContextKeyRequestID),
		})
		if c.Writer.Status() >= 500 {
			entry.Warn("request failed")
			return
		}
		entry.Debug("request served")
	}
}
