package middleware

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/omnihive/backend/internal/domain/models"
	"github.com/omnihive/backend/pkg/constants"
)

// GraphContext reads the access, auth and cache headers into a
// models.GraphContext stored on the gin context
func GraphContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		gctx := models.GraphContext{
			Access: c.GetHeader(constants.HeaderAccess),
			Auth:   c.GetHeader(constants.HeaderAuthorization),
			Cache:  constants.CacheModeNone,
		}
		switch mode := strings.TrimSpace(c.GetHeader(constants.HeaderCacheType)); mode {
		case constants.CacheModeFrom, constants.CacheModeFromRefresh:
			gctx.Cache = mode
		}
		if secs, err := strconv.Atoi(c.GetHeader(constants.HeaderCacheSeconds)); err == nil && secs > 0 {
			gctx.CacheSeconds = secs
		}
		c.Set(constants.ContextKeyGraph, gctx)
		c.Next()
	}
}

// GetGraphContext returns the context stored by GraphContext, or a zero one
func GetGraphContext(c *gin.Context) models.GraphContext {
	if v, ok := c.Get(constants.ContextKeyGraph); ok {
		if gctx, ok := v.(models.GraphContext); ok {
			return gctx
		}
	}
	return models.GraphContext{Cache: constants.CacheModeNone}
}
