package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/omnihive/backend/internal/application/translator"
	"github.com/omnihive/backend/pkg/errors"
	"github.com/omnihive/backend/pkg/expression"
)

// Abort writes the standard error body and stops the chain
func Abort(c *gin.Context, err error) {
	c.AbortWithStatusJSON(errors.ToResponse(err))
}

// RequireAccess runs the security gate for custom REST functions. It must be
// installed after GraphContext.
func RequireAccess(source translator.Source, logger logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		scope := expression.FlagScope{Operation: "rest", Table: c.FullPath()}
		if err := translator.Authorize(c.Request.Context(), source.Snapshot(), GetGraphContext(c), scope, logger); err != nil {
			Abort(c, err)
			return
		}
		c.Next()
	}
}
