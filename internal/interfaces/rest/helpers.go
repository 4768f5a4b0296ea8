package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/omnihive/backend/pkg/errors"
)

// RespondAppError sends a standardised JSON error response using pkg/errors
func RespondAppError(c *gin.Context, logger logrus.FieldLogger, err error) {
	code, body := errors.ToResponse(err)

	if code >= 500 && logger != nil {
		logger.WithFields(logrus.Fields{
			"status": code,
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
		}).WithError(err).Error("❌ Request failed")
	}

	c.JSON(code, body)
}

// NotFound answers unknown routes
func NotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, errors.ErrorResponse{
		Error:   http.StatusText(http.StatusNotFound),
		Message: "route " + c.Request.Method + " " + c.Request.URL.Path + " does not exist",
		Code:    "NOT_FOUND",
	})
}
