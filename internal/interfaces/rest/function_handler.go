package rest

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/omnihive/backend/internal/domain/ports"
	"github.com/omnihive/backend/internal/infrastructure/metrics"
	"github.com/omnihive/backend/pkg/errors"
)

// FunctionHandler adapts a REST worker to gin
type FunctionHandler struct {
	path    string
	worker  ports.RestEndpointWorker
	metrics *metrics.Metrics
	logger  logrus.FieldLogger
}

// NewFunctionHandler creates the handler for a REST worker mounted at path
func NewFunctionHandler(path string, worker ports.RestEndpointWorker, m *metrics.Metrics, logger logrus.FieldLogger) *FunctionHandler {
	return &FunctionHandler{path: path, worker: worker, metrics: m, logger: logger}
}

// Handle runs the worker with the request's method, headers, query and body
func (h *FunctionHandler) Handle(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.fail(c, errors.NewValidationError("body", "request body could not be read"))
		return
	}

	resp, err := h.worker.Execute(c.Request.Context(), ports.RestRequest{
		Method:  c.Request.Method,
		Headers: c.Request.Header,
		Query:   c.Request.URL.Query(),
		Body:    body,
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	status := resp.Status
	if status == 0 {
		status = http.StatusOK
	}
	h.metrics.RecordRestRequest(h.path, status)
	if resp.Body == nil {
		c.Status(status)
		return
	}
	c.JSON(status, resp.Body)
}

func (h *FunctionHandler) fail(c *gin.Context, err error) {
	h.metrics.RecordRestRequest(h.path, errors.GetHTTPStatus(err))
	RespondAppError(c, h.logger, err)
}
