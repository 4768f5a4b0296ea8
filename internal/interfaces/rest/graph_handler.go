package rest

import (
	"encoding/json"
	"net/http"

	"github.com/99designs/gqlgen/graphql/playground"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/omnihive/backend/internal/application/graph"
	"github.com/omnihive/backend/internal/infrastructure/metrics"
	"github.com/omnihive/backend/internal/interfaces/middleware"
	"github.com/omnihive/backend/pkg/errors"
)

// GraphHandler serves one compiled graph endpoint
type GraphHandler struct {
	path       string
	exec       *graph.Executable
	playground http.HandlerFunc
	metrics    *metrics.Metrics
	logger     logrus.FieldLogger
}

// NewGraphHandler creates the handler for the graph mounted at path
func NewGraphHandler(path string, exec *graph.Executable, m *metrics.Metrics, logger logrus.FieldLogger) *GraphHandler {
	return &GraphHandler{
		path:       path,
		exec:       exec,
		playground: playground.Handler("Hive "+path, path),
		metrics:    m,
		logger:     logger,
	}
}

// Post executes a JSON GraphQL request
func (h *GraphHandler) Post(c *gin.Context) {
	var req graph.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondAppError(c, h.logger, errors.NewValidationError("body", "request body must be a GraphQL JSON request"))
		return
	}
	h.execute(c, req)
}

// Get executes ?query= requests and serves the playground otherwise
func (h *GraphHandler) Get(c *gin.Context) {
	q := c.Query("query")
	if q == "" {
		h.playground(c.Writer, c.Request)
		return
	}
	req := graph.Request{Query: q, OperationName: c.Query("operationName")}
	if vars := c.Query("variables"); vars != "" {
		if err := json.Unmarshal([]byte(vars), &req.Variables); err != nil {
			RespondAppError(c, h.logger, errors.NewValidationError("variables", "must be a JSON object"))
			return
		}
	}
	h.execute(c, req)
}

// execute answers 200 whenever some root field produced data. When nothing
// did, the status is the one of the first error.
func (h *GraphHandler) execute(c *gin.Context, req graph.Request) {
	resp := h.exec.Execute(c.Request.Context(), req, middleware.GetGraphContext(c))
	h.metrics.RecordGraphRequest(h.path, len(resp.Errors) > 0)

	status := http.StatusOK
	if err := resp.Err(); err != nil && !resp.HasData() {
		status = errors.GetHTTPStatus(err)
		h.logger.WithFields(logrus.Fields{"path": h.path, "status": status}).WithError(err).Debug("Graph request failed")
	}
	c.JSON(status, resp)
}
