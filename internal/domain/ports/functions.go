package ports

import (
	"context"
	"net/http"

	"github.com/omnihive/backend/internal/domain/models"
)

// GraphFunctionWorker is a custom GraphQL field served at the custom graph endpoint
// as <name>(customArgs: JSON): JSON
type GraphFunctionWorker interface {
	Execute(ctx context.Context, customArgs map[string]any, gctx models.GraphContext) (any, error)
}

// RestRequest is the transport-neutral input to a REST function
type RestRequest struct {
	Method  string
	Headers http.Header
	Query   map[string][]string
	Body    []byte
}

// RestResponse is the result of a REST function
type RestResponse struct {
	Status int
	Body   any
}

// RestEndpointWorker is a custom or system REST function
type RestEndpointWorker interface {
	Route() string
	Method() string
	Execute(ctx context.Context, req RestRequest) (RestResponse, error)
	// Swagger returns the OpenAPI path fragment for this endpoint, or nil
	Swagger() map[string]any
}
