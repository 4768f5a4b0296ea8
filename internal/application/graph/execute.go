package graph

import (
	"context"
	"errors"

	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/gqlerrors"

	"github.com/omnihive/backend/internal/domain/models"
	apperrors "github.com/omnihive/backend/pkg/errors"
)

// Request is a GraphQL request body
type Request struct {
	Query         string         `json:"query"`
	OperationName string         `json:"operationName,omitempty"`
	Variables     map[string]any `json:"variables,omitempty"`
}

// Response is a GraphQL response body. Every error carries the AppError code
// of its cause under extensions.code.
type Response struct {
	Data   any                        `json:"data"`
	Errors []gqlerrors.FormattedError `json:"errors,omitempty"`

	causes []error
}

// Err returns the cause of the first error, or nil
func (r *Response) Err() error {
	if len(r.causes) == 0 {
		return nil
	}
	return r.causes[0]
}

// HasData reports whether any root field produced a non-null value
func (r *Response) HasData() bool {
	data, ok := r.Data.(map[string]any)
	if !ok {
		return false
	}
	for _, v := range data {
		if v != nil {
			return true
		}
	}
	return false
}

type graphContextKey struct{}

// WithGraphContext stores the request's GraphContext for resolvers
func WithGraphContext(ctx context.Context, gctx models.GraphContext) context.Context {
	return context.WithValue(ctx, graphContextKey{}, gctx)
}

// GraphContextFrom returns the GraphContext stored in ctx
func GraphContextFrom(ctx context.Context) models.GraphContext {
	gctx, _ := ctx.Value(graphContextKey{}).(models.GraphContext)
	return gctx
}

// Execute parses, validates and runs one operation
func (e *Executable) Execute(ctx context.Context, req Request, gctx models.GraphContext) *Response {
	result := graphql.Do(graphql.Params{
		Schema:         e.schema,
		RequestString:  req.Query,
		VariableValues: req.Variables,
		OperationName:  req.OperationName,
		Context:        WithGraphContext(ctx, gctx),
	})

	resp := &Response{Data: result.Data}
	for _, fe := range result.Errors {
		cause := causeOf(fe)
		ext := make(map[string]any, len(fe.Extensions)+1)
		for k, v := range fe.Extensions {
			ext[k] = v
		}
		ext["code"] = apperrors.GetErrorCode(cause)
		fe.Extensions = ext
		resp.Errors = append(resp.Errors, fe)
		resp.causes = append(resp.causes, cause)
	}
	return resp
}

// causeOf digs the resolver error out of a formatted error. Errors without a
// path come from parsing or validating the document.
func causeOf(fe gqlerrors.FormattedError) error {
	var cause error
	switch err := fe.OriginalError().(type) {
	case *gqlerrors.Error:
		cause = err.OriginalError
	case gqlerrors.Error:
		cause = err.OriginalError
	default:
		cause = err
	}
	if cause == nil {
		return apperrors.NewValidationError("query", fe.Message)
	}
	var app apperrors.AppError
	if len(fe.Path) == 0 && !errors.As(cause, &app) {
		return apperrors.NewValidationError("query", fe.Message)
	}
	return cause
}
