package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/omnihive/backend/internal/application/services"
	"github.com/omnihive/backend/internal/application/translator"
	"github.com/omnihive/backend/internal/infrastructure/metrics"
	"github.com/omnihive/backend/internal/interfaces/middleware"
	"github.com/omnihive/backend/pkg/constants"
)

// Deps are the long-lived collaborators shared by every engine
type Deps struct {
	Status  StatusSource
	Source  translator.Source
	Hub     http.Handler
	Metrics *metrics.Metrics
	Logger  logrus.FieldLogger
}

func newEngine(deps Deps) *gin.Engine {
	if deps.Logger == nil {
		deps.Logger = logrus.StandardLogger()
	}
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestID(), middleware.AccessLog(deps.Logger))
	router.NoRoute(NotFound)
	router.NoMethod(NotFound)

	router.GET("/", NewStatusHandler(deps.Status).Get)
	if deps.Hub != nil {
		router.GET(constants.RouteAdminSocket, gin.WrapH(deps.Hub))
	}
	if deps.Metrics != nil {
		router.GET(constants.RouteMetrics, gin.WrapH(deps.Metrics.Handler()))
	}
	return router
}

// NewAdminEngine serves the status page, the admin channel and metrics. It
// answers on the admin port and on the web port whenever no build is mounted.
func NewAdminEngine(deps Deps) *gin.Engine {
	return newEngine(deps)
}

// NewWebEngine serves everything a build produced on top of the admin routes
func NewWebEngine(b *services.Build, deps Deps) *gin.Engine {
	if deps.Logger == nil {
		deps.Logger = logrus.StandardLogger()
	}
	router := newEngine(deps)
	router.Use(middleware.GraphContext())

	for _, g := range b.Graphs {
		h := NewGraphHandler(g.Path, g.Executable, deps.Metrics, deps.Logger)
		router.POST(g.Path, h.Post)
		router.GET(g.Path, h.Get)
	}
	if b.Functions != nil {
		h := NewGraphHandler(constants.RouteCustomGraph, b.Functions, deps.Metrics, deps.Logger)
		router.POST(constants.RouteCustomGraph, h.Post)
		router.GET(constants.RouteCustomGraph, h.Get)
	}

	for _, ep := range b.SystemRest {
		router.Handle(ep.Worker.Method(), ep.Path, NewFunctionHandler(ep.Path, ep.Worker, deps.Metrics, deps.Logger).Handle)
	}
	for _, ep := range b.Rest {
		router.Handle(ep.Worker.Method(), ep.Path,
			middleware.RequireAccess(deps.Source, deps.Logger),
			NewFunctionHandler(ep.Path, ep.Worker, deps.Metrics, deps.Logger).Handle)
	}
	if len(b.SystemRest)+len(b.Rest) > 0 {
		swagger := b.Swagger
		router.GET(constants.RouteSwaggerJSON, func(c *gin.Context) {
			c.JSON(http.StatusOK, swagger)
		})
	}
	return router
}
