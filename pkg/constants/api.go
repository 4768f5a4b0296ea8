package constants

// HTTP and API constants
const (
	// Content types
	ContentTypeJSON = "application/json"

	// HTTP Headers
	HeaderContentType   = "Content-Type"
	HeaderAuthorization = "authorization"
	HeaderAccess        = "x-omnihive-access"
	HeaderCacheType     = "x-omnihive-cache-type"
	HeaderCacheSeconds  = "x-omnihive-cache-seconds"
	HeaderXRequestID    = "X-Request-ID"
)

// Route roots
const (
	RouteAdminRoot      = "/ohAdmin"
	RouteAdminRest      = "/ohAdmin/rest"
	RouteAdminSocket    = "/ohAdmin/ws"
	RouteSwaggerJSON    = "/ohAdmin/api-docs/swagger.json"
	RouteCustomGraph    = "/custom/graphql"
	RouteCustomRest     = "/custom/rest"
	RouteMetrics        = "/metrics"
	DefaultBuilderRoute = "graphql"
)

// Context keys
const (
	ContextKeyGraph     = "graphContext"
	ContextKeyRequestID = "requestID"
)
