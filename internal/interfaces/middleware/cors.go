package middleware

import (
	"net/http"

	"github.com/rs/cors"

	"github.com/omnihive/backend/pkg/constants"
)

// CORS wraps h with a permissive policy that admits the hive headers
func CORS(h http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{
			constants.HeaderContentType,
			constants.HeaderAuthorization,
			constants.HeaderAccess,
			constants.HeaderCacheType,
			constants.HeaderCacheSeconds,
			constants.HeaderXRequestID,
		},
		ExposedHeaders: []string{constants.HeaderXRequestID},
	}).Handler(h)
}
