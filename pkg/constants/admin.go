package constants

// Admin channel events
const (
	AdminEventHeartbeatRequest    = "heartbeat-request"
	AdminEventHeartbeatResponse   = "heartbeat-response"
	AdminEventConfigRequest       = "config-request"
	AdminEventConfigResponse      = "config-response"
	AdminEventConfigSaveRequest   = "config-save-request"
	AdminEventConfigSaveResponse  = "config-save-response"
	AdminEventAccessTokenRequest  = "access-token-request"
	AdminEventAccessTokenResponse = "access-token-response"
	AdminEventRefreshRequest      = "refresh-request"
	AdminEventRefreshResponse     = "refresh-response"
	AdminEventRegisterRequest     = "register-request"
	AdminEventRegisterResponse    = "register-response"
	AdminEventStatusRequest       = "status-request"
	AdminEventStatusResponse      = "status-response"
	AdminEventURLsRequest         = "urls-request"
	AdminEventURLsResponse        = "urls-response"
	AdminEventUnknownResponse     = "unknown-response"
)

// Heartbeat sweep interval in seconds; a client missing two sweeps is dropped
const AdminHeartbeatIntervalSec = 20
