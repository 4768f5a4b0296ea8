package services

import (
	"context"
	"encoding/json"

	"github.com/sirupsen/logrus"

	"github.com/omnihive/backend/internal/application/registry"
	"github.com/omnihive/backend/internal/domain/events"
	"github.com/omnihive/backend/internal/domain/models"
	"github.com/omnihive/backend/internal/domain/ports"
	"github.com/omnihive/backend/pkg/auth"
	"github.com/omnihive/backend/pkg/constants"
)

// Messages of failed admin requests
const (
	AdminErrInvalidPassword = "Invalid Password"
	AdminErrUnknownEvent    = "Unknown Event"
	AdminErrNoServerLabel   = "No Server Label Given"
	AdminErrNoConfig        = "No Config Given"
	AdminErrNoConfigWorker  = "No Config Worker"
)

// AdminRequest is one message received on the admin channel
type AdminRequest struct {
	Event         string          `json:"event"`
	AdminPassword string          `json:"adminPassword,omitempty"`
	Data          json.RawMessage `json:"data,omitempty"`
}

// AdminResponse is one message sent on the admin channel
type AdminResponse struct {
	Event           string `json:"event"`
	Data            any    `json:"data,omitempty"`
	RequestComplete bool   `json:"requestComplete"`
	RequestError    string `json:"requestError,omitempty"`
}

// AdminOK builds a completed response
func AdminOK(event string, data any) AdminResponse {
	return AdminResponse{Event: event, Data: data, RequestComplete: true}
}

// AdminFailed builds a failed response
func AdminFailed(event, message string) AdminResponse {
	return AdminResponse{Event: event, RequestError: message}
}

// AdminBackend is the server state the admin channel reports and drives
type AdminBackend interface {
	Status() events.StatusPayload
	URLs() []models.RegisteredURL
	Refresh(ctx context.Context) error
}

// Admin answers admin channel requests. The admin password is compared by
// plain equality; blank passwords are always rejected.
type Admin struct {
	backend  AdminBackend
	source   SnapshotSource
	config   ports.ConfigWorker
	password string
	bus      *EventBus
	logger   logrus.FieldLogger
}

// AdminOptions wires the admin service
type AdminOptions struct {
	Backend  AdminBackend
	Source   SnapshotSource
	Config   ports.ConfigWorker
	Password string
	Bus      *EventBus
	Logger   logrus.FieldLogger
}

// NewAdmin creates the admin service
func NewAdmin(opts AdminOptions) *Admin {
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	return &Admin{
		backend:  opts.Backend,
		source:   opts.Source,
		config:   opts.Config,
		password: opts.Password,
		bus:      opts.Bus,
		logger:   opts.Logger,
	}
}

func (a *Admin) authorized(req AdminRequest) bool {
	return auth.VerifyAdminPassword(req.AdminPassword, a.password)
}

// Handle answers one request. A nil response means nothing is sent back.
func (a *Admin) Handle(ctx context.Context, req AdminRequest) *AdminResponse {
	resp := a.handle(ctx, req)
	if resp != nil && resp.RequestError != "" {
		a.logger.WithFields(logrus.Fields{"event": req.Event, "error": resp.RequestError}).Warn("⚠️ Admin request rejected")
	}
	return resp
}

func (a *Admin) handle(ctx context.Context, req AdminRequest) *AdminResponse {
	reply := func(r AdminResponse) *AdminResponse { return &r }

	switch req.Event {
	case constants.AdminEventHeartbeatRequest:
		return reply(AdminOK(constants.AdminEventHeartbeatResponse, map[string]any{"alive": true}))

	case constants.AdminEventHeartbeatResponse:
		return nil

	case constants.AdminEventStatusRequest:
		if !a.authorized(req) {
			return reply(AdminFailed(constants.AdminEventStatusResponse, AdminErrInvalidPassword))
		}
		return reply(AdminOK(constants.AdminEventStatusResponse, a.backend.Status()))

	case constants.AdminEventURLsRequest:
		if !a.authorized(req) {
			return reply(AdminFailed(constants.AdminEventURLsResponse, AdminErrInvalidPassword))
		}
		urls := a.backend.URLs()
		if urls == nil {
			urls = []models.RegisteredURL{}
		}
		return reply(AdminOK(constants.AdminEventURLsResponse, map[string]any{"urls": urls}))

	case constants.AdminEventRegisterRequest:
		if !a.authorized(req) {
			return reply(AdminFailed(constants.AdminEventRegisterResponse, AdminErrInvalidPassword))
		}
		return reply(AdminOK(constants.AdminEventRegisterResponse, map[string]any{"verified": true}))

	case constants.AdminEventConfigRequest:
		if !a.authorized(req) {
			return reply(AdminFailed(constants.AdminEventConfigResponse, AdminErrInvalidPassword))
		}
		if a.config == nil {
			return reply(AdminFailed(constants.AdminEventConfigResponse, AdminErrNoConfigWorker))
		}
		settings, err := a.config.Get(ctx)
		if err != nil {
			return reply(AdminFailed(constants.AdminEventConfigResponse, err.Error()))
		}
		return reply(AdminOK(constants.AdminEventConfigResponse, map[string]any{"config": settings}))

	case constants.AdminEventConfigSaveRequest:
		return reply(a.saveConfig(ctx, req))

	case constants.AdminEventRefreshRequest:
		if !a.authorized(req) {
			return reply(AdminFailed(constants.AdminEventRefreshResponse, AdminErrInvalidPassword))
		}
		go func() {
			if err := a.backend.Refresh(context.Background()); err != nil {
				a.logger.WithError(err).Error("❌ Admin refresh failed")
			}
		}()
		return reply(AdminOK(constants.AdminEventRefreshResponse, map[string]any{"refresh": true}))

	case constants.AdminEventAccessTokenRequest:
		return reply(a.accessToken(ctx, req))
	}

	return reply(AdminFailed(constants.AdminEventUnknownResponse, AdminErrUnknownEvent))
}

func (a *Admin) saveConfig(ctx context.Context, req AdminRequest) AdminResponse {
	event := constants.AdminEventConfigSaveResponse
	if !a.authorized(req) {
		return AdminFailed(event, AdminErrInvalidPassword)
	}
	if a.config == nil {
		return AdminFailed(event, AdminErrNoConfigWorker)
	}

	var data struct {
		Config *models.ServerSettings `json:"config"`
	}
	if len(req.Data) == 0 || json.Unmarshal(req.Data, &data) != nil || data.Config == nil {
		return AdminFailed(event, AdminErrNoConfig)
	}
	if err := a.config.Set(ctx, data.Config); err != nil {
		return AdminFailed(event, err.Error())
	}
	if a.bus != nil {
		a.bus.PublishAsync(events.ConfigSaved, data.Config)
	}
	a.logger.Info("✅ Server settings saved")
	return AdminOK(event, map[string]any{"verified": true})
}

func (a *Admin) accessToken(ctx context.Context, req AdminRequest) AdminResponse {
	event := constants.AdminEventAccessTokenResponse

	var data struct {
		ServerLabel string `json:"serverLabel"`
	}
	if len(req.Data) == 0 || json.Unmarshal(req.Data, &data) != nil {
		return AdminFailed(event, AdminErrNoServerLabel)
	}

	var tw ports.TokenWorker
	ok := false
	if snap := a.source.Snapshot(); snap != nil && snap.Registry != nil {
		tw, ok = registry.ResolveAs[ports.TokenWorker](snap.Registry, constants.WorkerKindToken)
	}
	if !ok {
		return AdminOK(event, map[string]any{"hasWorker": false, "token": ""})
	}
	token, err := tw.Get(ctx)
	if err != nil {
		return AdminFailed(event, err.Error())
	}
	return AdminOK(event, map[string]any{"hasWorker": true, "token": token, "serverLabel": data.ServerLabel})
}
