package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omnihive/backend/internal/application/appctx"
	"github.com/omnihive/backend/internal/domain/events"
	"github.com/omnihive/backend/internal/domain/models"
	"github.com/omnihive/backend/pkg/constants"
)

type fakeBackend struct {
	refreshed chan struct{}
}

func (b *fakeBackend) Status() events.StatusPayload {
	return events.StatusPayload{ServerStatus: "online"}
}

func (b *fakeBackend) URLs() []models.RegisteredURL {
	return []models.RegisteredURL{{Path: "/app/graphql", Type: models.URLTypeGraphDatabase}}
}

func (b *fakeBackend) Refresh(ctx context.Context) error {
	b.refreshed <- struct{}{}
	return nil
}

func newAdmin(t *testing.T, password string, withToken bool) (*Admin, *fakeBackend, *fakeConfig) {
	t.Helper()
	app := appctx.New(nil)
	if withToken {
		reg := newRegistry(models.Capability{Kind: constants.WorkerKindToken, Name: "jwt", Instance: &fakeToken{token: "tkn"}})
		app.Publish(appctx.NewSnapshot(reg, nil, nil, nil))
	}
	backend := &fakeBackend{refreshed: make(chan struct{}, 1)}
	cfg := &fakeConfig{settings: &models.ServerSettings{Features: map[string]any{"x": true}}}
	a := NewAdmin(AdminOptions{
		Backend:  backend,
		Source:   app,
		Config:   cfg,
		Password: password,
		Bus:      NewEventBus(nil),
	})
	return a, backend, cfg
}

func TestAdmin_PasswordProtectedEvents(t *testing.T) {
	a, _, _ := newAdmin(t, "secret", true)

	tests := []struct {
		request  string
		response string
	}{
		{constants.AdminEventStatusRequest, constants.AdminEventStatusResponse},
		{constants.AdminEventURLsRequest, constants.AdminEventURLsResponse},
		{constants.AdminEventRegisterRequest, constants.AdminEventRegisterResponse},
		{constants.AdminEventConfigRequest, constants.AdminEventConfigResponse},
		{constants.AdminEventConfigSaveRequest, constants.AdminEventConfigSaveResponse},
		{constants.AdminEventRefreshRequest, constants.AdminEventRefreshResponse},
	}
	for _, tt := range tests {
		t.Run(tt.request, func(t *testing.T) {
			resp := a.Handle(context.Background(), AdminRequest{Event: tt.request, AdminPassword: "wrong"})
			require.NotNil(t, resp)
			assert.Equal(t, tt.response, resp.Event)
			assert.False(t, resp.RequestComplete)
			assert.Equal(t, AdminErrInvalidPassword, resp.RequestError)
		})
	}
}

func TestAdmin_Heartbeat(t *testing.T) {
	a, _, _ := newAdmin(t, "secret", false)

	resp := a.Handle(context.Background(), AdminRequest{Event: constants.AdminEventHeartbeatRequest})
	require.NotNil(t, resp)
	assert.Equal(t, constants.AdminEventHeartbeatResponse, resp.Event)
	assert.True(t, resp.RequestComplete)

	assert.Nil(t, a.Handle(context.Background(), AdminRequest{Event: constants.AdminEventHeartbeatResponse}))
}

func TestAdmin_StatusAndURLs(t *testing.T) {
	a, _, _ := newAdmin(t, "secret", false)

	resp := a.Handle(context.Background(), AdminRequest{Event: constants.AdminEventStatusRequest, AdminPassword: "secret"})
	require.NotNil(t, resp)
	assert.True(t, resp.RequestComplete)
	assert.Equal(t, events.StatusPayload{ServerStatus: "online"}, resp.Data)

	resp = a.Handle(context.Background(), AdminRequest{Event: constants.AdminEventURLsRequest, AdminPassword: "secret"})
	require.NotNil(t, resp)
	out, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.JSONEq(t, `{"event":"urls-response","requestComplete":true,"data":{"urls":[{"path":"/app/graphql","type":"graphDatabase"}]}}`, string(out))
}

func TestAdmin_PasswordComparedVerbatim(t *testing.T) {
	a, _, _ := newAdmin(t, "$2a$MySecret", false)

	resp := a.Handle(context.Background(), AdminRequest{Event: constants.AdminEventRegisterRequest, AdminPassword: "$2a$MySecret"})
	require.NotNil(t, resp)
	assert.True(t, resp.RequestComplete)
	assert.Equal(t, map[string]any{"verified": true}, resp.Data)

	resp = a.Handle(context.Background(), AdminRequest{Event: constants.AdminEventRegisterRequest, AdminPassword: " "})
	require.NotNil(t, resp)
	assert.False(t, resp.RequestComplete)
}

func TestAdmin_Config(t *testing.T) {
	a, _, cfg := newAdmin(t, "secret", false)

	resp := a.Handle(context.Background(), AdminRequest{Event: constants.AdminEventConfigRequest, AdminPassword: "secret"})
	require.NotNil(t, resp)
	assert.True(t, resp.RequestComplete)
	assert.Equal(t, map[string]any{"config": cfg.settings}, resp.Data)

	t.Run("save requires config", func(t *testing.T) {
		resp := a.Handle(context.Background(), AdminRequest{Event: constants.AdminEventConfigSaveRequest, AdminPassword: "secret"})
		require.NotNil(t, resp)
		assert.Equal(t, AdminErrNoConfig, resp.RequestError)
	})

	t.Run("save stores settings", func(t *testing.T) {
		data := json.RawMessage(`{"config":{"environmentVariables":[{"key":"OH_WEB_PORT","value":4000}],"workers":[]}}`)
		resp := a.Handle(context.Background(), AdminRequest{Event: constants.AdminEventConfigSaveRequest, AdminPassword: "secret", Data: data})
		require.NotNil(t, resp)
		assert.True(t, resp.RequestComplete)

		saved, err := cfg.Get(context.Background())
		require.NoError(t, err)
		assert.EqualValues(t, 4000, saved.Env(constants.EnvWebPort))
	})
}

func TestAdmin_Refresh(t *testing.T) {
	a, backend, _ := newAdmin(t, "secret", false)

	resp := a.Handle(context.Background(), AdminRequest{Event: constants.AdminEventRefreshRequest, AdminPassword: "secret"})
	require.NotNil(t, resp)
	assert.True(t, resp.RequestComplete)
	assert.Equal(t, map[string]any{"refresh": true}, resp.Data)

	select {
	case <-backend.refreshed:
	case <-time.After(time.Second):
		t.Fatal("refresh was not started")
	}
}

func TestAdmin_AccessToken(t *testing.T) {
	tests := []struct {
		name      string
		withToken bool
		data      string
		want      any
		wantErr   string
	}{
		{name: "no label", withToken: true, wantErr: AdminErrNoServerLabel},
		{name: "no worker", withToken: false, data: `{"serverLabel":"dev"}`, want: map[string]any{"hasWorker": false, "token": ""}},
		{name: "token", withToken: true, data: `{"serverLabel":"dev"}`, want: map[string]any{"hasWorker": true, "token": "tkn", "serverLabel": "dev"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, _, _ := newAdmin(t, "secret", tt.withToken)
			req := AdminRequest{Event: constants.AdminEventAccessTokenRequest}
			if tt.data != "" {
				req.Data = json.RawMessage(tt.data)
			}
			resp := a.Handle(context.Background(), req)
			require.NotNil(t, resp)
			assert.Equal(t, constants.AdminEventAccessTokenResponse, resp.Event)
			if tt.wantErr != "" {
				assert.Equal(t, tt.wantErr, resp.RequestError)
				return
			}
			assert.True(t, resp.RequestComplete)
			assert.Equal(t, tt.want, resp.Data)
		})
	}
}

func TestAdmin_UnknownEvent(t *testing.T) {
	a, _, _ := newAdmin(t, "secret", false)

	resp := a.Handle(context.Background(), AdminRequest{Event: "launch-request"})
	require.NotNil(t, resp)
	assert.Equal(t, constants.AdminEventUnknownResponse, resp.Event)
	assert.Equal(t, AdminErrUnknownEvent, resp.RequestError)
}
