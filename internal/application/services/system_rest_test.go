package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omnihive/backend/internal/application/appctx"
	"github.com/omnihive/backend/internal/domain/models"
	"github.com/omnihive/backend/internal/domain/ports"
	"github.com/omnihive/backend/pkg/auth"
	"github.com/omnihive/backend/pkg/constants"
	apperrors "github.com/omnihive/backend/pkg/errors"
)

func tokenApp(t *testing.T, metadata map[string]any) *appctx.AppContext {
	t.Helper()
	settings := &models.ServerSettings{}
	settings.SetEnv(constants.EnvAdminPassword, "secret", true)

	app := appctx.New(nil)
	reg := newRegistry(models.Capability{
		Kind:     constants.WorkerKindToken,
		Name:     "jwt",
		Instance: &fakeToken{token: "tkn"},
		Metadata: metadata,
	})
	app.Publish(appctx.NewSnapshot(reg, settings, nil, nil))
	return app
}

func TestAccessTokenEndpoint(t *testing.T) {
	metadata := map[string]any{"clientId": "hive", "audience": "omni"}
	generator, err := auth.GeneratorHash(metadata, "")
	require.NoError(t, err)

	ep := NewAccessTokenEndpoint(tokenApp(t, metadata))
	assert.Equal(t, "token", ep.Route())
	assert.Equal(t, http.MethodPost, ep.Method())

	tests := []struct {
		name    string
		body    string
		check   func(error) bool
		wantTok string
	}{
		{name: "empty body", body: "", check: apperrors.IsValidation},
		{name: "not json", body: "generator", check: apperrors.IsValidation},
		{name: "missing generator", body: `{}`, check: apperrors.IsValidation},
		{name: "wrong generator", body: `{"generator":"abc"}`, check: apperrors.IsUnauthorized},
		{name: "valid", body: `{"generator":"` + generator + `"}`, wantTok: "tkn"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := ep.Execute(context.Background(), ports.RestRequest{Body: []byte(tt.body)})
			if tt.check != nil {
				require.Error(t, err)
				assert.True(t, tt.check(err), err.Error())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, http.StatusOK, resp.Status)
			assert.Equal(t, map[string]any{"token": tt.wantTok}, resp.Body)
		})
	}
}

func TestAccessTokenEndpoint_NoWorker(t *testing.T) {
	ep := NewAccessTokenEndpoint(appctx.New(nil))
	_, err := ep.Execute(context.Background(), ports.RestRequest{Body: []byte(`{"generator":"abc"}`)})
	require.Error(t, err)
	assert.Equal(t, "CONFIGURATION_ERROR", apperrors.GetErrorCode(err))
}

func TestRegisterEndpoint(t *testing.T) {
	ep := NewRegisterEndpoint(tokenApp(t, map[string]any{}))

	tests := []struct {
		name    string
		access  string
		body    string
		wantErr bool
	}{
		{name: "valid", access: "tkn", body: `{"adminPassword":"secret"}`},
		{name: "wrong password", access: "tkn", body: `{"adminPassword":"nope"}`, wantErr: true},
		{name: "missing token", body: `{"adminPassword":"secret"}`, wantErr: true},
		{name: "bad token", access: "other", body: `{"adminPassword":"secret"}`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			headers := http.Header{}
			if tt.access != "" {
				headers.Set(constants.HeaderAccess, tt.access)
			}
			resp, err := ep.Execute(context.Background(), ports.RestRequest{Headers: headers, Body: []byte(tt.body)})
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apperrors.IsUnauthorized(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, map[string]any{"verified": true}, resp.Body)
		})
	}
}

func TestMergeSwagger(t *testing.T) {
	settings := &models.ServerSettings{}
	settings.SetEnv(constants.EnvWebRootURL, "http://localhost:3001/", false)

	doc := MergeSwagger(settings, []RestEndpoint{
		{Base: constants.RouteAdminRest, Worker: NewAccessTokenEndpoint(emptySource{})},
		{Base: constants.RouteCustomRest, Worker: &fakeRest{route: "ping", doc: map[string]any{
			"paths":       map[string]any{"ping": map[string]any{"get": map[string]any{}}},
			"definitions": map[string]any{"Ping": map[string]any{}},
		}}},
		{Base: constants.RouteCustomRest, Worker: &fakeRest{route: "silent"}},
	})

	assert.Equal(t, "3.0.0", doc["openapi"])
	paths := doc["paths"].(map[string]any)
	assert.Len(t, paths, 2)
	assert.Contains(t, paths, "/ohAdmin/rest/token")
	assert.Contains(t, paths, "/custom/rest/ping")

	defs := doc["definitions"].(map[string]any)
	assert.Contains(t, defs, "SystemAccessTokenParameters")
	assert.Contains(t, defs, "Ping")

	assert.Equal(t, []any{map[string]any{"url": "http://localhost:3001"}}, doc["servers"])
}
