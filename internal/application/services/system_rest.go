package services

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/omnihive/backend/internal/application/appctx"
	"github.com/omnihive/backend/internal/application/registry"
	"github.com/omnihive/backend/internal/domain/models"
	"github.com/omnihive/backend/internal/domain/ports"
	"github.com/omnihive/backend/pkg/auth"
	"github.com/omnihive/backend/pkg/constants"
	apperrors "github.com/omnihive/backend/pkg/errors"
)

// SnapshotSource yields the published snapshot
type SnapshotSource interface {
	Snapshot() *appctx.Snapshot
}

// MetaHashAlgorithm names the token worker metadata key selecting the
// generator hash
const MetaHashAlgorithm = "hashAlgorithm"

// AdminPassword reads the configured admin password from settings
func AdminPassword(settings *models.ServerSettings) string {
	if settings == nil {
		return ""
	}
	pw, _ := settings.Env(constants.EnvAdminPassword).(string)
	return pw
}

func decodeBody(body []byte, out any) error {
	if len(strings.TrimSpace(string(body))) == 0 {
		return apperrors.NewValidationError("body", "request must have parameters")
	}
	if err := json.Unmarshal(body, out); err != nil {
		return apperrors.NewValidationError("body", "request body must be a JSON object")
	}
	return nil
}

// IssueAccessToken checks a generator against the token worker metadata hash
// and returns a fresh token
func IssueAccessToken(ctx context.Context, snap *appctx.Snapshot, generator string) (string, error) {
	c, ok := snap.Registry.Resolve(constants.WorkerKindToken)
	if !ok {
		return "", apperrors.NewConfigurationError("a token worker cannot be found")
	}
	tw, ok := c.Instance.(ports.TokenWorker)
	if !ok || c.Metadata == nil {
		return "", apperrors.NewConfigurationError("token worker %s has no metadata", c.Name)
	}

	algorithm, _ := c.Metadata[MetaHashAlgorithm].(string)
	valid, err := auth.VerifyGenerator(generator, c.Metadata, algorithm)
	if err != nil {
		return "", apperrors.NewConfigurationError("token worker %s: %v", c.Name, err)
	}
	if !valid {
		return "", apperrors.NewUnauthorizedError("token cannot be generated")
	}
	return tw.Get(ctx)
}

// VerifyRegistration checks an access token and the admin password
func VerifyRegistration(ctx context.Context, snap *appctx.Snapshot, access, password string) error {
	if !auth.VerifyAdminPassword(password, AdminPassword(snap.Settings)) {
		return apperrors.NewUnauthorizedError("admin password is incorrect")
	}
	tw, ok := registry.ResolveAs[ports.TokenWorker](snap.Registry, constants.WorkerKindToken)
	if !ok {
		return apperrors.NewConfigurationError("a token worker cannot be found")
	}
	if access == "" {
		return apperrors.NewUnauthorizedError("access token is missing")
	}
	valid, err := tw.Verify(ctx, access)
	if err != nil || !valid {
		return apperrors.NewUnauthorizedError("access token is invalid")
	}
	return nil
}

// AccessTokenEndpoint is the system REST worker issuing access tokens
type AccessTokenEndpoint struct {
	source SnapshotSource
}

// NewAccessTokenEndpoint creates the token endpoint
func NewAccessTokenEndpoint(source SnapshotSource) *AccessTokenEndpoint {
	return &AccessTokenEndpoint{source: source}
}

func (e *AccessTokenEndpoint) Route() string  { return "token" }
func (e *AccessTokenEndpoint) Method() string { return http.MethodPost }

// Execute expects {"generator": "<hash>"} and answers {"token": "..."}
func (e *AccessTokenEndpoint) Execute(ctx context.Context, req ports.RestRequest) (ports.RestResponse, error) {
	var body struct {
		Generator string `json:"generator"`
	}
	if err := decodeBody(req.Body, &body); err != nil {
		return ports.RestResponse{}, err
	}
	if body.Generator == "" {
		return ports.RestResponse{}, apperrors.NewValidationError("generator", "request must have parameters")
	}

	token, err := IssueAccessToken(ctx, e.source.Snapshot(), body.Generator)
	if err != nil {
		return ports.RestResponse{}, err
	}
	return ports.RestResponse{Status: http.StatusOK, Body: map[string]any{"token": token}}, nil
}

func (e *AccessTokenEndpoint) Swagger() map[string]any {
	return map[string]any{
		"definitions": map[string]any{
			"SystemAccessTokenParameters": map[string]any{
				"required":   []any{"generator"},
				"properties": map[string]any{"generator": map[string]any{"type": "string"}},
			},
		},
		"paths": map[string]any{
			"/token": map[string]any{
				"post": map[string]any{
					"description": "Retrieve an access token",
					"tags":        []any{"System"},
					"requestBody": jsonBody("#/definitions/SystemAccessTokenParameters"),
					"responses": map[string]any{
						"200": map[string]any{"description": "Access token"},
					},
				},
			},
		},
	}
}

// RegisterEndpoint is the system REST worker verifying an admin registration
type RegisterEndpoint struct {
	source SnapshotSource
}

// NewRegisterEndpoint creates the register endpoint
func NewRegisterEndpoint(source SnapshotSource) *RegisterEndpoint {
	return &RegisterEndpoint{source: source}
}

func (e *RegisterEndpoint) Route() string  { return "register" }
func (e *RegisterEndpoint) Method() string { return http.MethodPost }

// Execute expects {"adminPassword": "..."} with the access token header
func (e *RegisterEndpoint) Execute(ctx context.Context, req ports.RestRequest) (ports.RestResponse, error) {
	var body struct {
		AdminPassword string `json:"adminPassword"`
	}
	if err := decodeBody(req.Body, &body); err != nil {
		return ports.RestResponse{}, err
	}
	if err := VerifyRegistration(ctx, e.source.Snapshot(), req.Headers.Get(constants.HeaderAccess), body.AdminPassword); err != nil {
		return ports.RestResponse{}, err
	}
	return ports.RestResponse{Status: http.StatusOK, Body: map[string]any{"verified": true}}, nil
}

func (e *RegisterEndpoint) Swagger() map[string]any {
	return map[string]any{
		"definitions": map[string]any{
			"SystemRegisterParameters": map[string]any{
				"required":   []any{"adminPassword"},
				"properties": map[string]any{"adminPassword": map[string]any{"type": "string"}},
			},
		},
		"paths": map[string]any{
			"/register": map[string]any{
				"post": map[string]any{
					"description": "Verify an access token and the admin password",
					"tags":        []any{"System"},
					"parameters": []any{
						map[string]any{"in": "header", "name": constants.HeaderAccess, "required": true, "schema": map[string]any{"type": "string"}},
					},
					"requestBody": jsonBody("#/definitions/SystemRegisterParameters"),
					"responses": map[string]any{
						"200": map[string]any{"description": "Registration verified"},
					},
				},
			},
		},
	}
}

func jsonBody(ref string) map[string]any {
	return map[string]any{
		"required": true,
		"content": map[string]any{
			constants.ContentTypeJSON: map[string]any{"schema": map[string]any{"$ref": ref}},
		},
	}
}

// MergeSwagger combines the swagger fragments of REST workers into one
// document. Fragment paths are relative to the endpoint's mount root.
func MergeSwagger(settings *models.ServerSettings, endpoints []RestEndpoint) map[string]any {
	paths := map[string]any{}
	definitions := map[string]any{}

	for _, ep := range endpoints {
		frag := ep.Worker.Swagger()
		if frag == nil {
			continue
		}
		if defs, ok := frag["definitions"].(map[string]any); ok {
			for name, def := range defs {
				definitions[name] = def
			}
		}
		if ps, ok := frag["paths"].(map[string]any); ok {
			for p, item := range ps {
				paths[ep.Base+"/"+strings.TrimLeft(p, "/")] = item
			}
		}
	}

	doc := map[string]any{
		"openapi":     "3.0.0",
		"info":        map[string]any{"title": "Hive REST functions", "version": "1.0.0"},
		"paths":       paths,
		"definitions": definitions,
	}
	if settings != nil {
		if root, _ := settings.Env(constants.EnvWebRootURL).(string); root != "" {
			doc["servers"] = []any{map[string]any{"url": strings.TrimRight(root, "/")}}
		}
	}
	return doc
}
