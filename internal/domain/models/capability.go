package models

import "github.com/omnihive/backend/pkg/constants"

// WorkerConfig is one worker entry in the server settings file
type WorkerConfig struct {
	Name      string               `json:"name" yaml:"name"`
	Kind      constants.WorkerKind `json:"type" yaml:"type"`
	Package   string               `json:"package" yaml:"package"`
	Enabled   bool                 `json:"enabled" yaml:"enabled"`
	IsDefault bool                 `json:"default" yaml:"default"`
	Metadata  map[string]any       `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// Capability is a registered worker instance
type Capability struct {
	Kind      constants.WorkerKind `json:"kind"`
	Name      string               `json:"name"`
	Enabled   bool                 `json:"enabled"`
	IsDefault bool                 `json:"isDefault"`
	IsCore    bool                 `json:"isCore"`
	Instance  any                  `json:"-"`
	Metadata  map[string]any       `json:"metadata,omitempty"`
}

// RegisteredURL is one mounted endpoint, reported to admin clients
type RegisteredURL struct {
	Path     string         `json:"path"`
	Type     string         `json:"type"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Registered URL types
const (
	URLTypeGraphDatabase = "graphDatabase"
	URLTypeGraphFunction = "graphFunction"
	URLTypeRestFunction  = "restFunction"
	URLTypeSystemRest    = "systemRest"
	URLTypeSwagger       = "swagger"
	URLTypeGraphQLPlay   = "graphPlayground"
)
