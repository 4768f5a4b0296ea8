// Package config loads server settings and provides the file config worker.
package config

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/omnihive/backend/internal/domain/models"
	"github.com/omnihive/backend/internal/domain/ports"
)

// Format is the settings file encoding
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatFor picks the encoding from a file extension; unknown extensions are YAML
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	default:
		return FormatYAML
	}
}

// Decode parses a settings document
func Decode(data []byte, format Format) (*models.ServerSettings, error) {
	settings := &models.ServerSettings{}
	var err error
	if format == FormatJSON {
		err = json.Unmarshal(data, settings)
	} else {
		err = yaml.Unmarshal(data, settings)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s settings: %w", format, err)
	}
	if settings.Features == nil {
		settings.Features = map[string]any{}
	}
	return settings, nil
}

// Encode serializes a settings document
func Encode(settings *models.ServerSettings, format Format) ([]byte, error) {
	if format == FormatJSON {
		return json.MarshalIndent(settings, "", "  ")
	}
	return yaml.Marshal(settings)
}

// FileWorker reads and writes the settings file. Writes go through a temp
// file and rename so readers never see a partial document.
type FileWorker struct {
	path   string
	format Format
	mu     sync.Mutex
}

// NewFileWorker creates a config worker for path; format follows the extension
func NewFileWorker(path string) *FileWorker {
	return &FileWorker{path: path, format: FormatFor(path)}
}

// NewFileWorkerWithFormat forces an encoding regardless of extension
func NewFileWorkerWithFormat(path string, format Format) *FileWorker {
	return &FileWorker{path: path, format: format}
}

// Path returns the settings file path
func (w *FileWorker) Path() string {
	return w.path
}

func (w *FileWorker) Get(ctx context.Context) (*models.ServerSettings, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	data, err := os.ReadFile(w.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read settings %s: %w", w.path, err)
	}
	return Decode(data, w.format)
}

func (w *FileWorker) Set(ctx context.Context, settings *models.ServerSettings) error {
	data, err := Encode(settings, w.format)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	dir := filepath.Dir(w.path)
	tmp, err := os.CreateTemp(dir, ".hive-settings-*")
	if err != nil {
		return fmt.Errorf("failed to create temp settings file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, w.path)
}

var _ ports.ConfigWorker = (*FileWorker)(nil)
