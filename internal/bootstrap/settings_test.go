package bootstrap

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omnihive/backend/internal/infrastructure/config"
	"github.com/omnihive/backend/pkg/constants"
)

func TestSettingsLoader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hive.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
workers:
  - name: fast
    type: cache
    package: memory
    enabled: true
`), 0o600))

	load := SettingsLoader(config.NewFileWorker(path), config.Runtime{AdminPassword: "pw", WebPort: 3001, DisableSecurity: true})
	settings, err := load(context.Background())
	require.NoError(t, err)

	require.Len(t, settings.Workers, 1)
	assert.Equal(t, "fast", settings.Workers[0].Name)
	assert.Equal(t, "pw", settings.Env(constants.EnvAdminPassword))
	assert.Equal(t, true, settings.Features[constants.FeatureDisableSecurity])

	_, err = SettingsLoader(config.NewFileWorker(filepath.Join(t.TempDir(), "absent.yaml")), config.Runtime{})(context.Background())
	assert.Error(t, err)
}
