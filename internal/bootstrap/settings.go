package bootstrap

import (
	"context"

	"github.com/omnihive/backend/internal/application/services"
	"github.com/omnihive/backend/internal/domain/models"
	"github.com/omnihive/backend/internal/domain/ports"
	"github.com/omnihive/backend/internal/infrastructure/config"
)

// SettingsLoader reads settings through source on every rebuild and overlays
// the runtime environment
func SettingsLoader(source ports.ConfigWorker, runtime config.Runtime) services.SettingsLoader {
	return func(ctx context.Context) (*models.ServerSettings, error) {
		settings, err := source.Get(ctx)
		if err != nil {
			return nil, err
		}
		if settings == nil {
			settings = &models.ServerSettings{}
		}
		runtime.Apply(settings)
		return settings, nil
	}
}
