package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/omnihive/backend/internal/application/appctx"
	"github.com/omnihive/backend/internal/application/services"
	"github.com/omnihive/backend/internal/bootstrap"
	"github.com/omnihive/backend/internal/domain"
	"github.com/omnihive/backend/internal/domain/events"
	"github.com/omnihive/backend/internal/infrastructure/config"
	"github.com/omnihive/backend/internal/infrastructure/logging"
	"github.com/omnihive/backend/internal/infrastructure/metrics"
	"github.com/omnihive/backend/internal/interfaces/middleware"
	"github.com/omnihive/backend/internal/interfaces/rest"
	"github.com/omnihive/backend/internal/interfaces/ws"
)

const shutdownTimeout = 10 * time.Second

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Run the web and admin servers (default)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer(cmd.Context())
	},
}

func runServer(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	rt, err := loadRuntime()
	if err != nil {
		return err
	}

	logger, err := logging.New(logging.Config{Level: rt.LogLevel, LogDir: rt.LogDir}, os.Stdout)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger.WithFields(logrus.Fields{"version": Version, "settings": rt.SettingsFile}).Info("🚀 Starting hive")

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	app := appctx.New(logger)
	bus := services.NewEventBus(logger)
	settingsWorker := config.NewFileWorker(rt.SettingsFile)
	factory := bootstrap.NewFactory(rt, app, logger)

	// the web mounter needs the admin engine, which needs the lifecycle
	var mountWeb services.Mounter
	lifecycle := services.NewLifecycle(app, services.LifecycleOptions{
		Settings: bootstrap.SettingsLoader(settingsWorker, rt),
		Factory:  factory.Build,
		Mount: func(ctx context.Context, b *services.Build) (services.Listener, error) {
			return mountWeb(ctx, b)
		},
		Bus:     bus,
		Metrics: m,
		Timeout: rt.RebuildTimeout,
		Logger:  logger,
	})

	admin := services.NewAdmin(services.AdminOptions{
		Backend:  lifecycle,
		Source:   app,
		Config:   settingsWorker,
		Password: rt.AdminPassword,
		Bus:      bus,
		Logger:   logger,
	})
	hub := ws.NewHub(ws.Options{Admin: admin, Logger: logger, Metrics: m})
	detachHub := hub.Attach(bus)
	defer detachHub()
	go hub.Run(ctx)

	deps := rest.Deps{Status: lifecycle, Source: app, Hub: hub, Metrics: m, Logger: logger}
	adminEngine := rest.NewAdminEngine(deps)
	sw := rest.NewSwitch(adminEngine)
	mountWeb = rest.Mounter(sw, deps)

	scheduler := services.NewSchedulerService(logger)
	defer scheduler.Stop()
	bus.Subscribe(events.ServerStatusChanged, func(ctx context.Context, payload interface{}) error {
		status, _ := payload.(events.StatusPayload)
		switch status.ServerStatus {
		case string(domain.ServerStatusOnline):
			if b := lifecycle.Current(); b != nil {
				scheduler.Reload(b.Snapshot.Registry, b.Snapshot.Settings)
			}
		case string(domain.ServerStatusAdmin):
			scheduler.Reload(nil, nil)
		}
		return nil
	})
	bus.Subscribe(events.ConfigSaved, func(ctx context.Context, payload interface{}) error {
		logger.Info("📝 Settings saved, rebuilding")
		go func() {
			if err := lifecycle.Refresh(context.Background()); err != nil {
				logger.WithError(err).Error("❌ Rebuild after settings save failed")
			}
		}()
		return nil
	})

	servers := []*http.Server{newServer(rt.WebPort, middleware.CORS(sw))}
	if rt.AdminPort != rt.WebPort {
		servers = append(servers, newServer(rt.AdminPort, middleware.CORS(adminEngine)))
	}
	errCh := make(chan error, len(servers))
	for _, srv := range servers {
		go func(srv *http.Server) {
			logger.WithField("addr", srv.Addr).Info("🌐 Listening")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("server %s: %w", srv.Addr, err)
			}
		}(srv)
	}

	if err := lifecycle.Start(ctx); err != nil {
		logger.WithError(err).Warn("⚠️ Initial build failed, serving admin only")
	}

	select {
	case <-ctx.Done():
		logger.Info("Shutting down server...")
	case err = <-errCh:
		logger.WithError(err).Error("❌ Server stopped unexpectedly")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	hub.Close()
	for _, srv := range servers {
		if serr := srv.Shutdown(shutdownCtx); serr != nil {
			logger.WithError(serr).Warn("⚠️ Server forced to shutdown")
		}
	}
	if serr := lifecycle.Shutdown(shutdownCtx); serr != nil {
		logger.WithError(serr).Warn("⚠️ Workers did not close cleanly")
	}
	logger.Info("Server exiting")
	return err
}

func newServer(port int, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}
}
