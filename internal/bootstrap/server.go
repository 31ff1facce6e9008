package bootstrap

import (
	"context"
	"errors"
	"fmt"

	infralogger "github.com/jonesrussell/north-cloud/place-schema/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/place-schema/infrastructure/profiling"
	"github.com/jonesrussell/north-cloud/place-schema/internal/api"
)

var errOfflineServe = errors.New("serve needs an Elasticsearch connection")

// Serve runs the HTTP API until ctx ends or the process is signalled.
func Serve(ctx context.Context, app *App) error {
	if app.Store == nil {
		return errOfflineServe
	}

	cfg := app.Config
	app.Logger.Info("Starting place-schema service",
		infralogger.String("name", cfg.Service.Name),
		infralogger.String("version", cfg.Service.Version),
		infralogger.Int("port", cfg.Service.Port),
	)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := profiling.Start(ctx, cfg.Service.PprofPort, app.Logger); err != nil {
		return err
	}

	server := api.NewServer(
		api.NewHandler(app.Schema, app.Verify, app.Logger),
		api.ServerConfig{
			Port:           cfg.Service.Port,
			Debug:          cfg.Service.Debug,
			ServiceName:    cfg.Service.Name,
			ServiceVersion: cfg.Service.Version,
		},
		app.Metrics,
		app.Store.Ping,
		app.Logger,
	)

	if err := server.RunWithGracefulShutdown(ctx); err != nil {
		app.Logger.Error("Server error", infralogger.Error(err))
		return fmt.Errorf("server error: %w", err)
	}

	app.Logger.Info("place-schema service stopped")
	return nil
}
