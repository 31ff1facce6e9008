// Package bootstrap wires configuration, logging, the Elasticsearch store
// and the services for the place-schema commands.
package bootstrap

import (
	"context"
	"fmt"

	infralogger "github.com/jonesrussell/north-cloud/place-schema/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/place-schema/internal/config"
	"github.com/jonesrussell/north-cloud/place-schema/internal/contract"
	"github.com/jonesrussell/north-cloud/place-schema/internal/elasticsearch"
	"github.com/jonesrussell/north-cloud/place-schema/internal/metrics"
	"github.com/jonesrussell/north-cloud/place-schema/internal/schema"
	"github.com/jonesrussell/north-cloud/place-schema/internal/service"
)

// App holds everything a command needs.
type App struct {
	Config  *config.Config
	Logger  infralogger.Logger
	Metrics *metrics.Metrics
	Options schema.Options
	// Store is nil for an offline App.
	Store  *elasticsearch.Client
	Schema *service.SchemaService
	Verify *service.VerifyService
}

// Options for Setup.
type Options struct {
	ConfigPath string
	// Offline skips the cluster connection. Only commands that never touch
	// Elasticsearch may use an offline App.
	Offline bool
	// Debug forces debug logging.
	Debug bool
}

// Setup loads configuration and builds the App.
func Setup(ctx context.Context, opts Options) (*App, error) {
	// Phase 1: config and logger
	cfg, err := LoadConfig(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	if opts.Debug {
		cfg.Service.Debug = true
		cfg.Logging.Level = "debug"
	}

	log, err := CreateLogger(cfg)
	if err != nil {
		return nil, err
	}

	schemaOpts, err := SchemaOptions(cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config:  cfg,
		Logger:  log,
		Metrics: metrics.New(),
		Options: schemaOpts,
	}

	// Phase 2: Elasticsearch
	var (
		indexStore    service.IndexStore
		contractStore contract.Store
	)
	if !opts.Offline {
		app.Store, err = SetupElasticsearch(ctx, cfg, app.Metrics, log)
		if err != nil {
			return nil, err
		}
		indexStore, contractStore = app.Store, app.Store
		log.Info("Elasticsearch client initialized", infralogger.String("url", cfg.Elasticsearch.URL))
	}

	// Phase 3: services
	app.Schema, err = service.NewSchemaService(indexStore, schemaOpts, log)
	if err != nil {
		return nil, fmt.Errorf("schema service: %w", err)
	}

	runner := contract.NewRunner(contractStore, app.Schema.Body(), contract.RunnerOptions{
		IndexPrefix:     cfg.Schema.IndexPrefix,
		Repeat:          cfg.Verify.Repeat,
		ScenarioTimeout: cfg.Verify.ScenarioTimeout,
		SettleDelay:     cfg.Verify.SettleDelay,
		KeepIndexes:     cfg.Verify.KeepIndexes,
	}, log, app.Metrics)
	app.Verify = service.NewVerifyService(runner, schemaOpts, log)

	return app, nil
}

// Close flushes the logger.
func (a *App) Close() {
	_ = a.Logger.Sync()
}
