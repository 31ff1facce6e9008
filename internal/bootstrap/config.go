package bootstrap

import (
	"fmt"

	infraconfig "github.com/jonesrussell/north-cloud/place-schema/infrastructure/config"
	infralogger "github.com/jonesrussell/north-cloud/place-schema/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/place-schema/internal/config"
	"github.com/jonesrussell/north-cloud/place-schema/internal/schema"
)

const defaultConfigPath = "config.yml"

// LoadConfig loads and validates configuration. An empty path falls back to
// $CONFIG_PATH, then config.yml.
func LoadConfig(path string) (*config.Config, error) {
	if path == "" {
		path = infraconfig.GetConfigPath(defaultConfigPath)
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if validationErr := cfg.Validate(); validationErr != nil {
		return nil, fmt.Errorf("validate config: %w", validationErr)
	}
	return cfg, nil
}

// CreateLogger creates a logger instance from configuration.
func CreateLogger(cfg *config.Config) (infralogger.Logger, error) {
	log, err := infralogger.New(infralogger.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		Development: cfg.Service.Debug,
	})
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	return log.With(infralogger.String("service", cfg.Service.Name)), nil
}

// SchemaOptions turns the schema section into schema.Options. Rules from
// synonyms_file are added after the country code table.
func SchemaOptions(cfg *config.Config) (schema.Options, error) {
	opts := schema.DefaultOptions()
	opts.Shards = cfg.Schema.Shards
	opts.Replicas = cfg.Schema.Replicas
	opts.NGramMin = cfg.Schema.NGramMin
	opts.NGramMax = cfg.Schema.NGramMax
	opts.PositionIncrementGap = cfg.Schema.PositionIncrementGap

	if cfg.Schema.SynonymsFile != "" {
		extra, err := schema.LoadSynonymsFile(cfg.Schema.SynonymsFile)
		if err != nil {
			return schema.Options{}, fmt.Errorf("load synonyms: %w", err)
		}
		opts.Synonyms = opts.Synonyms.Merge(extra)
	}

	if err := opts.Validate(); err != nil {
		return schema.Options{}, fmt.Errorf("schema options: %w", err)
	}
	return opts, nil
}
