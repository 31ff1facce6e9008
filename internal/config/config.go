// Package config holds place-schema's runtime configuration.
package config

import (
	"fmt"
	"time"

	infraconfig "github.com/jonesrussell/north-cloud/place-schema/infrastructure/config"
)

const (
	defaultServiceName    = "place-schema"
	defaultServiceVersion = "1.0.0"
	defaultServicePort    = 8095

	defaultESURL        = "http://localhost:9200"
	defaultESMaxRetries = 3
	defaultESTimeout    = 30 * time.Second
	defaultSearchType   = "dfs_query_then_fetch"

	defaultIndexPrefix  = "place-schema"
	defaultShards       = 1
	defaultNGramMin     = 1
	defaultNGramMax     = 24
	defaultPositionGap  = 100
	defaultVerifyRepeat = 2
	defaultScenarioTime = time.Minute

	defaultLogLevel  = "info"
	defaultLogFormat = "json"
)

// Config is loaded once at startup and passed down explicitly.
type Config struct {
	Service       ServiceConfig       `yaml:"service"`
	Elasticsearch ElasticsearchConfig `yaml:"elasticsearch"`
	Schema        SchemaConfig        `yaml:"schema"`
	Verify        VerifyConfig        `yaml:"verify"`
	Logging       LoggingConfig       `yaml:"logging"`
}

// ServiceConfig holds HTTP service settings.
type ServiceConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
	Port    int    `env:"PLACE_SCHEMA_PORT" yaml:"port"`
	Debug   bool   `env:"APP_DEBUG"         yaml:"debug"`
	// PprofPort serves runtime profiles on localhost. Zero disables them.
	PprofPort int `env:"PPROF_PORT" yaml:"pprof_port"`
}

// ElasticsearchConfig holds cluster connection settings.
type ElasticsearchConfig struct {
	URL                string        `env:"ELASTICSEARCH_URL"      yaml:"url"`
	Username           string        `env:"ELASTICSEARCH_USERNAME" yaml:"username"`
	Password           string        `env:"ELASTICSEARCH_PASSWORD" yaml:"password"`
	APIKey             string        `env:"ELASTICSEARCH_API_KEY"  yaml:"api_key"`
	MaxRetries         int           `yaml:"max_retries"`
	Timeout            time.Duration `yaml:"timeout"`
	InsecureSkipVerify bool          `yaml:"insecure_skip_verify"`
	// RateLimit caps requests per second. Zero disables limiting.
	RateLimit  float64 `yaml:"rate_limit"`
	RateBurst  int     `yaml:"rate_burst"`
	SearchType string  `yaml:"search_type"`
}

// SchemaConfig tunes the generated index body.
type SchemaConfig struct {
	IndexPrefix          string `env:"PLACE_SCHEMA_INDEX_PREFIX" yaml:"index_prefix"`
	Shards               int    `yaml:"shards"`
	Replicas             int    `yaml:"replicas"`
	NGramMin             int    `yaml:"ngram_min"`
	NGramMax             int    `yaml:"ngram_max"`
	PositionIncrementGap int    `yaml:"position_increment_gap"`
	// SynonymsFile adds Solr-format rules on top of the country code table.
	SynonymsFile string `env:"PLACE_SCHEMA_SYNONYMS_FILE" yaml:"synonyms_file"`
}

// VerifyConfig controls the contract verifier.
type VerifyConfig struct {
	Repeat          int           `env:"VERIFY_REPEAT" yaml:"repeat"`
	ScenarioTimeout time.Duration `yaml:"scenario_timeout"`
	SettleDelay     time.Duration `yaml:"settle_delay"`
	// KeepIndexes skips cleanup so failed scenarios can be inspected.
	KeepIndexes bool `env:"VERIFY_KEEP_INDEXES" yaml:"keep_indexes"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `env:"LOG_LEVEL"  yaml:"level"`
	Format string `env:"LOG_FORMAT" yaml:"format"`
}

// Load reads the YAML file at path and applies env overrides and defaults.
func Load(path string) (*Config, error) {
	return infraconfig.LoadWithDefaults[Config](path, setDefaults)
}

// Default returns a configuration built from defaults alone.
func Default() *Config {
	cfg := &Config{}
	setDefaults(cfg)
	return cfg
}

func setDefaults(cfg *Config) {
	s := &cfg.Service
	if s.Name == "" {
		s.Name = defaultServiceName
	}
	if s.Version == "" {
		s.Version = defaultServiceVersion
	}
	if s.Port == 0 {
		s.Port = defaultServicePort
	}

	e := &cfg.Elasticsearch
	if e.URL == "" {
		e.URL = defaultESURL
	}
	if e.MaxRetries == 0 {
		e.MaxRetries = defaultESMaxRetries
	}
	if e.Timeout == 0 {
		e.Timeout = defaultESTimeout
	}
	if e.SearchType == "" {
		e.SearchType = defaultSearchType
	}
	if e.RateLimit > 0 && e.RateBurst == 0 {
		e.RateBurst = 1
	}

	sc := &cfg.Schema
	if sc.IndexPrefix == "" {
		sc.IndexPrefix = defaultIndexPrefix
	}
	if sc.Shards == 0 {
		sc.Shards = defaultShards
	}
	// replicas stay 0: verification indexes are throwaway
	if sc.NGramMin == 0 {
		sc.NGramMin = defaultNGramMin
	}
	if sc.NGramMax == 0 {
		sc.NGramMax = defaultNGramMax
	}
	if sc.PositionIncrementGap == 0 {
		sc.PositionIncrementGap = defaultPositionGap
	}

	v := &cfg.Verify
	if v.Repeat == 0 {
		v.Repeat = defaultVerifyRepeat
	}
	if v.ScenarioTimeout == 0 {
		v.ScenarioTimeout = defaultScenarioTime
	}

	l := &cfg.Logging
	if l.Level == "" {
		l.Level = defaultLogLevel
	}
	if l.Format == "" {
		l.Format = defaultLogFormat
	}
}

// Validate reports the first invalid field.
func (c *Config) Validate() error {
	if err := infraconfig.ValidatePort("service.port", c.Service.Port); err != nil {
		return err
	}
	if c.Service.PprofPort != 0 {
		if err := infraconfig.ValidatePort("service.pprof_port", c.Service.PprofPort); err != nil {
			return err
		}
	}
	if err := infraconfig.ValidateURL("elasticsearch.url", c.Elasticsearch.URL); err != nil {
		return err
	}
	switch c.Elasticsearch.SearchType {
	case "query_then_fetch", "dfs_query_then_fetch":
	default:
		return &infraconfig.ValidationError{
			Field:   "elasticsearch.search_type",
			Message: "must be query_then_fetch or dfs_query_then_fetch",
		}
	}
	if c.Elasticsearch.RateLimit < 0 {
		return &infraconfig.ValidationError{Field: "elasticsearch.rate_limit", Message: "must not be negative"}
	}
	if err := infraconfig.ValidateRequired("schema.index_prefix", c.Schema.IndexPrefix); err != nil {
		return err
	}
	if c.Schema.Shards < 1 {
		return &infraconfig.ValidationError{Field: "schema.shards", Message: "must be at least 1"}
	}
	if c.Schema.Replicas < 0 {
		return &infraconfig.ValidationError{Field: "schema.replicas", Message: "must not be negative"}
	}
	if c.Schema.NGramMin < 1 || c.Schema.NGramMax < c.Schema.NGramMin {
		return &infraconfig.ValidationError{
			Field:   "schema.ngram_min",
			Message: fmt.Sprintf("invalid ngram range %d..%d", c.Schema.NGramMin, c.Schema.NGramMax),
		}
	}
	if c.Verify.Repeat < 1 {
		return &infraconfig.ValidationError{Field: "verify.repeat", Message: "must be at least 1"}
	}
	if c.Verify.SettleDelay < 0 {
		return &infraconfig.ValidationError{Field: "verify.settle_delay", Message: "must not be negative"}
	}
	if err := infraconfig.ValidateLogLevel("logging.level", c.Logging.Level); err != nil {
		return err
	}
	return infraconfig.ValidateLogFormat("logging.format", c.Logging.Format)
}
