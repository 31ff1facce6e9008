package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	infraconfig "github.com/jonesrussell/north-cloud/place-schema/infrastructure/config"
	"github.com/jonesrussell/north-cloud/place-schema/internal/config"
)

func isolateEnv(t *testing.T) {
	t.Helper()
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "none.env"))
}

func TestLoad_Defaults(t *testing.T) {
	isolateEnv(t)

	cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.yml"))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "place-schema", cfg.Service.Name)
	assert.Equal(t, 8095, cfg.Service.Port)
	assert.Equal(t, "http://localhost:9200", cfg.Elasticsearch.URL)
	assert.Equal(t, "dfs_query_then_fetch", cfg.Elasticsearch.SearchType)
	assert.Equal(t, 1, cfg.Schema.NGramMin)
	assert.Equal(t, 24, cfg.Schema.NGramMax)
	assert.Equal(t, 100, cfg.Schema.PositionIncrementGap)
	assert.Equal(t, 0, cfg.Schema.Replicas)
	assert.Equal(t, 2, cfg.Verify.Repeat)
	assert.Equal(t, time.Minute, cfg.Verify.ScenarioTimeout)
	assert.Zero(t, cfg.Verify.SettleDelay)
}

func TestLoad_FileAndEnv(t *testing.T) {
	isolateEnv(t)
	t.Setenv("ELASTICSEARCH_URL", "http://es.internal:9200")
	t.Setenv("VERIFY_REPEAT", "4")

	path := filepath.Join(t.TempDir(), "config.yml")
	body := `
elasticsearch:
  url: http://ignored:9200
  rate_limit: 20
schema:
  index_prefix: contract
  ngram_max: 10
verify:
  settle_delay: 250ms
logging:
  format: console
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "http://es.internal:9200", cfg.Elasticsearch.URL)
	assert.InDelta(t, 20.0, cfg.Elasticsearch.RateLimit, 0.001)
	assert.Equal(t, 1, cfg.Elasticsearch.RateBurst)
	assert.Equal(t, "contract", cfg.Schema.IndexPrefix)
	assert.Equal(t, 10, cfg.Schema.NGramMax)
	assert.Equal(t, 4, cfg.Verify.Repeat)
	assert.Equal(t, 250*time.Millisecond, cfg.Verify.SettleDelay)
	assert.Equal(t, "console", cfg.Logging.Format)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		field  string
	}{
		{"bad port", func(c *config.Config) { c.Service.Port = 70000 }, "service.port"},
		{"bad pprof port", func(c *config.Config) { c.Service.PprofPort = -1 }, "service.pprof_port"},
		{"bad url", func(c *config.Config) { c.Elasticsearch.URL = "es:9200" }, "elasticsearch.url"},
		{"bad search type", func(c *config.Config) { c.Elasticsearch.SearchType = "scan" }, "elasticsearch.search_type"},
		{"empty prefix", func(c *config.Config) { c.Schema.IndexPrefix = "" }, "schema.index_prefix"},
		{"inverted ngram", func(c *config.Config) { c.Schema.NGramMax = 0 }, "schema.ngram_min"},
		{"zero repeat", func(c *config.Config) { c.Verify.Repeat = 0 }, "verify.repeat"},
		{"negative settle", func(c *config.Config) { c.Verify.SettleDelay = -time.Second }, "verify.settle_delay"},
		{"bad level", func(c *config.Config) { c.Logging.Level = "chatty" }, "logging.level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			var vErr *infraconfig.ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("Validate() = %v, want *ValidationError", err)
			}
			if vErr.Field != tt.field {
				t.Errorf("field = %q, want %q", vErr.Field, tt.field)
			}
		})
	}
}
