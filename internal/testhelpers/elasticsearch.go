//go:build integration

// Package testhelpers starts the Elasticsearch cluster used by integration
// tests.
package testhelpers

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	tcelasticsearch "github.com/testcontainers/testcontainers-go/modules/elasticsearch"

	infraes "github.com/jonesrussell/north-cloud/place-schema/infrastructure/elasticsearch"
	"github.com/jonesrussell/north-cloud/place-schema/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/place-schema/infrastructure/retry"
	"github.com/jonesrussell/north-cloud/place-schema/internal/elasticsearch"
)

const (
	// URLEnv points the tests at an existing cluster instead of a container.
	URLEnv = "ES_URL"

	image          = "docker.elastic.co/elasticsearch/elasticsearch:8.19.3"
	startupTimeout = 3 * time.Minute
)

// Elasticsearch returns a store connected to $ES_URL or, when unset, to a
// throwaway container that is terminated with the test.
func Elasticsearch(t *testing.T) *elasticsearch.Client {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	cfg := infraes.Config{
		URL:     os.Getenv(URLEnv),
		Connect: &retry.Config{MaxAttempts: 10, InitialDelay: time.Second, MaxDelay: 5 * time.Second},
	}
	if cfg.URL == "" {
		container, err := tcelasticsearch.Run(ctx, image, tcelasticsearch.WithPassword("changeme"))
		testcontainers.CleanupContainer(t, container)
		if err != nil {
			t.Fatalf("start elasticsearch container: %v", err)
		}

		cfg.URL = container.Settings.Address
		cfg.Username = container.Settings.Username
		cfg.Password = container.Settings.Password
		if len(container.Settings.CACert) > 0 {
			caFile := filepath.Join(t.TempDir(), "ca.crt")
			if err = os.WriteFile(caFile, container.Settings.CACert, 0o600); err != nil {
				t.Fatalf("write ca certificate: %v", err)
			}
			cfg.TLS = &infraes.TLSConfig{Enabled: true, CAFile: caFile}
		}
	}
	cfg.SetDefaults()

	esClient, err := infraes.NewClient(ctx, cfg, logger.NewNop())
	if err != nil {
		t.Fatalf("connect to elasticsearch at %s: %v", cfg.URL, err)
	}
	return elasticsearch.New(esClient, elasticsearch.Options{})
}
