package bootstrap

import (
	"context"
	"fmt"
	"strings"

	infraes "github.com/jonesrussell/north-cloud/place-schema/infrastructure/elasticsearch"
	infralogger "github.com/jonesrussell/north-cloud/place-schema/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/place-schema/internal/config"
	"github.com/jonesrussell/north-cloud/place-schema/internal/elasticsearch"
	"github.com/jonesrussell/north-cloud/place-schema/internal/metrics"
)

// ElasticsearchConfig maps the elasticsearch section onto the connection
// settings of the infrastructure client.
func ElasticsearchConfig(cfg *config.Config) infraes.Config {
	e := cfg.Elasticsearch
	esCfg := infraes.Config{
		URL:            e.URL,
		Username:       e.Username,
		Password:       e.Password,
		APIKey:         e.APIKey,
		MaxRetries:     e.MaxRetries,
		RequestTimeout: e.Timeout,
	}
	if strings.HasPrefix(e.URL, "https://") || e.InsecureSkipVerify {
		esCfg.TLS = &infraes.TLSConfig{Enabled: true, InsecureSkipVerify: e.InsecureSkipVerify}
	}
	esCfg.SetDefaults()
	return esCfg
}

// SetupElasticsearch connects to the cluster, retrying until it answers a
// ping, and wraps the client in the rate limited, instrumented store.
func SetupElasticsearch(
	ctx context.Context,
	cfg *config.Config,
	m *metrics.Metrics,
	log infralogger.Logger,
) (*elasticsearch.Client, error) {
	esClient, err := infraes.NewClient(ctx, ElasticsearchConfig(cfg), log)
	if err != nil {
		return nil, fmt.Errorf("elasticsearch client: %w", err)
	}

	return elasticsearch.New(esClient, elasticsearch.Options{
		RateLimit:  cfg.Elasticsearch.RateLimit,
		RateBurst:  cfg.Elasticsearch.RateBurst,
		SearchType: cfg.Elasticsearch.SearchType,
		Metrics:    m,
		Logger:     log,
	}), nil
}
