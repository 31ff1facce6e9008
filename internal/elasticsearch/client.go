// Package elasticsearch is the document store used by place-schema: index
// lifecycle, document writes, searches and analysis against one cluster.
package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	es "github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"golang.org/x/time/rate"

	"github.com/jonesrussell/north-cloud/place-schema/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/place-schema/internal/analysis"
	"github.com/jonesrussell/north-cloud/place-schema/internal/domain"
	"github.com/jonesrussell/north-cloud/place-schema/internal/metrics"
)

const (
	defaultSearchType = "dfs_query_then_fetch"
	healthStatus      = "yellow"
)

// Options configures a Client.
type Options struct {
	// RateLimit caps requests per second. Zero means unlimited.
	RateLimit float64
	RateBurst int
	// SearchType defaults to dfs_query_then_fetch so idf is computed across
	// shards.
	SearchType string
	Metrics    *metrics.Metrics
	Logger     logger.Logger
}

// Client wraps a go-elasticsearch client.
type Client struct {
	es         *es.Client
	limiter    *rate.Limiter
	metrics    *metrics.Metrics
	log        logger.Logger
	searchType string
}

// New wraps esClient.
func New(esClient *es.Client, opts Options) *Client {
	c := &Client{
		es:         esClient,
		metrics:    opts.Metrics,
		log:        opts.Logger,
		searchType: opts.SearchType,
	}
	if c.log == nil {
		c.log = logger.NewNop()
	}
	if c.searchType == "" {
		c.searchType = defaultSearchType
	}
	if opts.RateLimit > 0 {
		burst := max(opts.RateBurst, 1)
		c.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}
	return c
}

// ES returns the underlying client.
func (c *Client) ES() *es.Client {
	return c.es
}

// do runs one request: waits for the limiter, records metrics, and turns
// error responses into *ResponseError. On success the caller owns res.Body.
func (c *Client) do(ctx context.Context, operation string, call func() (*esapi.Response, error)) (*esapi.Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%s: rate limit: %w", operation, err)
		}
	}

	start := time.Now()
	res, err := call()
	elapsed := time.Since(start)

	if err != nil {
		c.metrics.ObserveStore(operation, elapsed, err)
		c.log.Debug("Elasticsearch request failed",
			logger.String("operation", operation),
			logger.Duration("duration", elapsed),
			logger.Error(err),
		)
		return nil, fmt.Errorf("%s: %w", operation, err)
	}

	if res.IsError() {
		defer res.Body.Close()
		rErr := decodeError(operation, res)
		c.metrics.ObserveStore(operation, elapsed, rErr)
		c.log.Debug("Elasticsearch returned error",
			logger.String("operation", operation),
			logger.Int("status", res.StatusCode),
			logger.Error(rErr),
		)
		return nil, rErr
	}

	c.metrics.ObserveStore(operation, elapsed, nil)
	c.log.Debug("Elasticsearch request",
		logger.String("operation", operation),
		logger.Int("status", res.StatusCode),
		logger.Duration("duration", elapsed),
	)
	return res, nil
}

func encode(v any) (*bytes.Reader, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal request body: %w", err)
	}
	return bytes.NewReader(data), nil
}

// Ping checks that the cluster answers.
func (c *Client) Ping(ctx context.Context) error {
	res, err := c.do(ctx, "ping", func() (*esapi.Response, error) {
		return c.es.Ping(c.es.Ping.WithContext(ctx))
	})
	if err != nil {
		return err
	}
	return res.Body.Close()
}

// CreateIndex creates name with body as settings and mappings. It returns an
// error matching ErrIndexExists when the index is already there.
func (c *Client) CreateIndex(ctx context.Context, name string, body map[string]any) error {
	reader, err := encode(body)
	if err != nil {
		return err
	}

	res, err := c.do(ctx, "create_index", func() (*esapi.Response, error) {
		return c.es.Indices.Create(name,
			c.es.Indices.Create.WithBody(reader),
			c.es.Indices.Create.WithContext(ctx),
		)
	})
	if err != nil {
		return err
	}
	defer res.Body.Close()

	c.log.Info("Index created", logger.String("index", name))
	return nil
}

// DeleteIndex removes name. It returns an error matching ErrIndexNotFound
// when there is nothing to delete.
func (c *Client) DeleteIndex(ctx context.Context, name string) error {
	res, err := c.do(ctx, "delete_index", func() (*esapi.Response, error) {
		return c.es.Indices.Delete([]string{name}, c.es.Indices.Delete.WithContext(ctx))
	})
	if err != nil {
		return err
	}
	defer res.Body.Close()

	c.log.Info("Index deleted", logger.String("index", name))
	return nil
}

// IndexExists reports whether name exists.
func (c *Client) IndexExists(ctx context.Context, name string) (bool, error) {
	res, err := c.do(ctx, "index_exists", func() (*esapi.Response, error) {
		return c.es.Indices.Exists([]string{name}, c.es.Indices.Exists.WithContext(ctx))
	})
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, err
	}
	defer res.Body.Close()
	return res.StatusCode == http.StatusOK, nil
}

// WaitForIndex blocks until the index's primaries are allocated (cluster
// health yellow) or timeout elapses.
func (c *Client) WaitForIndex(ctx context.Context, name string, timeout time.Duration) error {
	res, err := c.do(ctx, "wait_for_index", func() (*esapi.Response, error) {
		return c.es.Cluster.Health(
			c.es.Cluster.Health.WithIndex(name),
			c.es.Cluster.Health.WithWaitForStatus(healthStatus),
			c.es.Cluster.Health.WithTimeout(timeout),
			c.es.Cluster.Health.WithContext(ctx),
		)
	})
	if err != nil {
		return err
	}
	defer res.Body.Close()

	var health struct {
		Status   string `json:"status"`
		TimedOut bool   `json:"timed_out"`
	}
	if err = json.NewDecoder(res.Body).Decode(&health); err != nil {
		return fmt.Errorf("decode cluster health: %w", err)
	}
	if health.TimedOut {
		return fmt.Errorf("index %s not %s after %s (status %s)", name, healthStatus, timeout, health.Status)
	}
	return nil
}

// Refresh makes every acknowledged write to name visible to search.
func (c *Client) Refresh(ctx context.Context, name string) error {
	res, err := c.do(ctx, "refresh", func() (*esapi.Response, error) {
		return c.es.Indices.Refresh(
			c.es.Indices.Refresh.WithIndex(name),
			c.es.Indices.Refresh.WithContext(ctx),
		)
	})
	if err != nil {
		return err
	}
	return res.Body.Close()
}

// IndexDocument writes doc under doc.ID.
func (c *Client) IndexDocument(ctx context.Context, index string, doc domain.Document) error {
	reader, err := encode(doc)
	if err != nil {
		return err
	}

	res, err := c.do(ctx, "index_document", func() (*esapi.Response, error) {
		opts := []func(*esapi.IndexRequest){c.es.Index.WithContext(ctx)}
		if doc.ID != "" {
			opts = append(opts, c.es.Index.WithDocumentID(doc.ID))
		}
		return c.es.Index(index, reader, opts...)
	})
	if err != nil {
		return err
	}
	return res.Body.Close()
}

// Search runs body against index.
func (c *Client) Search(ctx context.Context, index string, body map[string]any) (*domain.SearchResponse, error) {
	reader, err := encode(body)
	if err != nil {
		return nil, err
	}

	res, err := c.do(ctx, "search", func() (*esapi.Response, error) {
		return c.es.Search(
			c.es.Search.WithIndex(index),
			c.es.Search.WithBody(reader),
			c.es.Search.WithSearchType(c.searchType),
			c.es.Search.WithTrackTotalHits(true),
			c.es.Search.WithContext(ctx),
		)
	})
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	var out domain.SearchResponse
	if err = json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	return &out, nil
}

// Analyze runs values through the index analyzer of field (a full path such
// as "parent.country_a.ngram") on index.
func (c *Client) Analyze(ctx context.Context, index, field string, values []string) ([]analysis.Token, error) {
	reader, err := encode(map[string]any{
		"field": field,
		"text":  values,
	})
	if err != nil {
		return nil, err
	}

	res, err := c.do(ctx, "analyze", func() (*esapi.Response, error) {
		return c.es.Indices.Analyze(
			c.es.Indices.Analyze.WithIndex(index),
			c.es.Indices.Analyze.WithBody(reader),
			c.es.Indices.Analyze.WithContext(ctx),
		)
	})
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	var out struct {
		Tokens []struct {
			Token    string `json:"token"`
			Position int    `json:"position"`
		} `json:"tokens"`
	}
	if err = json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode analyze response: %w", err)
	}

	tokens := make([]analysis.Token, len(out.Tokens))
	for i, t := range out.Tokens {
		tokens[i] = analysis.Token{Term: t.Token, Position: t.Position}
	}
	return tokens, nil
}

// MappingVersion returns the mapping_version stored in the index _meta, or
// "" when the index has none.
func (c *Client) MappingVersion(ctx context.Context, index string) (string, error) {
	res, err := c.do(ctx, "get_mapping", func() (*esapi.Response, error) {
		return c.es.Indices.GetMapping(
			c.es.Indices.GetMapping.WithIndex(index),
			c.es.Indices.GetMapping.WithContext(ctx),
		)
	})
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	var out map[string]struct {
		Mappings struct {
			Meta struct {
				MappingVersion string `json:"mapping_version"`
			} `json:"_meta"`
		} `json:"mappings"`
	}
	if err = json.NewDecoder(res.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode mapping: %w", err)
	}
	for _, m := range out {
		return m.Mappings.Meta.MappingVersion, nil
	}
	return "", nil
}

func isNotFound(err error) bool {
	var rErr *ResponseError
	return errors.As(err, &rErr) && rErr.Status == http.StatusNotFound
}
