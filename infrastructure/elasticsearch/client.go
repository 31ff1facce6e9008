// Package elasticsearch builds go-elasticsearch clients that are known to be
// connected before they are handed out.
package elasticsearch

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	es "github.com/elastic/go-elasticsearch/v8"

	"github.com/jonesrussell/north-cloud/place-schema/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/place-schema/infrastructure/retry"
)

// ErrPing is wrapped by every failed connection check.
var ErrPing = errors.New("elasticsearch ping failed")

// NewClient creates a client and pings the cluster, retrying with backoff
// until it answers or cfg.Connect is exhausted.
func NewClient(ctx context.Context, cfg Config, log logger.Logger) (*es.Client, error) {
	cfg.SetDefaults()
	if log == nil {
		log = logger.NewNop()
	}

	address := normalizeURL(cfg.URL)
	transport, err := createTransport(cfg.TLS, cfg.RequestTimeout)
	if err != nil {
		return nil, err
	}

	esCfg := es.Config{
		Addresses:  []string{address},
		Transport:  transport,
		MaxRetries: cfg.MaxRetries,
	}
	switch {
	case cfg.APIKey != "":
		esCfg.APIKey = cfg.APIKey
	case cfg.Username != "" && cfg.Password != "":
		esCfg.Username = cfg.Username
		esCfg.Password = cfg.Password
	}

	client, err := es.NewClient(esCfg)
	if err != nil {
		return nil, fmt.Errorf("create elasticsearch client: %w", err)
	}

	log.Info("Connecting to Elasticsearch", logger.String("url", address))

	connectCfg := *cfg.Connect
	if connectCfg.IsRetryable == nil {
		// Every ping failure is worth another attempt while the cluster starts.
		connectCfg.IsRetryable = func(error) bool { return true }
	}
	if err = retry.Retry(ctx, connectCfg, func() error {
		return ping(ctx, client, cfg.PingTimeout, log)
	}); err != nil {
		return nil, fmt.Errorf("connect to elasticsearch at %s: %w", address, err)
	}

	log.Info("Elasticsearch connection established", logger.String("url", address))
	return client, nil
}

func normalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return defaultURL
	}
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		raw = "http://" + raw
	}
	return strings.TrimRight(raw, "/")
}

func createTransport(tlsCfg *TLSConfig, timeout time.Duration) (*http.Transport, error) {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		MaxIdleConnsPerHost:   10,
		ResponseHeaderTimeout: timeout,
	}
	if tlsCfg == nil || !tlsCfg.Enabled {
		return transport, nil
	}

	clientTLS := &tls.Config{
		MinVersion: tls.VersionTLS12,
		//nolint:gosec // opt-in for self-signed development clusters
		InsecureSkipVerify: tlsCfg.InsecureSkipVerify,
	}

	if tlsCfg.CertFile != "" && tlsCfg.KeyFile != "" {
		cert, err := tls.LoadX509KeyPair(tlsCfg.CertFile, tlsCfg.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("load client certificate: %w", err)
		}
		clientTLS.Certificates = []tls.Certificate{cert}
	}

	if tlsCfg.CAFile != "" {
		pem, err := os.ReadFile(tlsCfg.CAFile)
		if err != nil {
			return nil, fmt.Errorf("read CA file: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("CA file %s holds no PEM certificates", tlsCfg.CAFile)
		}
		clientTLS.RootCAs = pool
	}

	transport.TLSClientConfig = clientTLS
	return transport, nil
}

func ping(ctx context.Context, client *es.Client, timeout time.Duration, log logger.Logger) error {
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	res, err := client.Ping(client.Ping.WithContext(pingCtx))
	if err != nil {
		log.Debug("Elasticsearch ping failed", logger.Error(err))
		return fmt.Errorf("%w: %w", ErrPing, err)
	}
	defer func() {
		_ = res.Body.Close()
	}()

	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		log.Debug("Elasticsearch ping returned error",
			logger.Int("status", res.StatusCode),
			logger.String("body", string(body)),
		)
		return fmt.Errorf("%w: status %d", ErrPing, res.StatusCode)
	}
	return nil
}
