package elasticsearch

import (
	"time"

	"github.com/jonesrussell/north-cloud/place-schema/infrastructure/retry"
)

const (
	defaultURL         = "http://localhost:9200"
	defaultMaxRetries  = 3
	defaultPingTimeout = 5 * time.Second
)

// Config describes how to reach a cluster.
type Config struct {
	URL string

	// Credentials. APIKey wins over Username/Password when both are set.
	Username string
	Password string
	APIKey   string

	TLS *TLSConfig

	// MaxRetries is handed to the transport for per-request retries on
	// connection errors.
	MaxRetries int

	// RequestTimeout bounds a single HTTP round trip. Zero leaves it to ctx.
	RequestTimeout time.Duration

	PingTimeout time.Duration

	// Connect controls the backoff used while the cluster is not reachable yet.
	Connect *retry.Config
}

// TLSConfig enables https with optional client certificates.
type TLSConfig struct {
	Enabled            bool
	InsecureSkipVerify bool
	CertFile           string
	KeyFile            string
	CAFile             string
}

// SetDefaults fills unset fields.
func (c *Config) SetDefaults() {
	if c.URL == "" {
		c.URL = defaultURL
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = defaultMaxRetries
	}
	if c.PingTimeout == 0 {
		c.PingTimeout = defaultPingTimeout
	}
	if c.Connect == nil {
		c.Connect = &retry.Config{
			MaxAttempts:  5,
			InitialDelay: 2 * time.Second,
			MaxDelay:     10 * time.Second,
			Multiplier:   2.0,
		}
	}
}
