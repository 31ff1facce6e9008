package api

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	infragin "github.com/jonesrussell/north-cloud/place-schema/infrastructure/gin"
	"github.com/jonesrussell/north-cloud/place-schema/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/place-schema/internal/metrics"
)

// ServerConfig holds server configuration.
type ServerConfig struct {
	Port           int
	Debug          bool
	ServiceName    string
	ServiceVersion string
	// WriteTimeout must cover a verification run.
	WriteTimeout time.Duration
}

// NewServer wires the API, /health and /metrics into an infrastructure
// gin server. ping backs the Elasticsearch health check.
func NewServer(
	handler *Handler,
	cfg ServerConfig,
	m *metrics.Metrics,
	ping func(ctx context.Context) error,
	log logger.Logger,
) *infragin.Server {
	serverCfg := &infragin.Config{
		Port:           cfg.Port,
		Debug:          cfg.Debug,
		ServiceName:    cfg.ServiceName,
		ServiceVersion: cfg.ServiceVersion,
		WriteTimeout:   cfg.WriteTimeout,
	}
	if m != nil {
		serverCfg.Observer = m
	}

	return infragin.NewServer(serverCfg, log, func(router *gin.Engine) {
		infragin.RegisterHealthRoutes(router, infragin.HealthOptions{
			ServiceName:    cfg.ServiceName,
			ServiceVersion: cfg.ServiceVersion,
			Checks: map[string]infragin.HealthChecker{
				"elasticsearch": infragin.ElasticsearchHealthChecker(ping),
			},
		})
		router.GET("/metrics", gin.WrapH(m.Handler()))
		SetupRoutes(router, handler)
	})
}
