// Package metrics exposes place-schema's Prometheus collectors.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "place_schema"

const (
	outcomeSuccess = "success"
	outcomeError   = "error"
	outcomePass    = "pass"
	outcomeFail    = "fail"
)

// Metrics holds every collector on a private registry. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	StoreRequests *prometheus.CounterVec
	StoreDuration *prometheus.HistogramVec

	ContractChecks    *prometheus.CounterVec
	ContractScenarios *prometheus.CounterVec
	ScenarioDuration  *prometheus.HistogramVec

	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
}

// New registers all collectors, plus Go runtime and process collectors, on a
// fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return NewWithRegistry(reg)
}

// NewWithRegistry registers the place-schema collectors on reg.
func NewWithRegistry(reg *prometheus.Registry) *Metrics {
	factory := promauto.With(reg)
	m := &Metrics{registry: reg}

	m.StoreRequests = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "store",
		Name:      "requests_total",
		Help:      "Elasticsearch requests by operation and outcome",
	}, []string{"operation", "outcome"})

	m.StoreDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "store",
		Name:      "request_duration_seconds",
		Help:      "Elasticsearch request latency",
		Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14),
	}, []string{"operation"})

	m.ContractChecks = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "contract",
		Name:      "checks_total",
		Help:      "Contract checks by scenario and result",
	}, []string{"scenario", "result"})

	m.ContractScenarios = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "contract",
		Name:      "scenarios_total",
		Help:      "Contract scenarios by name and result",
	}, []string{"scenario", "result"})

	m.ScenarioDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "contract",
		Name:      "scenario_duration_seconds",
		Help:      "Wall time of a contract scenario including index setup and teardown",
		Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
	}, []string{"scenario"})

	m.HTTPRequests = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by method, route and status",
	}, []string{"method", "route", "status"})

	m.HTTPDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	return m
}

// Registry returns the registry backing m.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveStore records one Elasticsearch request.
func (m *Metrics) ObserveStore(operation string, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	outcome := outcomeSuccess
	if err != nil {
		outcome = outcomeError
	}
	m.StoreRequests.WithLabelValues(operation, outcome).Inc()
	m.StoreDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// RecordCheck records one contract check result.
func (m *Metrics) RecordCheck(scenario string, passed bool) {
	if m == nil {
		return
	}
	m.ContractChecks.WithLabelValues(scenario, result(passed)).Inc()
}

// RecordScenario records a finished scenario.
func (m *Metrics) RecordScenario(scenario string, passed bool, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.ContractScenarios.WithLabelValues(scenario, result(passed)).Inc()
	m.ScenarioDuration.WithLabelValues(scenario).Observe(elapsed.Seconds())
}

// ObserveHTTP records one served HTTP request.
func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func result(passed bool) string {
	if passed {
		return outcomePass
	}
	return outcomeFail
}
