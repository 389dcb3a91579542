// Package metrics provides Prometheus metrics for pipeline runs and the
// HTTP API.
package metrics

import (
	"time"

	"github.com/bnema/ngmetro/internal/domain"
	"github.com/bnema/ngmetro/internal/ports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "ngmetro"

const (
	outcomeSuccess = "success"
	outcomeFailure = "failure"
)

// Collector holds all Prometheus metrics for ngmetro.
type Collector struct {
	// Pipeline metrics
	RunsTotal         *prometheus.CounterVec
	RunDuration       prometheus.Histogram
	StageTotal        *prometheus.CounterVec
	StageDuration     *prometheus.HistogramVec
	CacheLoads        *prometheus.CounterVec
	Reauthentications prometheus.Counter

	// HTTP metrics
	RequestsTotal    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	RequestsInFlight prometheus.Gauge
}

var _ ports.RunRecorder = (*Collector)(nil)

// New creates a collector registered with the default registry.
func New() *Collector {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates a collector registered with reg. Tests pass a fresh
// registry to avoid global state.
func NewWithRegistry(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)

	return &Collector{
		RunsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "pipeline_runs_total",
				Help:      "Total number of usage pipeline runs by outcome",
			},
			[]string{"outcome", "stage"},
		),
		RunDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "pipeline_run_duration_seconds",
				Help:      "Usage pipeline run duration in seconds",
				Buckets:   []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120},
			},
		),
		StageTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "pipeline_stage_total",
				Help:      "Total number of pipeline stage executions by outcome",
			},
			[]string{"stage", "outcome"},
		),
		StageDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "pipeline_stage_duration_seconds",
				Help:      "Pipeline stage duration in seconds",
				Buckets:   []float64{.001, .01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"stage"},
		),
		CacheLoads: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "token_cache_loads_total",
				Help:      "Total number of token cache loads by status",
			},
			[]string{"status"},
		),
		Reauthentications: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "reauthentications_total",
				Help:      "Total number of logins forced by a rejected cached token",
			},
		),
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests processed",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{.001, .005, .01, .05, .1, .5, 1, 5, 10, 30, 60, 120},
			},
			[]string{"method", "path"},
		),
		RequestsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "http_requests_in_flight",
				Help:      "Number of HTTP requests currently being processed",
			},
		),
	}
}

func (c *Collector) CacheLoaded(status domain.CacheStatus) {
	c.CacheLoads.WithLabelValues(status.String()).Inc()
}

func (c *Collector) StageCompleted(stage domain.Stage, elapsed time.Duration, err error) {
	c.StageTotal.WithLabelValues(string(stage), outcome(err)).Inc()
	c.StageDuration.WithLabelValues(string(stage)).Observe(elapsed.Seconds())
}

func (c *Collector) Reauthenticated() {
	c.Reauthentications.Inc()
}

func (c *Collector) RunCompleted(elapsed time.Duration, err error) {
	c.RunsTotal.WithLabelValues(outcome(err), failedStage(err)).Inc()
	c.RunDuration.Observe(elapsed.Seconds())
}

func outcome(err error) string {
	if err != nil {
		return outcomeFailure
	}
	return outcomeSuccess
}

func failedStage(err error) string {
	if err == nil {
		return ""
	}
	if stage := domain.StageOf(err); stage != "" {
		return string(stage)
	}
	return "unknown"
}
