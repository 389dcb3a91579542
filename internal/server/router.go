package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bnema/ngmetro/internal/application"
	"github.com/bnema/ngmetro/internal/domain"
	"github.com/bnema/ngmetro/internal/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

const (
	ServiceName = "National Grid NYC Metro Usage API"

	defaultRunTimeout = 5 * time.Minute
	usageFlightKey    = "usage"
)

// UsageRunner produces one usage report per call.
type UsageRunner interface {
	Usage(ctx context.Context) (domain.UsageReport, error)
}

type RouterConfig struct {
	Metrics        *metrics.Collector
	MetricsHandler http.Handler // defaults to promhttp.Handler() when Metrics is set
	RunTimeout     time.Duration
	// RequiredEnv is listed on the info page.
	RequiredEnv []string
}

type Handler struct {
	runner      UsageRunner
	logger      zerolog.Logger
	runTimeout  time.Duration
	requiredEnv []string
	flights     singleflight.Group
}

func NewHandler(runner UsageRunner, logger zerolog.Logger, cfg RouterConfig) *Handler {
	runTimeout := cfg.RunTimeout
	if runTimeout <= 0 {
		runTimeout = defaultRunTimeout
	}

	return &Handler{
		runner:      runner,
		logger:      logger,
		runTimeout:  runTimeout,
		requiredEnv: cfg.RequiredEnv,
	}
}

// NewRouter creates the HTTP router serving the info page, health check,
// usage report and metrics.
func NewRouter(runner UsageRunner, logger zerolog.Logger, cfg RouterConfig) chi.Router {
	h := NewHandler(runner, logger, cfg)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(NewLoggingMiddleware(logger))
	r.Use(middleware.Recoverer)

	if cfg.Metrics != nil {
		r.Use(NewMetricsMiddleware(cfg.Metrics))
	}

	r.Get("/", h.Info)
	r.Get("/health", h.Health)
	r.Get("/usage", h.Usage)

	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	} else if cfg.Metrics != nil {
		r.Handle("/metrics", promhttp.Handler())
	}

	return r
}

type infoResponse struct {
	Service     string            `json:"service"`
	Endpoints   map[string]string `json:"endpoints"`
	RequiredEnv []string          `json:"environment_variables_required"`
}

func (h *Handler) Info(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, infoResponse{
		Service: ServiceName,
		Endpoints: map[string]string{
			"/":        "This information page",
			"/health":  "Health check",
			"/usage":   "Get usage and cost data",
			"/metrics": "Prometheus metrics",
		},
		RequiredEnv: h.requiredEnv,
	})
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": ServiceName,
	})
}

// Usage runs the pipeline and writes its result envelope. Concurrent
// requests share a single run; the run is detached from any one client so a
// disconnect does not abort the login the others are waiting on.
func (h *Handler) Usage(w http.ResponseWriter, r *http.Request) {
	value, _, shared := h.flights.Do(usageFlightKey, func() (any, error) {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), h.runTimeout)
		defer cancel()

		report, err := h.runner.Usage(ctx)
		return application.NewResult(report, err), nil
	})

	result := value.(application.Result)
	if shared {
		h.logger.Debug().Str("request_id", middleware.GetReqID(r.Context())).Msg("joined in-flight usage run")
	}

	status := http.StatusOK
	if !result.Success {
		status = http.StatusBadGateway
	}

	writeJSON(w, status, result)
}
