package cmd

import (
	"fmt"
	"net/http"
	"time"

	"github.com/bnema/ngmetro/internal/adapters/auth"
	"github.com/bnema/ngmetro/internal/adapters/credentials/chain"
	"github.com/bnema/ngmetro/internal/adapters/credentials/env"
	"github.com/bnema/ngmetro/internal/adapters/credentials/pass"
	"github.com/bnema/ngmetro/internal/adapters/opower"
	usagerender "github.com/bnema/ngmetro/internal/adapters/render/usage"
	"github.com/bnema/ngmetro/internal/adapters/tokencache"
	"github.com/bnema/ngmetro/internal/application"
	"github.com/bnema/ngmetro/internal/config"
	"github.com/bnema/ngmetro/internal/domain"
	"github.com/bnema/ngmetro/internal/logging"
	"github.com/bnema/ngmetro/internal/metrics"
	"github.com/bnema/ngmetro/internal/ports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const serveCommandName = "serve"

type rootOptions struct {
	configFile string
	logLevel   string
}

type app struct {
	opts rootOptions

	cfg            config.Config
	logger         zerolog.Logger
	service        *application.Service
	store          *tokencache.Store
	metrics        *metrics.Collector
	metricsHandler http.Handler
	usageRenderer  func(domain.UsageReport, usagerender.RenderOptions) (string, error)
	now            func() time.Time
}

// wire builds the application graph once the flags are parsed.
func (a *app) wire(cmd *cobra.Command) error {
	cfg, err := config.Load(viper.New(), a.opts.configFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if a.opts.logLevel != "" {
		cfg.LogLevel = a.opts.logLevel
	}

	interactive := cmd.Name() != serveCommandName
	level := cfg.LogLevel
	if level == "" {
		level = "info"
		if interactive {
			level = "warn"
		}
	}
	logger := logging.New(cmd.ErrOrStderr(), level, logging.Format(cfg.LogFormat, interactive))

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	store := tokencache.NewStore(cfg.CachePath, auth.Validator{}, logger)

	authenticator := auth.NewBrowserAuthenticator(auth.BrowserConfig{
		AuthBaseURL: cfg.AuthBaseURL,
		AccountHost: cfg.AuthAccountHost,
		ExecPath:    cfg.ChromePath,
		Timeout:     cfg.AuthTimeout,
		Headful:     cfg.Headful,
	}, logger.With().Str("component", "browser").Logger())

	client := opower.Client{
		BaseURL:        cfg.OpowerBaseURL,
		RequestTimeout: cfg.HTTPTimeout,
		Location:       loc,
		Logger:         logger.With().Str("component", "opower").Logger(),
	}

	registry := prometheus.NewRegistry()
	collector := metrics.NewWithRegistry(registry)

	pipeline := application.NewPipeline(application.PipelineDeps{
		Store:         store,
		Authenticator: authenticator,
		Resolver:      client,
		Usage:         client,
		Clock:         ports.SystemClock{},
		Location:      loc,
		Recorder:      collector,
		Logger:        logger,
	})

	a.cfg = cfg
	a.logger = logger
	a.store = store
	a.service = application.NewService(pipeline, credentialSource(cfg), store)
	a.metrics = collector
	a.metricsHandler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})
	a.usageRenderer = usagerender.Render
	a.now = time.Now

	return nil
}

// credentialSource prefers a pass entry when one is configured and fills
// anything it lacks from config and environment values.
func credentialSource(cfg config.Config) ports.CredentialSource {
	values := env.NewSource(cfg.Username, cfg.Password)
	if cfg.PassEntry == "" {
		return values
	}

	return chain.NewSource(pass.NewSource(cfg.PassEntry, cfg.Username), values)
}
