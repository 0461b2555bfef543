package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/vk/sosgridgo/internal/builder"
	"github.com/vk/sosgridgo/internal/config"
	"github.com/vk/sosgridgo/internal/ctxlog"
	"github.com/vk/sosgridgo/internal/observability"
	"github.com/vk/sosgridgo/internal/registry"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW      io.Writer
	logger    *slog.Logger
	config    *Config
	registry  *registry.Registry
	model     *config.Model
	converter config.Converter
	builder   *builder.Builder
	metrics   *observability.Collector

	httpServer *http.Server
}

// NewApp is the constructor for the main application. It loads the
// configuration and registers the compiled-in modules (or the given ones).
//
// A mismatch between the registered Go handlers and the sector models that
// name them is a programmer error and panics.
func NewApp(outW io.Writer, appConfig *Config, loader config.Loader, modules ...registry.Module) (*App, error) {
	logger := newLogger(appConfig.LogLevel, appConfig.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	cfgModel, converter, reg, err := load(ctx, appConfig, loader, modules)
	if err != nil {
		return nil, err
	}

	// Each app gets its own registry so that instances stay isolated.
	metrics, err := observability.NewCollector(prometheus.NewRegistry())
	if err != nil {
		return nil, err
	}

	return &App{
		outW:      outW,
		logger:    logger,
		config:    appConfig,
		registry:  reg,
		model:     cfgModel,
		converter: converter,
		builder:   builder.New(cfgModel, reg, converter, builder.WithObserver(metrics)),
		metrics:   metrics,
	}, nil
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Builder returns the builder over the loaded configuration.
func (a *App) Builder() *builder.Builder {
	return a.builder
}

// Metrics returns the collector fed by every composite the app runs.
func (a *App) Metrics() *observability.Collector {
	return a.metrics
}

// Validate builds every composite and model run without executing them.
func (a *App) Validate(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	if err := a.builder.Validate(ctx); err != nil {
		return err
	}
	a.logger.Info("✅ Configuration is valid.", "model_runs", len(a.model.ModelRuns), "sos_models", len(a.model.SosModels))
	return nil
}
