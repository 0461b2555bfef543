package app

import (
	"context"
	"fmt"
	"slices"

	"github.com/vk/sosgridgo/internal/builder"
	"github.com/vk/sosgridgo/internal/ctxlog"
	"github.com/vk/sosgridgo/internal/observability"
	"github.com/vk/sosgridgo/internal/publish"
	"github.com/vk/sosgridgo/internal/report"
	"golang.org/x/sync/errgroup"
)

// Run executes the selected model runs. Independent runs execute in
// parallel, bounded by Config.Workers; the first failure cancels the rest.
func (a *App) Run(ctx context.Context) (err error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	shutdown, err := observability.InitTracing(ctx, a.config.Tracing)
	if err != nil {
		return fmt.Errorf("failed to initialise tracing: %w", err)
	}
	defer observability.ShutdownWithTimeout(ctx, shutdown)

	a.startHealthcheckServer()
	defer func() {
		if cerr := a.closeHealthcheckServer(ctx); cerr != nil && err == nil {
			err = cerr
		}
	}()

	names, err := a.selectRuns()
	if err != nil {
		return err
	}
	if len(names) == 0 {
		a.logger.Warn("No model runs configured, nothing to execute.")
		return nil
	}

	publisher, err := a.newPublisher(ctx)
	if err != nil {
		return err
	}
	defer publisher.Close()

	a.logger.Info("🚀 Starting model runs...", "runs", names, "workers", a.config.Workers)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.config.Workers)
	for _, name := range names {
		g.Go(func() error {
			return a.execute(gctx, name, publisher)
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("execution failed: %w", err)
	}
	a.logger.Info("🏁 Execution finished.", "runs", len(names))
	return nil
}

// selectRuns returns the configured run names, or the requested subset in
// declaration order.
func (a *App) selectRuns() ([]string, error) {
	all := a.builder.RunNames()
	if len(a.config.Runs) == 0 {
		return all, nil
	}
	for _, want := range a.config.Runs {
		if !slices.Contains(all, want) {
			return nil, fmt.Errorf("%w: model_run %q", builder.ErrUnknownName, want)
		}
	}
	selected := make([]string, 0, len(a.config.Runs))
	for _, name := range all {
		if slices.Contains(a.config.Runs, name) {
			selected = append(selected, name)
		}
	}
	return selected, nil
}

func (a *App) newPublisher(ctx context.Context) (publish.Publisher, error) {
	if a.config.PublishURL == "" {
		return publish.Noop{}, nil
	}
	var (
		p   publish.Publisher
		err error
	)
	if a.config.PublishTransport == PublishHTTP {
		p, err = publish.NewHTTP(publish.HTTPConfig{URL: a.config.PublishURL})
	} else {
		p, err = publish.DialSocketIO(ctx, publish.SocketIOConfig{
			URL:   a.config.PublishURL,
			Event: a.config.PublishEvent,
		})
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect result publisher: %w", err)
	}
	return p, nil
}

func (a *App) execute(ctx context.Context, name string, publisher publish.Publisher) error {
	run, err := a.builder.BuildRun(ctx, name)
	if err != nil {
		return err
	}
	if err := run.Execute(ctx, publisher.Publish); err != nil {
		return err
	}

	if a.config.ReportDir == "" {
		return nil
	}
	r, err := report.Build(ctx, run.Name, run.Composite.Store())
	if err != nil {
		return fmt.Errorf("model run %q: %w", name, err)
	}
	path, err := report.WriteFile(a.config.ReportDir, r)
	if err != nil {
		return fmt.Errorf("model run %q: %w", name, err)
	}
	ctxlog.FromContext(ctx).Info("📄 Report written.", "model_run", name, "path", path)
	return nil
}
