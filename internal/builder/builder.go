package builder

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/vk/sosgridgo/internal/config"
	"github.com/vk/sosgridgo/internal/convert"
	"github.com/vk/sosgridgo/internal/ctxlog"
	"github.com/vk/sosgridgo/internal/registry"
	"github.com/vk/sosgridgo/internal/sos"
)

// Builder constructs resolutions, models and runs from one configuration.
type Builder struct {
	cfg       *config.Model
	reg       *registry.Registry
	converter config.Converter
	observer  sos.Observer

	once      sync.Once
	convertor *convert.Convertor
	convErr   error
}

// Option configures a Builder.
type Option func(*Builder)

// WithObserver attaches o to every composite the builder creates.
func WithObserver(o sos.Observer) Option {
	return func(b *Builder) { b.observer = o }
}

// New creates a builder. converter evaluates output expressions and may be
// nil when no sector model uses them.
func New(cfg *config.Model, reg *registry.Registry, converter config.Converter, opts ...Option) *Builder {
	b := &Builder{cfg: cfg, reg: reg, converter: converter}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Convertor returns the convertor over the configured resolutions, building
// the registers on first use.
func (b *Builder) Convertor(ctx context.Context) (*convert.Convertor, error) {
	b.once.Do(func() {
		b.convertor, b.convErr = buildConvertor(ctx, b.cfg)
	})
	return b.convertor, b.convErr
}

// RunNames returns the configured model run names in declaration order.
func (b *Builder) RunNames() []string {
	names := make([]string, 0, len(b.cfg.ModelRuns))
	for _, r := range b.cfg.ModelRuns {
		names = append(names, r.Name)
	}
	return names
}

// Validate builds every composite and every model run once and reports the
// first failure of each.
func (b *Builder) Validate(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)
	if _, err := b.Convertor(ctx); err != nil {
		return err
	}

	var errs []error
	for _, s := range b.cfg.SosModels {
		if _, err := b.BuildComposite(ctx, s.Name); err != nil {
			errs = append(errs, err)
		}
	}
	for _, r := range b.cfg.ModelRuns {
		if _, err := b.BuildRun(ctx, r.Name); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	logger.Debug("Configuration validated.", "sos_models", len(b.cfg.SosModels), "model_runs", len(b.cfg.ModelRuns))
	return nil
}

// BuildComposite builds a fresh instance of the named sos_model.
func (b *Builder) BuildComposite(ctx context.Context, name string) (*sos.SosModel, error) {
	conv, err := b.Convertor(ctx)
	if err != nil {
		return nil, err
	}
	st := newBuildState(conv)
	m, err := b.buildModel(ctx, st, name)
	if err != nil {
		return nil, err
	}
	composite, ok := m.(*sos.SosModel)
	if !ok {
		return nil, fmt.Errorf("%q is not a sos_model", name)
	}
	return composite, nil
}
