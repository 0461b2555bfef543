package app

import (
	"context"
	"fmt"

	"github.com/vk/sosgridgo/internal/config"
	"github.com/vk/sosgridgo/internal/ctxlog"
	"github.com/vk/sosgridgo/internal/registry"
)

// load reads the configuration into the format-agnostic model and builds a
// registry whose handlers match the loaded sector models.
func load(ctx context.Context, appConfig *Config, loader config.Loader, modules []registry.Module) (*config.Model, config.Converter, *registry.Registry, error) {
	logger := ctxlog.FromContext(ctx)

	cfgModel, converter, err := loader.Load(ctx, appConfig.ConfigPaths...)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	logger.Debug("Configuration loaded and translated into unified model.",
		"sector_models", len(cfgModel.SectorModels),
		"sos_models", len(cfgModel.SosModels),
		"model_runs", len(cfgModel.ModelRuns))

	reg := registry.New()
	if len(modules) == 0 {
		modules = coreModules
	}
	for _, mod := range modules {
		mod.Register(reg)
	}
	logger.Debug("All Go modules registered.", "count", len(modules))

	reg.PopulateDefinitionsFromModel(cfgModel)
	logger.Debug("Registry definitions populated from config model.")

	if err := reg.ValidateRegistry(ctx); err != nil {
		panic(err)
	}
	logger.Debug("Registry validation passed.")

	return cfgModel, converter, reg, nil
}
