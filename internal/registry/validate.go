package registry

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/vk/sosgridgo/internal/config"
	"github.com/vk/sosgridgo/internal/ctxlog"
)

// ValidateRegistry performs a strict parity check between sector model
// definitions and Go handlers. A definition without a handler must compute
// every output from an expression.
func (r *Registry) ValidateRegistry(ctx context.Context) error {
	var errs []string
	logger := ctxlog.FromContext(ctx)

	names := make([]string, 0, len(r.DefinitionRegistry))
	for name := range r.DefinitionRegistry {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		def := r.DefinitionRegistry[name]
		if def.Handler == "" {
			for _, out := range def.Outputs {
				if out.Expression == nil {
					errs = append(errs, fmt.Sprintf("sector model '%s': output '%s' has no expression and the model names no handler", name, out.Name))
				}
			}
			continue
		}

		handler, ok := r.HandlerRegistry[def.Handler]
		if !ok {
			errs = append(errs, fmt.Sprintf("sector model '%s': handler '%s' is not registered", name, def.Handler))
			continue
		}

		inputs := make(map[string]struct{}, len(def.Inputs))
		for _, in := range def.Inputs {
			inputs[in.Name] = struct{}{}
		}
		outputs := make(map[string]*config.Output, len(def.Outputs))
		for _, out := range def.Outputs {
			outputs[out.Name] = out
		}
		params := make(map[string]struct{}, len(def.Parameters))
		for _, p := range def.Parameters {
			params[p.Name] = struct{}{}
		}

		for _, in := range handler.Inputs {
			if _, ok := inputs[in]; !ok {
				errs = append(errs, fmt.Sprintf("sector model '%s': handler '%s' reads input '%s' which is not declared", name, def.Handler, in))
			}
		}
		for _, out := range handler.Outputs {
			if _, ok := outputs[out]; !ok {
				errs = append(errs, fmt.Sprintf("sector model '%s': handler '%s' writes output '%s' which is not declared", name, def.Handler, out))
			}
		}
		for _, p := range handler.Parameters {
			if _, ok := params[p]; !ok {
				errs = append(errs, fmt.Sprintf("sector model '%s': handler '%s' reads parameter '%s' which is not declared", name, def.Handler, p))
			}
		}

		produced := make(map[string]struct{}, len(handler.Outputs))
		for _, out := range handler.Outputs {
			produced[out] = struct{}{}
		}
		for _, out := range def.Outputs {
			if _, ok := produced[out.Name]; ok {
				if out.Expression != nil {
					logger.Warn("Output has an expression but the handler also produces it; the expression wins.", "sector_model", name, "output", out.Name)
				}
				continue
			}
			if out.Expression == nil {
				errs = append(errs, fmt.Sprintf("sector model '%s': output '%s' is produced neither by handler '%s' nor by an expression", name, out.Name, def.Handler))
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("registry validation failed:\n- %s", strings.Join(errs, "\n- "))
	}

	return nil
}
