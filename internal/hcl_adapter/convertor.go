package hcl_adapter

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/sosgridgo/internal/config"
	"github.com/vk/sosgridgo/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
	"github.com/zclconf/go-cty/cty/gocty"
)

// Converter is the HCL-specific implementation of the config.Converter interface.
type Converter struct {
	functions map[string]function.Function
}

// NewConverter creates a new HCL converter with the numeric function library
// available to output expressions.
func NewConverter() *Converter {
	return &Converter{
		functions: map[string]function.Function{
			"abs":   stdlib.AbsoluteFunc,
			"ceil":  stdlib.CeilFunc,
			"floor": stdlib.FloorFunc,
			"log":   stdlib.LogFunc,
			"max":   stdlib.MaxFunc,
			"min":   stdlib.MinFunc,
			"pow":   stdlib.PowFunc,
		},
	}
}

var _ config.Converter = (*Converter)(nil)

// Validate checks that every variable expr refers to exists in scope.
func (c *Converter) Validate(ctx context.Context, expr hcl.Expression, scope config.Scope) error {
	for _, traversal := range expr.Variables() {
		root := traversal.RootName()
		switch root {
		case "timestep":
			continue
		case "input", "param":
		default:
			return fmt.Errorf("%s: unknown variable %q, expected input, param or timestep", traversal.SourceRange(), root)
		}

		if len(traversal) < 2 {
			return fmt.Errorf("%s: %q must be followed by a name", traversal.SourceRange(), root)
		}
		attr, ok := traversal[1].(hcl.TraverseAttr)
		if !ok {
			return fmt.Errorf("%s: %q must be followed by .name", traversal.SourceRange(), root)
		}
		values := scope.Inputs
		if root == "param" {
			values = scope.Params
		}
		if _, ok := values[attr.Name]; !ok {
			return fmt.Errorf("%s: %s.%s is not declared (known: %v)", traversal.SourceRange(), root, attr.Name, sortedKeys(values))
		}
	}
	return nil
}

// EvalNumber evaluates expr against scope and returns the numeric result.
func (c *Converter) EvalNumber(ctx context.Context, expr hcl.Expression, scope config.Scope) (float64, error) {
	evalCtx, err := c.evalContext(scope)
	if err != nil {
		return 0, err
	}

	val, diags := expr.Value(evalCtx)
	if diags.HasErrors() {
		return 0, diags
	}
	val, err = convert.Convert(val, cty.Number)
	if err != nil {
		return 0, fmt.Errorf("%s: expression must produce a number: %w", expr.Range(), err)
	}
	if val.IsNull() || !val.IsKnown() {
		return 0, fmt.Errorf("%s: expression produced no value", expr.Range())
	}

	var out float64
	if err := gocty.FromCtyValue(val, &out); err != nil {
		return 0, fmt.Errorf("%s: %w", expr.Range(), err)
	}
	if math.IsNaN(out) {
		return 0, fmt.Errorf("%s: expression produced NaN", expr.Range())
	}
	ctxlog.FromContext(ctx).Debug("Evaluated output expression.", "range", expr.Range().String(), "value", out)
	return out, nil
}

func (c *Converter) evalContext(scope config.Scope) (*hcl.EvalContext, error) {
	timestep, err := gocty.ToCtyValue(scope.Timestep, cty.Number)
	if err != nil {
		return nil, err
	}
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"input":    numberObject(scope.Inputs),
			"param":    numberObject(scope.Params),
			"timestep": timestep,
		},
		Functions: c.functions,
	}, nil
}

func numberObject(values map[string]float64) cty.Value {
	if len(values) == 0 {
		return cty.EmptyObjectVal
	}
	attrs := make(map[string]cty.Value, len(values))
	for name, v := range values {
		attrs[name] = cty.NumberFloatVal(v)
	}
	return cty.ObjectVal(attrs)
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
