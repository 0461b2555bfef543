package builder

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/sosgridgo/internal/array"
	"github.com/vk/sosgridgo/internal/config"
	"github.com/vk/sosgridgo/internal/model"
)

// exprOutput is a sector model output computed cell by cell.
type exprOutput struct {
	name      string
	expr      hcl.Expression
	regions   int
	intervals int
}

// expressionFunc wraps base (which may be nil) so that every expression
// output is evaluated after it. An expression replaces whatever base
// produced under the same name.
//
// Inputs are read at the cell being computed. A 1x1 input is broadcast to
// every cell; any other shape must cover the output.
func expressionFunc(conv config.Converter, base model.SimulateFunc, exprs []exprOutput) model.SimulateFunc {
	return func(ctx context.Context, req model.SimulateRequest) (array.Data, error) {
		out := make(array.Data, len(exprs))
		if base != nil {
			produced, err := base(ctx, req)
			if err != nil {
				return nil, err
			}
			for name, value := range produced {
				out[name] = value
			}
		}

		for _, e := range exprs {
			value := array.Zeros(e.regions, e.intervals)
			for r := 0; r < e.regions; r++ {
				for i := 0; i < e.intervals; i++ {
					inputs, err := cellInputs(req.Inputs, r, i)
					if err != nil {
						return nil, fmt.Errorf("output %q: %w", e.name, err)
					}
					v, err := conv.EvalNumber(ctx, e.expr, config.Scope{
						Timestep: req.Timestep,
						Inputs:   inputs,
						Params:   req.Parameters,
					})
					if err != nil {
						return nil, fmt.Errorf("output %q, cell (%d, %d): %w", e.name, r, i, err)
					}
					value[r][i] = v
				}
			}
			out[e.name] = value
		}
		return out, nil
	}
}

func cellInputs(data array.Data, r, i int) (map[string]float64, error) {
	cell := make(map[string]float64, len(data))
	for name, a := range data {
		rows, cols := a.Shape()
		switch {
		case rows == 1 && cols == 1:
			cell[name] = a[0][0]
		case r < rows && i < len(a[r]):
			cell[name] = a[r][i]
		default:
			return nil, fmt.Errorf("input %q has shape %dx%d and does not cover cell (%d, %d)", name, rows, cols, r, i)
		}
	}
	return cell, nil
}
