package builder

import (
	"context"
	"fmt"

	"github.com/vk/sosgridgo/internal/config"
	"github.com/vk/sosgridgo/internal/convert"
	"github.com/vk/sosgridgo/internal/ctxlog"
	"github.com/vk/sosgridgo/internal/resolution"
)

// buildConvertor registers every configured region and interval set.
func buildConvertor(ctx context.Context, cfg *config.Model) (*convert.Convertor, error) {
	logger := ctxlog.FromContext(ctx)

	baseYear := cfg.BaseYear
	if baseYear == 0 {
		baseYear = resolution.DefaultBaseYear
	}

	intervals := resolution.NewIntervalRegister(baseYear)
	for _, is := range cfg.IntervalSets {
		defs := make([]resolution.IntervalDef, 0, len(is.Intervals))
		for _, iv := range is.Intervals {
			defs = append(defs, resolution.IntervalDef{Name: iv.Name, Start: iv.Start, End: iv.End})
		}
		if err := intervals.AddIntervalSet(is.Name, defs...); err != nil {
			return nil, fmt.Errorf("interval_set %q: %w", is.Name, err)
		}
	}

	regions := resolution.NewRegionRegister()
	for _, rs := range cfg.RegionSets {
		members := make([]resolution.Region, 0, len(rs.Regions))
		for _, r := range rs.Regions {
			shape, err := polygon(r.Shape)
			if err != nil {
				return nil, fmt.Errorf("region_set %q, region %q: %w", rs.Name, r.Name, err)
			}
			members = append(members, resolution.Region{Name: r.Name, Shape: shape})
		}
		set, err := resolution.NewRegionSet(rs.Name, members...)
		if err != nil {
			return nil, err
		}
		if err := regions.Register(set); err != nil {
			return nil, err
		}
	}

	logger.Debug("Resolutions registered.", "base_year", baseYear, "region_sets", len(cfg.RegionSets), "interval_sets", len(cfg.IntervalSets))
	return convert.New(regions, intervals), nil
}

func polygon(points [][]float64) (resolution.Polygon, error) {
	shape := make(resolution.Polygon, 0, len(points))
	for i, p := range points {
		if len(p) != 2 {
			return nil, fmt.Errorf("vertex %d has %d coordinates, expected [x, y]", i, len(p))
		}
		shape = append(shape, resolution.Point{X: p[0], Y: p[1]})
	}
	return shape, nil
}
