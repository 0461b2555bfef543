package convert

import (
	"context"
	"fmt"
	"sort"

	"github.com/vk/sosgridgo/internal/array"
	"github.com/vk/sosgridgo/internal/ctxlog"
	"github.com/vk/sosgridgo/internal/resolution"
)

// Convertor converts observation batches between bases. It only reads the
// registers, so one Convertor may be shared by many composites.
type Convertor struct {
	regions   *resolution.RegionRegister
	intervals *resolution.IntervalRegister
}

// New returns a Convertor backed by the given registers.
func New(regions *resolution.RegionRegister, intervals *resolution.IntervalRegister) *Convertor {
	if regions == nil {
		regions = resolution.NewRegionRegister()
	}
	if intervals == nil {
		intervals = resolution.NewIntervalRegister(resolution.DefaultBaseYear)
	}
	return &Convertor{regions: regions, intervals: intervals}
}

// Regions returns the region register.
func (c *Convertor) Regions() *resolution.RegionRegister { return c.regions }

// Intervals returns the interval register.
func (c *Convertor) Intervals() *resolution.IntervalRegister { return c.intervals }

// Shape returns the number of regions and intervals of a basis.
func (c *Convertor) Shape(b Basis) (int, int, error) {
	rs, is, err := c.sets(b)
	if err != nil {
		return 0, 0, err
	}
	return rs.Len(), is.Len(), nil
}

func (c *Convertor) sets(b Basis) (*resolution.RegionSet, *resolution.IntervalSet, error) {
	rs, err := c.regions.Get(b.Regions)
	if err != nil {
		return nil, nil, err
	}
	is, err := c.intervals.Get(b.Intervals)
	if err != nil {
		return nil, nil, err
	}
	return rs, is, nil
}

// grid is a dense view of a batch on one basis, remembering which regions
// and intervals actually carried data.
type grid struct {
	regions   *resolution.RegionSet
	intervals *resolution.IntervalSet
	values    array.Array
	hasRegion []bool
	hasIntvl  []bool
	units     string
}

// Convert re-expresses data, defined on from, on the basis to. All
// observations must carry the same units. Observations that land on the
// same cell accumulate.
//
// The output is ordered by target region, then target interval, both in
// canonical set order. Interval conversion yields every target interval for
// each region present in data; region conversion yields every target region
// for each interval present in data.
func (c *Convertor) Convert(ctx context.Context, data []Observation, from, to Basis) ([]Observation, error) {
	logger := ctxlog.FromContext(ctx)

	units, err := commonUnits(data)
	if err != nil {
		return nil, err
	}
	srcRegions, srcIntervals, err := c.sets(from)
	if err != nil {
		return nil, err
	}
	dstRegions, dstIntervals, err := c.sets(to)
	if err != nil {
		return nil, err
	}

	if from == to {
		logger.Debug("Conversion not required.", "basis", from.String(), "observations", len(data))
		return append([]Observation(nil), data...), nil
	}

	g, err := newGrid(data, srcRegions, srcIntervals, units)
	if err != nil {
		return nil, err
	}

	if from.Intervals != to.Intervals {
		w, err := c.intervals.Weights(from.Intervals, to.Intervals)
		if err != nil {
			return nil, err
		}
		g = g.convertIntervals(dstIntervals, w)
		logger.Debug("Converted intervals.", "from", from.Intervals, "to", to.Intervals)
	}
	if from.Regions != to.Regions {
		w, err := c.regions.Weights(from.Regions, to.Regions)
		if err != nil {
			return nil, err
		}
		g = g.convertRegions(dstRegions, w)
		logger.Debug("Converted regions.", "from", from.Regions, "to", to.Regions)
	}
	return g.observations(), nil
}

// ConvertArray converts a dense array laid out on from into one laid out on to.
func (c *Convertor) ConvertArray(ctx context.Context, arr array.Array, units string, from, to Basis) (array.Array, error) {
	srcRegions, srcIntervals, err := c.sets(from)
	if err != nil {
		return nil, err
	}
	if err := arr.Validate(srcRegions.Len(), srcIntervals.Len()); err != nil {
		return nil, fmt.Errorf("value on %s: %w", from, err)
	}
	if from == to {
		return arr.Clone(), nil
	}

	rNames, iNames := srcRegions.Names(), srcIntervals.Names()
	obs := make([]Observation, 0, len(rNames)*len(iNames))
	for r, region := range rNames {
		for i, interval := range iNames {
			obs = append(obs, Observation{Region: region, Interval: interval, Value: arr[r][i], Units: units})
		}
	}

	converted, err := c.Convert(ctx, obs, from, to)
	if err != nil {
		return nil, err
	}

	dstRegions, dstIntervals, err := c.sets(to)
	if err != nil {
		return nil, err
	}
	out := array.Zeros(dstRegions.Len(), dstIntervals.Len())
	for _, o := range converted {
		r, _ := dstRegions.Index(o.Region)
		i, _ := dstIntervals.Index(o.Interval)
		out[r][i] = o.Value
	}
	return out, nil
}

func commonUnits(data []Observation) (string, error) {
	seen := make(map[string]struct{})
	for _, o := range data {
		seen[o.Units] = struct{}{}
	}
	if len(seen) <= 1 {
		if len(data) == 0 {
			return "", nil
		}
		return data[0].Units, nil
	}
	units := make([]string, 0, len(seen))
	for u := range seen {
		units = append(units, u)
	}
	sort.Strings(units)
	return "", fmt.Errorf("%w: batch mixes %v", ErrInconsistentUnits, units)
}

func newGrid(data []Observation, regions *resolution.RegionSet, intervals *resolution.IntervalSet, units string) (*grid, error) {
	g := &grid{
		regions:   regions,
		intervals: intervals,
		values:    array.Zeros(regions.Len(), intervals.Len()),
		hasRegion: make([]bool, regions.Len()),
		hasIntvl:  make([]bool, intervals.Len()),
		units:     units,
	}
	cells := make(map[[2]int]Observation, len(data))
	for _, o := range data {
		r, ok := regions.Index(o.Region)
		if !ok {
			return nil, fmt.Errorf("region %q is not part of region set %q", o.Region, regions.Name)
		}
		i, ok := intervals.Index(o.Interval)
		if !ok {
			return nil, fmt.Errorf("interval %q is not part of interval set %q", o.Interval, intervals.Name)
		}
		key := [2]int{r, i}
		if prev, ok := cells[key]; ok {
			sum, err := prev.Add(o)
			if err != nil {
				return nil, err
			}
			o = sum
		}
		cells[key] = o
		g.values[r][i] = o.Value
		g.hasRegion[r] = true
		g.hasIntvl[i] = true
	}
	return g, nil
}

func (g *grid) convertIntervals(dst *resolution.IntervalSet, w [][]float64) *grid {
	out := &grid{
		regions:   g.regions,
		intervals: dst,
		values:    array.Zeros(g.regions.Len(), dst.Len()),
		hasRegion: g.hasRegion,
		hasIntvl:  make([]bool, dst.Len()),
		units:     g.units,
	}
	for r := range g.values {
		if !g.hasRegion[r] {
			continue
		}
		for i, v := range g.values[r] {
			for j, weight := range w[i] {
				out.values[r][j] += v * weight
			}
		}
	}
	if anyTrue(g.hasIntvl) {
		for j := range out.hasIntvl {
			out.hasIntvl[j] = true
		}
	}
	return out
}

func (g *grid) convertRegions(dst *resolution.RegionSet, w [][]float64) *grid {
	out := &grid{
		regions:   dst,
		intervals: g.intervals,
		values:    array.Zeros(dst.Len(), g.intervals.Len()),
		hasRegion: make([]bool, dst.Len()),
		hasIntvl:  g.hasIntvl,
		units:     g.units,
	}
	for r := range g.values {
		if !g.hasRegion[r] {
			continue
		}
		for i, v := range g.values[r] {
			if !g.hasIntvl[i] {
				continue
			}
			for k, weight := range w[r] {
				out.values[k][i] += v * weight
			}
		}
	}
	if anyTrue(g.hasRegion) {
		for k := range out.hasRegion {
			out.hasRegion[k] = true
		}
	}
	return out
}

func (g *grid) observations() []Observation {
	rNames, iNames := g.regions.Names(), g.intervals.Names()
	var out []Observation
	for r, region := range rNames {
		if !g.hasRegion[r] {
			continue
		}
		for i, interval := range iNames {
			if !g.hasIntvl[i] {
				continue
			}
			out = append(out, Observation{Region: region, Interval: interval, Value: g.values[r][i], Units: g.units})
		}
	}
	return out
}

func anyTrue(flags []bool) bool {
	for _, f := range flags {
		if f {
			return true
		}
	}
	return false
}
