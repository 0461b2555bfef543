package resolution

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func monthDefs() []IntervalDef {
	defs := make([]IntervalDef, 12)
	for i := range defs {
		defs[i] = IntervalDef{
			Name:  fmt.Sprintf("1_%d", i),
			Start: fmt.Sprintf("P%dM", i),
			End:   fmt.Sprintf("P%dM", i+1),
		}
	}
	return defs
}

func seasonDefs() []IntervalDef {
	return []IntervalDef{
		{Name: "winter", Start: "P11M", End: "P2M"},
		{Name: "spring", Start: "P2M", End: "P5M"},
		{Name: "summer", Start: "P5M", End: "P8M"},
		{Name: "autumn", Start: "P8M", End: "P11M"},
	}
}

func square(x0, y0, x1, y1 float64) Polygon {
	return Polygon{{x0, y0}, {x0, y1}, {x1, y1}, {x1, y0}}
}

func newTestIntervals(t *testing.T) *IntervalRegister {
	t.Helper()
	r := NewIntervalRegister(DefaultBaseYear)
	require.NoError(t, r.AddIntervalSet("months", monthDefs()...))
	require.NoError(t, r.AddIntervalSet("seasons", seasonDefs()...))
	require.NoError(t, r.AddIntervalSet("annual", IntervalDef{Name: "1", Start: "P0Y", End: "P1Y"}))
	return r
}

func newTestRegions(t *testing.T) *RegionRegister {
	t.Helper()
	r := NewRegionRegister()
	halves, err := NewRegionSet("half_squares",
		Region{Name: "a", Shape: square(0, 0, 1, 1)},
		Region{Name: "b", Shape: square(0, 1, 1, 2)},
	)
	require.NoError(t, err)
	whole, err := NewRegionSet("rect", Region{Name: "zero", Shape: square(0, 0, 1, 2)})
	require.NoError(t, err)
	require.NoError(t, r.Register(halves))
	require.NoError(t, r.Register(whole))
	return r
}
