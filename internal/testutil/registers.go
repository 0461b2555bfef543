package testutil

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/sosgridgo/internal/convert"
	"github.com/vk/sosgridgo/internal/resolution"
)

// MonthDefs returns the twelve months of a year, named "1_0".."1_11".
func MonthDefs() []resolution.IntervalDef {
	defs := make([]resolution.IntervalDef, 12)
	for i := range defs {
		defs[i] = resolution.IntervalDef{
			Name:  fmt.Sprintf("1_%d", i),
			Start: fmt.Sprintf("P%dM", i),
			End:   fmt.Sprintf("P%dM", i+1),
		}
	}
	return defs
}

// SeasonDefs returns four meteorological seasons; winter wraps the year end.
func SeasonDefs() []resolution.IntervalDef {
	return []resolution.IntervalDef{
		{Name: "winter", Start: "P11M", End: "P2M"},
		{Name: "spring", Start: "P2M", End: "P5M"},
		{Name: "summer", Start: "P5M", End: "P8M"},
		{Name: "autumn", Start: "P8M", End: "P11M"},
	}
}

// Square returns the axis-aligned rectangle with corners (x0,y0) and (x1,y1).
func Square(x0, y0, x1, y1 float64) resolution.Polygon {
	return resolution.Polygon{{X: x0, Y: y0}, {X: x0, Y: y1}, {X: x1, Y: y1}, {X: x1, Y: y0}}
}

// Registers returns fixture registers:
//   - interval sets "annual", "months" and "seasons"
//   - region sets "national" (one region), "half_squares" (a, b) and "rect" (zero)
func Registers(t *testing.T) (*resolution.RegionRegister, *resolution.IntervalRegister) {
	t.Helper()

	intervals := resolution.NewIntervalRegister(resolution.DefaultBaseYear)
	require.NoError(t, intervals.AddIntervalSet("annual", resolution.IntervalDef{Name: "1", Start: "P0Y", End: "P1Y"}))
	require.NoError(t, intervals.AddIntervalSet("months", MonthDefs()...))
	require.NoError(t, intervals.AddIntervalSet("seasons", SeasonDefs()...))

	regions := resolution.NewRegionRegister()
	for _, def := range []struct {
		name    string
		regions []resolution.Region
	}{
		{"national", []resolution.Region{{Name: "oxford", Shape: Square(0, 0, 2, 2)}}},
		{"half_squares", []resolution.Region{
			{Name: "a", Shape: Square(0, 0, 1, 1)},
			{Name: "b", Shape: Square(0, 1, 1, 2)},
		}},
		{"rect", []resolution.Region{{Name: "zero", Shape: Square(0, 0, 1, 2)}}},
	} {
		set, err := resolution.NewRegionSet(def.name, def.regions...)
		require.NoError(t, err)
		require.NoError(t, regions.Register(set))
	}
	return regions, intervals
}

// Convertor returns a convertor over the fixture registers.
func Convertor(t *testing.T) *convert.Convertor {
	t.Helper()
	return convert.New(Registers(t))
}
