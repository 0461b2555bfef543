package system

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/sosgridgo/internal/array"
	"github.com/vk/sosgridgo/internal/testutil"
	"github.com/vk/sosgridgo/internal/testutil/apptest"
)

// Test for: a dependency between different resolutions converts values on the edge.
func TestConversion_SeasonalHalvesFeedAnnualNational(t *testing.T) {
	// --- Arrange ---
	hcl := `
scenario "rain" {
  output "rain" {
    regions   = "half_squares"
    intervals = "seasons"
    units     = "mm"
  }
  data "rain" {
    timestep = 2010
    values   = [[1, 2, 3, 4], [10, 20, 30, 40]]
  }
}

sector_model "reservoir" {
  input "rain" {
    regions   = "national"
    intervals = "annual"
    units     = "mm"
  }
  output "stored" {
    regions    = "national"
    intervals  = "annual"
    units      = "mm"
    expression = input.rain
  }
}

sos_model "hydrology" {
  models = ["rain", "reservoir"]
  dependency {
    source = "rain"
    output = "rain"
    sink   = "reservoir"
    input  = "rain"
  }
}

model_run "hydrology" {
  sos_model = "hydrology"
  timesteps = [2010]
}
`
	files := map[string]string{
		"resolutions.hcl": testutil.ResolutionsHCL,
		"hydrology.hcl":   hcl,
	}
	a, _ := apptest.NewApp(t, files)

	// --- Act ---
	run, err := a.Builder().BuildRun(context.Background(), "hydrology")
	require.NoError(t, err)
	require.NoError(t, run.Execute(context.Background(), nil))

	// --- Assert ---
	// Both halves lie inside the national square and the four seasons cover
	// the year, so the annual national total is the sum of every cell.
	got, ok, err := run.Composite.Store().GetOutputs(context.Background(), 2010, "reservoir")
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, array.AllClose(array.Scalar(110), got["stored"], 1e-9, 1e-9), "stored = %v", got["stored"])
}
