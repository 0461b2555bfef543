package system

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/sosgridgo/internal/app"
	"github.com/vk/sosgridgo/internal/testutil"
	"github.com/vk/sosgridgo/internal/testutil/apptest"
	"gopkg.in/yaml.v3"
)

func relay(name string) string {
	return fmt.Sprintf(`
sector_model %q {
  handler = "relay"
  input "in" {
    regions   = "national"
    intervals = "annual"
    units     = "u"
  }
  output "out" {
    regions   = "national"
    intervals = "annual"
    units     = "u"
  }
}
`, name)
}

// Test for: a chain of models runs upstream first, whatever the declaration order.
func TestExecutionOrder_ChainRunsUpstreamFirst(t *testing.T) {
	// --- Arrange ---
	hcl := relay("c") + relay("b") + relay("a") + `
scenario "seed" {
  output "in" {
    regions   = "national"
    intervals = "annual"
    units     = "u"
  }
  data "in" {
    timestep = 2010
    values   = [[10]]
  }
}

sos_model "chain" {
  models = ["c", "b", "a", "seed"]
  dependency {
    source = "seed"
    output = "in"
    sink   = "a"
    input  = "in"
  }
  dependency {
    source = "a"
    output = "out"
    sink   = "b"
    input  = "in"
  }
  dependency {
    source = "b"
    output = "out"
    sink   = "c"
    input  = "in"
  }
}

model_run "chain" {
  sos_model = "chain"
  timesteps = [2010]
}
`
	files := map[string]string{
		"resolutions.hcl": testutil.ResolutionsHCL,
		"chain.hcl":       hcl,
	}
	relayModule := &mockRelayModule{}
	reports := t.TempDir()

	// --- Act ---
	result := apptest.RunApp(context.Background(), t, files, func(c *app.Config) {
		c.ReportDir = reports
	}, relayModule)

	// --- Assert ---
	require.NoError(t, result.Err)
	require.Equal(t, []string{"a", "b", "c"}, relayModule.calls())

	raw, err := os.ReadFile(filepath.Join(reports, "chain.yaml"))
	require.NoError(t, err)
	var report struct {
		Timesteps []struct {
			Models []struct {
				Name    string
				Outputs []struct {
					Name   string
					Values [][]float64
				}
			}
		}
	}
	require.NoError(t, yaml.Unmarshal(raw, &report))
	require.Len(t, report.Timesteps, 1)

	got := map[string]float64{}
	for _, m := range report.Timesteps[0].Models {
		for _, o := range m.Outputs {
			got[m.Name+"."+o.Name] = o.Values[0][0]
		}
	}
	require.Equal(t, map[string]float64{"seed.in": 10, "a.out": 11, "b.out": 12, "c.out": 13}, got)
}
