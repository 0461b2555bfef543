package system

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"github.com/vk/sosgridgo/internal/testutil/apptest"
)

// lastTimestep returns how many timesteps of composite succeeded, as seen
// by the app's metrics.
func lastTimestep(t *testing.T, result *apptest.HarnessResult, composite string) float64 {
	t.Helper()
	require.NotNil(t, result.App)
	return testutil.ToFloat64(result.App.Metrics().Timesteps.WithLabelValues(composite, "ok"))
}
