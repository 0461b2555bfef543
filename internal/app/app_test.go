package app_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"github.com/vk/sosgridgo/internal/app"
	"github.com/vk/sosgridgo/internal/builder"
	"github.com/vk/sosgridgo/internal/publish"
	fixtures "github.com/vk/sosgridgo/internal/testutil"
	"github.com/vk/sosgridgo/internal/testutil/apptest"
	"github.com/vk/sosgridgo/modules/energy_demand"
)

func TestApp_RunsEveryModelRun(t *testing.T) {
	t.Parallel()
	reports := t.TempDir()
	result := apptest.RunApp(context.Background(), t, fixtures.Files(), func(c *app.Config) {
		c.ReportDir = reports
	})
	require.NoError(t, result.Err)

	for _, run := range []string{"water_baseline", "water_more_plants", "energy_baseline"} {
		apptest.AssertRunFinished(t, result, run)
		_, err := os.Stat(filepath.Join(reports, run+".yaml"))
		require.NoError(t, err, "report for %s", run)
	}

	raw, err := os.ReadFile(filepath.Join(reports, "water_baseline.yaml"))
	require.NoError(t, err)
	require.Contains(t, string(raw), "- timestep: 2015")

	m := result.App.Metrics()
	require.Equal(t, 2.0, testutil.ToFloat64(m.Timesteps.WithLabelValues("energy", "ok")))
	require.Equal(t, 2.0, testutil.ToFloat64(m.GroupRuns.WithLabelValues("energy", "fluffiness+energy_demand", "true")))
}

func TestApp_RunSubset(t *testing.T) {
	t.Parallel()
	result := apptest.RunApp(context.Background(), t, fixtures.Files(), func(c *app.Config) {
		c.Runs = []string{"water_more_plants"}
	})
	require.NoError(t, result.Err)
	apptest.AssertRunFinished(t, result, "water_more_plants")
	require.NotContains(t, result.LogOutput, "model_run=energy_baseline")
}

func TestApp_RunUnknownSubset(t *testing.T) {
	t.Parallel()
	result := apptest.RunApp(context.Background(), t, fixtures.Files(), func(c *app.Config) {
		c.Runs = []string{"nope"}
	})
	require.ErrorIs(t, result.Err, builder.ErrUnknownName)
}

func TestApp_IndependentRunsExecuteInParallel(t *testing.T) {
	t.Parallel()
	sleeper := fixtures.NewSleeperModule(200 * time.Millisecond)
	files := map[string]string{
		"resolutions.hcl": fixtures.ResolutionsHCL,
		"sleepers.hcl":    fixtures.SleeperHCL,
	}

	result := apptest.RunApp(context.Background(), t, files, func(c *app.Config) {
		c.Workers = 2
	}, sleeper)
	require.NoError(t, result.Err)

	a, ok := sleeper.Record("slow_a")
	require.True(t, ok)
	b, ok := sleeper.Record("slow_b")
	require.True(t, ok)
	require.True(t, a.Overlaps(b), "expected independent runs to overlap: a=%v b=%v", a, b)
}

func TestApp_SingleWorkerRunsSequentially(t *testing.T) {
	t.Parallel()
	sleeper := fixtures.NewSleeperModule(50 * time.Millisecond)
	files := map[string]string{
		"resolutions.hcl": fixtures.ResolutionsHCL,
		"sleepers.hcl":    fixtures.SleeperHCL,
	}

	result := apptest.RunApp(context.Background(), t, files, func(c *app.Config) {
		c.Workers = 1
	}, sleeper)
	require.NoError(t, result.Err)

	a, _ := sleeper.Record("slow_a")
	b, _ := sleeper.Record("slow_b")
	require.False(t, a.Overlaps(b))
}

func TestApp_RunFailureIsReported(t *testing.T) {
	t.Parallel()
	files := fixtures.Files()
	files["broken.hcl"] = `
model_run "broken" {
  sos_model = "water"
  timesteps = [2030]
}
`
	result := apptest.RunApp(context.Background(), t, files, nil)
	require.Error(t, result.Err)
	require.Contains(t, result.Err.Error(), `scenario "raininess" has no data for timestep 2030`)
}

func TestApp_LoadFailure(t *testing.T) {
	t.Parallel()
	result := apptest.RunApp(context.Background(), t, map[string]string{"bad.hcl": `sos_model "x" {`}, nil)
	require.Error(t, result.Err)
	require.Contains(t, result.Err.Error(), "failed to load configuration")
}

func TestApp_MissingHandlerPanics(t *testing.T) {
	t.Parallel()
	// Only the energy handlers are registered, so water_supply has none.
	result := apptest.RunApp(context.Background(), t, fixtures.Files(), nil, &energy_demand.Module{})
	require.Error(t, result.Err)
	require.Contains(t, result.Err.Error(), "application startup panicked")
	require.Contains(t, result.Err.Error(), "handler 'water_supply' is not registered")
}

func TestApp_Validate(t *testing.T) {
	t.Parallel()
	a, logs := apptest.NewApp(t, fixtures.Files())
	require.NoError(t, a.Validate(context.Background()))
	require.Contains(t, logs.String(), "Configuration is valid.")
}

func TestApp_Graph(t *testing.T) {
	t.Parallel()
	a, _ := apptest.NewApp(t, fixtures.Files())

	var buf bytes.Buffer
	require.NoError(t, a.Graph(context.Background(), &buf, "energy"))
	dot := buf.String()
	require.True(t, strings.HasPrefix(dot, `digraph "energy" {`))
	require.Contains(t, dot, `subgraph "cluster_0"`)
	require.Contains(t, dot, `"fluffiness" -> "energy_demand" [label="fluffiness"];`)

	buf.Reset()
	require.NoError(t, a.Graph(context.Background(), &buf, "water"))
	require.NotContains(t, buf.String(), "cluster")
	require.Contains(t, buf.String(), `"raininess" -> "water_supply" [label="raininess"];`)

	require.ErrorIs(t, a.Graph(context.Background(), &buf, "nope"), builder.ErrUnknownName)
}

func TestApp_HealthAndMetricsHandler(t *testing.T) {
	t.Parallel()
	a, _ := apptest.NewApp(t, fixtures.Files())
	a.Metrics().TimestepFinished("water", 2010, time.Millisecond, nil)
	h := a.Handler()

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "OK\n", rr.Body.String())

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Body.String(), `sos_last_timestep{composite="water"} 2010`)
}

func TestApp_PublishesTimestepsOverHTTP(t *testing.T) {
	t.Parallel()
	var (
		mu    sync.Mutex
		posts []publish.Message
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var msg publish.Message
		if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		mu.Lock()
		posts = append(posts, msg)
		mu.Unlock()
	}))
	defer srv.Close()

	result := apptest.RunApp(context.Background(), t, fixtures.Files(), func(c *app.Config) {
		c.Runs = []string{"water_baseline"}
		c.PublishURL = srv.URL
		c.PublishTransport = app.PublishHTTP
	})
	require.NoError(t, result.Err)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, posts, 2)
	for _, msg := range posts {
		require.Equal(t, "water_baseline", msg.Run)
		require.Contains(t, msg.Models, "water_supply")
	}
}
