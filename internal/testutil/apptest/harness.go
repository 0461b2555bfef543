// Package apptest runs the whole application over temporary configuration
// trees for integration tests.
package apptest

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/sosgridgo/internal/app"
	"github.com/vk/sosgridgo/internal/hcl_adapter"
	"github.com/vk/sosgridgo/internal/registry"
	"github.com/vk/sosgridgo/internal/testutil"
)

// HarnessResult holds the outcomes of an integration test run.
type HarnessResult struct {
	LogOutput string
	Err       error
	App       *app.App
}

// RunApp writes files to a temporary directory, creates an App over it with
// the given modules (the compiled-in ones when none are given) and runs it.
// configure, when non-nil, adjusts the app configuration first.
func RunApp(ctx context.Context, t *testing.T, files map[string]string, configure func(*app.Config), modules ...registry.Module) *HarnessResult {
	t.Helper()

	root := testutil.WriteFiles(t, files)
	cfg := &app.Config{
		ConfigPaths: []string{root},
		LogLevel:    "debug",
		LogFormat:   "text",
		Workers:     4,
	}
	if configure != nil {
		configure(cfg)
	}

	logBuffer := &testutil.SafeBuffer{}
	testApp, err := newApp(logBuffer, cfg, modules)
	if err == nil {
		err = testApp.Run(ctx)
	}

	if os.Getenv("SOSGRID_TEST_LOGS") == "true" {
		t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
	}

	return &HarnessResult{
		LogOutput: logBuffer.String(),
		Err:       err,
		App:       testApp,
	}
}

// NewApp creates an App over files without running it.
func NewApp(t *testing.T, files map[string]string, modules ...registry.Module) (*app.App, *testutil.SafeBuffer) {
	t.Helper()

	cfg := &app.Config{
		ConfigPaths: []string{testutil.WriteFiles(t, files)},
		LogLevel:    "debug",
		LogFormat:   "text",
		Workers:     1,
	}
	logBuffer := &testutil.SafeBuffer{}
	testApp, err := newApp(logBuffer, cfg, modules)
	require.NoError(t, err)
	return testApp, logBuffer
}

// newApp converts a startup panic into an error.
func newApp(logBuffer *testutil.SafeBuffer, cfg *app.Config, modules []registry.Module) (a *app.App, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("application startup panicked | %v", r)
		}
	}()
	return app.NewApp(logBuffer, cfg, hcl_adapter.NewLoader(), modules...)
}
