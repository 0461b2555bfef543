package apptest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// AssertRunFinished checks the log output within a HarnessResult to confirm
// that the named model run completed.
func AssertRunFinished(t *testing.T, result *HarnessResult, run string) {
	t.Helper()

	for _, line := range strings.Split(result.LogOutput, "\n") {
		if strings.Contains(line, "Model run finished.") && strings.Contains(line, "model_run="+run) {
			return
		}
	}
	require.Fail(t, "model run did not finish", "expected a finish log line for model run %q", run)
}
