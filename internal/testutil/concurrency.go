package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/vk/sosgridgo/internal/array"
	"github.com/vk/sosgridgo/internal/model"
	"github.com/vk/sosgridgo/internal/registry"
)

// SleeperHandler is the handler name registered by SleeperModule.
const SleeperHandler = "sleeper"

// SleeperModule is a shared, self-contained module for concurrency tests.
// Its handler sleeps, outputs done = 1 and records when each sector model
// ran.
type SleeperModule struct {
	ExecutionTimes map[string]*ExecutionRecord
	mu             sync.Mutex
	sleepDuration  time.Duration
}

// NewSleeperModule creates a new sleeper module for testing.
func NewSleeperModule(sleep time.Duration) *SleeperModule {
	return &SleeperModule{
		ExecutionTimes: make(map[string]*ExecutionRecord),
		sleepDuration:  sleep,
	}
}

// Record returns the execution record of the named sector model.
func (m *SleeperModule) Record(name string) (ExecutionRecord, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.ExecutionTimes[name]
	if !ok {
		return ExecutionRecord{}, false
	}
	return *r, true
}

// Register registers the sleeper handler.
func (m *SleeperModule) Register(r *registry.Registry) {
	r.RegisterHandler(SleeperHandler, &registry.RegisteredHandler{
		Outputs: []string{"done"},
		Fn: func(ctx context.Context, req model.SimulateRequest) (array.Data, error) {
			start := time.Now()
			select {
			case <-time.After(m.sleepDuration):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			end := time.Now()

			m.mu.Lock()
			m.ExecutionTimes[req.Model] = &ExecutionRecord{Start: start, End: end}
			m.mu.Unlock()
			return array.Data{"done": array.Scalar(1)}, nil
		},
	})
}

// SleeperHCL declares two independent model runs, slow_a and slow_b, each
// running one sleeper sector model of the same name.
const SleeperHCL = `
sector_model "slow_a" {
  handler = "sleeper"
  output "done" {
    regions   = "national"
    intervals = "annual"
    units     = "flag"
  }
}

sector_model "slow_b" {
  handler = "sleeper"
  output "done" {
    regions   = "national"
    intervals = "annual"
    units     = "flag"
  }
}

sos_model "slow_a_sos" {
  models = ["slow_a"]
}

sos_model "slow_b_sos" {
  models = ["slow_b"]
}

model_run "slow_a" {
  sos_model = "slow_a_sos"
  timesteps = [2010]
}

model_run "slow_b" {
  sos_model = "slow_b_sos"
  timesteps = [2010]
}
`
