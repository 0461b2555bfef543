package sos

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/vk/sosgridgo/internal/array"
	"github.com/vk/sosgridgo/internal/metadata"
	"github.com/vk/sosgridgo/internal/model"
	"github.com/vk/sosgridgo/internal/testutil"
)

// fakeModel is a model whose simulate step is a plain function.
type fakeModel struct {
	name    string
	inputs  *metadata.Set
	outputs *metadata.Set
	fn      func(timestep int, in array.Data) (array.Data, error)
	calls   *[]string
}

func (m *fakeModel) Name() string { return m.name }
func (m *fakeModel) Inputs() *metadata.Set { return m.inputs }
func (m *fakeModel) Outputs() *metadata.Set { return m.outputs }
func (m *fakeModel) Simulate(_ context.Context, timestep int, in array.Data) (array.Data, error) {
	if m.calls != nil {
		*m.calls = append(*m.calls, m.name)
	}
	return m.fn(timestep, in)
}

func scalar(name string) metadata.Spec {
	return metadata.Spec{Name: name, SpatialResolution: "national", TemporalResolution: "annual", Units: "unit"}
}

func ports(names ...string) *metadata.Set {
	set := &metadata.Set{}
	for _, n := range names {
		if err := set.Add(scalar(n)); err != nil {
			panic(err)
		}
	}
	return set
}

// newFake builds a model whose outputs are computed from its scalar inputs.
func newFake(name string, inputs, outputs []string, calls *[]string, fn func(in map[string]float64) map[string]float64) *fakeModel {
	return &fakeModel{
		name:    name,
		inputs:  ports(inputs...),
		outputs: ports(outputs...),
		calls:   calls,
		fn: func(_ int, in array.Data) (array.Data, error) {
			values := make(map[string]float64, len(in))
			for k, v := range in {
				values[k] = v[0][0]
			}
			out := make(array.Data)
			for k, v := range fn(values) {
				out[k] = array.Scalar(v)
			}
			return out, nil
		},
	}
}

func newComposite(t *testing.T, name string, opts ...Option) *SosModel {
	t.Helper()
	return New(name, append([]Option{WithConvertor(testutil.Convertor(t))}, opts...)...)
}

func mustAdd(t *testing.T, s *SosModel, models ...model.Model) {
	t.Helper()
	for _, m := range models {
		require.NoError(t, s.AddModel(m))
	}
}

type groupEvent struct {
	models     []string
	timestep   int
	iterations int
	converged  bool
}

// recordingObserver captures observer callbacks.
type recordingObserver struct {
	mu        sync.Mutex
	simulated []string
	groups    []groupEvent
	timesteps []int
}

func (o *recordingObserver) ModelSimulated(_, model string, _ int, _ time.Duration, _ error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.simulated = append(o.simulated, model)
}

func (o *recordingObserver) GroupFinished(_ string, models []string, timestep, iterations int, converged bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.groups = append(o.groups, groupEvent{models, timestep, iterations, converged})
}

func (o *recordingObserver) TimestepFinished(_ string, timestep int, _ time.Duration, _ error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.timesteps = append(o.timesteps, timestep)
}
