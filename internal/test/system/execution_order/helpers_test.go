package system

import (
	"context"
	"sync"

	"github.com/vk/sosgridgo/internal/array"
	"github.com/vk/sosgridgo/internal/model"
	"github.com/vk/sosgridgo/internal/registry"
)

// mockRelayModule registers a "relay" handler that outputs its input plus
// one and records the order in which sector models ran.
type mockRelayModule struct {
	mu    sync.Mutex
	order []string
}

func (m *mockRelayModule) Register(r *registry.Registry) {
	r.RegisterHandler("relay", &registry.RegisteredHandler{
		Inputs:  []string{"in"},
		Outputs: []string{"out"},
		Fn: func(_ context.Context, req model.SimulateRequest) (array.Data, error) {
			m.mu.Lock()
			m.order = append(m.order, req.Model)
			m.mu.Unlock()

			out := req.Inputs["in"].Clone()
			for r := range out {
				for i := range out[r] {
					out[r][i]++
				}
			}
			return array.Data{"out": out}, nil
		},
	})
}

func (m *mockRelayModule) calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.order...)
}
