// Package publish streams the results of each completed timestep to
// external consumers.
package publish

import (
	"context"
	"sort"

	"github.com/vk/sosgridgo/internal/array"
)

// Publisher receives the results of every completed timestep of a model run.
// Implementations must be safe for concurrent use, since independent model
// runs execute in parallel.
type Publisher interface {
	Publish(ctx context.Context, run string, timestep int, results map[string]array.Data) error
	Close() error
}

// Noop discards everything.
type Noop struct{}

func (Noop) Publish(context.Context, string, int, map[string]array.Data) error { return nil }
func (Noop) Close() error { return nil }

// Message is the payload emitted for one timestep.
type Message struct {
	Run      string                            `json:"run"`
	Timestep int                               `json:"timestep"`
	Models   []string                          `json:"models"`
	Results  map[string]map[string][][]float64 `json:"results"`
}

// NewMessage builds the payload for one timestep. Models are sorted by name.
func NewMessage(run string, timestep int, results map[string]array.Data) Message {
	msg := Message{
		Run:      run,
		Timestep: timestep,
		Models:   make([]string, 0, len(results)),
		Results:  make(map[string]map[string][][]float64, len(results)),
	}
	for name, data := range results {
		msg.Models = append(msg.Models, name)
		outputs := make(map[string][][]float64, len(data))
		for out, arr := range data {
			outputs[out] = arr.Clone()
		}
		msg.Results[name] = outputs
	}
	sort.Strings(msg.Models)
	return msg
}
