package registry

import (
	"fmt"
	"log/slog"

	"github.com/vk/sosgridgo/internal/model"
)

// RegisteredHandler holds a compiled simulate function together with the
// names it reads and writes. Inputs, Outputs and Parameters are checked
// against the sector model definition that uses the handler.
type RegisteredHandler struct {
	Fn         model.SimulateFunc
	Inputs     []string
	Outputs    []string
	Parameters []string
}

// RegisterHandler registers a Go simulate function under name.
func (r *Registry) RegisterHandler(name string, handler *RegisteredHandler) {
	if _, exists := r.HandlerRegistry[name]; exists {
		panic(fmt.Sprintf("handler with name '%s' already registered", name))
	}
	if handler == nil || handler.Fn == nil {
		panic(fmt.Sprintf("handler '%s' has no simulate function", name))
	}
	slog.Debug("Registering sector model handler.", "name", name)
	r.HandlerRegistry[name] = handler
}
