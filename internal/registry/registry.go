package registry

import (
	"github.com/vk/sosgridgo/internal/config"
)

// Module is the interface that all compiled-in model packages must implement
// to be registered.
type Module interface {
	Register(r *Registry)
}

// Registry holds all the registered handlers and sector model definitions for
// a single application instance.
type Registry struct {
	HandlerRegistry    map[string]*RegisteredHandler
	DefinitionRegistry map[string]*config.SectorModel
}

// New creates and initializes a new Registry instance.
func New() *Registry {
	return &Registry{
		HandlerRegistry:    make(map[string]*RegisteredHandler),
		DefinitionRegistry: make(map[string]*config.SectorModel),
	}
}

// PopulateDefinitionsFromModel copies the loaded sector model definitions
// from the config model into the registry for validation and lookup.
func (r *Registry) PopulateDefinitionsFromModel(model *config.Model) {
	for _, def := range model.SectorModels {
		r.DefinitionRegistry[def.Name] = def
	}
}

// Handler returns the handler registered under name.
func (r *Registry) Handler(name string) (*RegisteredHandler, bool) {
	h, ok := r.HandlerRegistry[name]
	return h, ok
}
