package bot

import (
	"fmt"
	"sync"
)

// Registry holds modules in registration order.
type Registry struct {
	mu      sync.RWMutex
	modules []Module
	names   map[string]struct{}
}

// NewRegistry creates an empty module registry.
func NewRegistry() *Registry {
	return &Registry{
		names: make(map[string]struct{}),
	}
}

// Add registers m, failing if a module with the same name is already present.
func (r *Registry) Add(m Module) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.names[m.Name()]; ok {
		return fmt.Errorf("module %q already registered", m.Name())
	}
	r.names[m.Name()] = struct{}{}
	r.modules = append(r.modules, m)
	return nil
}

// Modules returns a copy of the registered modules.
func (r *Registry) Modules() []Module {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]Module(nil), r.modules...)
}

var globalRegistry = NewRegistry()

// Register adds m to the global registry. It is meant to be called from a
// module package's init function and panics on a duplicate name.
func Register(m Module) {
	if err := globalRegistry.Add(m); err != nil {
		panic(err)
	}
}

// Modules returns the globally registered modules.
func Modules() []Module {
	return globalRegistry.Modules()
}

// ResetGlobalRegistry empties the global registry. Tests only.
func ResetGlobalRegistry() {
	globalRegistry = NewRegistry()
}
