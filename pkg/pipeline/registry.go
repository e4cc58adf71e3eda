package pipeline

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrUnknownModule is returned when a pipeline file names a module the
// registry has no factory for.
var ErrUnknownModule = errors.New("unknown module")

// Factory builds a fresh module instance with default settings.
type Factory func() Module

// Registry maps module names to factories. It is safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates an empty module registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a factory under the name its modules report. Registering the
// same name twice is an error.
func (r *Registry) Register(f Factory) error {
	name := f().Name()

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.factories[name]; ok {
		return fmt.Errorf("module %s already registered", name)
	}
	r.factories[name] = f
	return nil
}

// New instantiates the named module with default settings.
func (r *Registry) New(name string) (Module, error) {
	r.mu.RLock()
	f, ok := r.factories[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownModule, name)
	}
	return f(), nil
}

// Names returns the registered module names sorted alphabetically.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
