// Package registry holds the process-wide worker capabilities keyed by kind and name.
package registry

import (
	"fmt"
	"sync"

	"github.com/omnihive/backend/internal/domain/models"
	"github.com/omnihive/backend/pkg/constants"
)

// Registry manages registered worker capabilities.
// Registration order is kept so "first enabled" lookups are stable.
type Registry struct {
	mu       sync.RWMutex
	order    []*models.Capability
	byName   map[string]*models.Capability
	defaults map[constants.WorkerKind]*models.Capability
}

// New creates a new empty registry
func New() *Registry {
	return &Registry{
		byName:   make(map[string]*models.Capability),
		defaults: make(map[constants.WorkerKind]*models.Capability),
	}
}

// Register adds a capability. Registration is idempotent by name: a second
// capability with an already registered name is skipped and reported false.
// A second default for the same kind is an error.
func (r *Registry) Register(c models.Capability) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byName[c.Name]; exists {
		return false, nil
	}
	if c.IsDefault {
		if existing, ok := r.defaults[c.Kind]; ok {
			return false, fmt.Errorf("%s worker %s cannot be default: %s is already the default", c.Kind, c.Name, existing.Name)
		}
	}

	cp := c
	r.order = append(r.order, &cp)
	r.byName[cp.Name] = &cp
	if cp.IsDefault {
		r.defaults[cp.Kind] = &cp
	}
	return true, nil
}

// Resolve returns the capability of kind with the given name, or without a
// name the default, else the first enabled one. The bool is false when absent.
func (r *Registry) Resolve(kind constants.WorkerKind, name ...string) (models.Capability, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(name) > 0 && name[0] != "" {
		c, ok := r.byName[name[0]]
		if !ok || c.Kind != kind || !c.Enabled {
			return models.Capability{}, false
		}
		return *c, true
	}

	if c, ok := r.defaults[kind]; ok && c.Enabled {
		return *c, true
	}
	for _, c := range r.order {
		if c.Kind == kind && c.Enabled {
			return *c, true
		}
	}
	return models.Capability{}, false
}

// All returns every enabled capability of kind in registration order
func (r *Registry) All(kind constants.WorkerKind) []models.Capability {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []models.Capability
	for _, c := range r.order {
		if c.Kind == kind && c.Enabled {
			out = append(out, *c)
		}
	}
	return out
}

// Capabilities returns every registered capability, enabled or not
func (r *Registry) Capabilities() []models.Capability {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Capability, 0, len(r.order))
	for _, c := range r.order {
		out = append(out, *c)
	}
	return out
}

// Len returns the number of registered capabilities
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// ResolveAs resolves a capability and asserts its instance to T
func ResolveAs[T any](r *Registry, kind constants.WorkerKind, name ...string) (T, bool) {
	var zero T
	if r == nil {
		return zero, false
	}
	c, ok := r.Resolve(kind, name...)
	if !ok {
		return zero, false
	}
	inst, ok := c.Instance.(T)
	return inst, ok
}

// NamedInstance pairs a worker name with its typed instance
type NamedInstance[T any] struct {
	Name     string
	Instance T
	Metadata map[string]any
}

// AllAs returns every enabled capability of kind whose instance implements T
func AllAs[T any](r *Registry, kind constants.WorkerKind) []NamedInstance[T] {
	if r == nil {
		return nil
	}
	var out []NamedInstance[T]
	for _, c := range r.All(kind) {
		if inst, ok := c.Instance.(T); ok {
			out = append(out, NamedInstance[T]{Name: c.Name, Instance: inst, Metadata: c.Metadata})
		}
	}
	return out
}
