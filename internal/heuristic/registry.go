package heuristic

import (
	"sync"

	"eureka/internal/concept"
	"eureka/internal/logging"
)

// Registry holds the executable heuristics in registration order. The
// iteration order over heuristics during a task is exactly this order, so
// runs are deterministic. Registering a heuristic also registers its
// backing unit, making a newly defined heuristic eligible for the very
// next task.
type Registry struct {
	mu     sync.RWMutex
	byName map[string]*Heuristic
	order  []string
	units  *concept.UnitRegistry
}

// NewRegistry creates a heuristic registry bound to a unit registry.
func NewRegistry(units *concept.UnitRegistry) *Registry {
	return &Registry{
		byName: make(map[string]*Heuristic),
		units:  units,
	}
}

// Register adds a heuristic and its backing unit. A re-registration under
// an existing name replaces the callbacks but keeps the original position.
// Returns false if the backing unit's name is tombstoned.
func (r *Registry) Register(h *Heuristic) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.units.Register(h.unit) {
		logging.Heuristics("refusing to register %s: unit name unavailable", h.Name())
		return false
	}

	name := h.Name()
	if _, exists := r.byName[name]; !exists {
		r.order = append(r.order, name)
	}
	r.byName[name] = h
	logging.HeuristicsDebug("registered heuristic %s (worth=%d, phases=%d)", name, h.Worth(), len(h.DefinedPhases()))
	return true
}

// Get returns a heuristic by name, nil when absent.
func (r *Registry) Get(name string) *Heuristic {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byName[name]
}

// Exists reports whether a heuristic is registered under name.
func (r *Registry) Exists(name string) bool {
	return r.Get(name) != nil
}

// Remove drops a heuristic from the registry. The backing unit stays in
// the unit registry; callers retiring a heuristic entirely should also
// unregister the unit.
func (r *Registry) Remove(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byName[name]; !ok {
		return false
	}
	delete(r.byName, name)
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	logging.Heuristics("removed heuristic %s", name)
	return true
}

// Snapshot returns the heuristics in registration order. The slice is a
// copy; heuristics registered mid-task appear in the next snapshot.
func (r *Registry) Snapshot() []*Heuristic {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Heuristic, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.byName[name])
	}
	return out
}

// Names returns the registered names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

// Len returns the number of registered heuristics.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byName)
}
