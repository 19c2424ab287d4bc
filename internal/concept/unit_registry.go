package concept

import (
	"sort"
	"sync"

	"eureka/internal/logging"
)

// UnitRegistry is the singleton-per-run store of all units. Deleted names
// are tombstoned permanently: a tombstoned name can never be registered
// again for the rest of the run.
//
// The registry also maintains a category index (category -> unit names),
// updated at register/unregister time. Because heuristic phases may rewrite
// a unit's isa slot directly, the executor calls Reindex for every unit
// modified during a task; the reference system left the index stale in that
// case, which this port fixes.
type UnitRegistry struct {
	mu         sync.RWMutex
	units      map[string]*Unit
	byCategory map[string]map[string]bool
	tombstones map[string]bool
	regSeq     map[string]int64
	nextSeq    int64
}

// NewUnitRegistry creates an empty registry.
func NewUnitRegistry() *UnitRegistry {
	return &UnitRegistry{
		units:      make(map[string]*Unit),
		byCategory: make(map[string]map[string]bool),
		tombstones: make(map[string]bool),
		regSeq:     make(map[string]int64),
	}
}

// CreateUnit registers a new unit with the given name, worth, and
// categories. If the name is already registered the existing unit is
// returned unchanged; this mirrors the reference system and is the
// documented collision policy. A tombstoned name yields nil.
func (r *UnitRegistry) CreateUnit(name string, worth int, isa ...string) *Unit {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.units[name]; ok {
		return existing
	}
	if r.tombstones[name] {
		logging.Get(logging.CategoryUnits).Warn("create %s refused: name is tombstoned", name)
		return nil
	}

	u := NewUnit(name, worth)
	if len(isa) > 0 {
		u.SetProp(SlotIsa, append([]string(nil), isa...))
	}
	r.registerLocked(u)
	return u
}

// Register adds a unit to the registry, overwriting any same-named entry.
// It returns false (and logs) if the name was previously tombstoned; it
// never panics.
func (r *UnitRegistry) Register(u *Unit) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.tombstones[u.Name()] {
		logging.Get(logging.CategoryUnits).Warn("register %s refused: name is tombstoned", u.Name())
		return false
	}
	r.registerLocked(u)
	return true
}

func (r *UnitRegistry) registerLocked(u *Unit) {
	if old, ok := r.units[u.Name()]; ok {
		r.deindexLocked(old)
	} else {
		r.nextSeq++
		r.regSeq[u.Name()] = r.nextSeq
	}
	r.units[u.Name()] = u
	for _, category := range u.Isa() {
		if r.byCategory[category] == nil {
			r.byCategory[category] = make(map[string]bool)
		}
		r.byCategory[category][u.Name()] = true
	}
	logging.UnitsDebug("registered unit %s (worth=%d, isa=%v)", u.Name(), u.Worth(), u.Isa())
}

// Unregister removes a unit and tombstones its name permanently.
func (r *UnitRegistry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if u, ok := r.units[name]; ok {
		r.deindexLocked(u)
		delete(r.units, name)
		delete(r.regSeq, name)
	}
	r.tombstones[name] = true
	logging.Units("unregistered unit %s (name tombstoned)", name)
}

func (r *UnitRegistry) deindexLocked(u *Unit) {
	for _, category := range u.Isa() {
		if members, ok := r.byCategory[category]; ok {
			delete(members, u.Name())
			if len(members) == 0 {
				delete(r.byCategory, category)
			}
		}
	}
}

// GetUnit returns a unit by name, or nil.
func (r *UnitRegistry) GetUnit(name string) *Unit {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.units[name]
}

// Exists reports whether a unit is currently registered.
func (r *UnitRegistry) Exists(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.units[name]
	return ok
}

// Tombstoned reports whether a name has been retired.
func (r *UnitRegistry) Tombstoned(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.tombstones[name]
}

// Len returns the number of registered units.
func (r *UnitRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.units)
}

// Names returns all registered unit names, sorted.
func (r *UnitRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.units))
	for name := range r.units {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// All returns a copy of the unit table.
func (r *UnitRegistry) All() map[string]*Unit {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]*Unit, len(r.units))
	for k, v := range r.units {
		out[k] = v
	}
	return out
}

// ByCategory returns the names of all units in a category, sorted. The
// index reflects register/unregister plus any explicit Reindex calls.
func (r *UnitRegistry) ByCategory(category string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	members := r.byCategory[category]
	names := make([]string, 0, len(members))
	for name := range members {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Reindex recomputes the category index entries for one unit. The executor
// calls this for every unit modified during a task, so isa edits made by
// heuristic phases become visible to ByCategory.
func (r *UnitRegistry) Reindex(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.units[name]
	if !ok {
		return
	}
	// Drop every stale membership, then re-add from the current isa list.
	for category, members := range r.byCategory {
		delete(members, name)
		if len(members) == 0 {
			delete(r.byCategory, category)
		}
	}
	for _, category := range u.Isa() {
		if r.byCategory[category] == nil {
			r.byCategory[category] = make(map[string]bool)
		}
		r.byCategory[category][name] = true
	}
}

// RegistrationSeq returns the monotonic registration order of a unit;
// earlier units survive duplicate elimination. Zero means unregistered.
func (r *UnitRegistry) RegistrationSeq(name string) int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.regSeq[name]
}
