package concept

import (
	"sort"
	"sync"

	"eureka/internal/logging"
)

// SlotRegistry holds the slot metadata table for one run. It is shared by
// the executor and every heuristic invocation; one registry per run,
// threaded explicitly rather than held in a package global.
type SlotRegistry struct {
	mu    sync.RWMutex
	slots map[string]*Slot
}

// NewSlotRegistry creates a registry pre-populated with the core slots.
func NewSlotRegistry() *SlotRegistry {
	r := &SlotRegistry{slots: make(map[string]*Slot)}
	r.initCoreSlots()
	return r
}

// Register adds or replaces a slot definition.
func (r *SlotRegistry) Register(slot *Slot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.slots[slot.Name] = slot
}

// Get returns a slot by name, or nil.
func (r *SlotRegistry) Get(name string) *Slot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.slots[name]
}

// Exists reports whether a slot is registered.
func (r *SlotRegistry) Exists(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.slots[name]
	return ok
}

// All returns a copy of the slot table.
func (r *SlotRegistry) All() map[string]*Slot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]*Slot, len(r.slots))
	for k, v := range r.slots {
		out[k] = v
	}
	return out
}

// Names returns all slot names, sorted.
func (r *SlotRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.slots))
	for name := range r.slots {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CriterialSlots returns the names of all criterial slots, sorted.
func (r *SlotRegistry) CriterialSlots() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0)
	for name, slot := range r.slots {
		if slot.IsCriterial {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// NonCriterialSlots returns the names of all non-criterial slots, sorted.
func (r *SlotRegistry) NonCriterialSlots() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0)
	for name, slot := range r.slots {
		if !slot.IsCriterial {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// CheckInverses verifies that inverse declarations are symmetric: if slot A
// declares inverse B, slot B should declare inverse A. Asymmetries are
// logged as warnings, never errors.
func (r *SlotRegistry) CheckInverses() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var warnings []string
	for name, slot := range r.slots {
		if slot.Inverse == "" {
			continue
		}
		other, ok := r.slots[slot.Inverse]
		if !ok {
			warnings = append(warnings, name+": inverse slot "+slot.Inverse+" is not registered")
			continue
		}
		if other.Inverse != name {
			warnings = append(warnings, name+": inverse slot "+slot.Inverse+" does not declare "+name+" back")
		}
	}
	sort.Strings(warnings)
	for _, w := range warnings {
		logging.Get(logging.CategoryBoot).Warn("slot inverse check: %s", w)
	}
	return warnings
}

// ValidateValue validates a value against a slot's data type. Unregistered
// slot names accept all values.
func (r *SlotRegistry) ValidateValue(slotName string, value interface{}) bool {
	slot := r.Get(slotName)
	if slot == nil {
		return true
	}
	return slot.ValidateValue(value)
}

// initCoreSlots registers the core slot table: identity, relational,
// algorithm, record-keeping, and heuristic-support slots.
func (r *SlotRegistry) initCoreSlots() {
	core := []*Slot{
		// Identity slots
		{Name: SlotWorth, DataType: DataTypeNumber, Description: "Base value/importance of the unit"},
		{Name: SlotIsa, DataType: DataTypeUnit, Inverse: SlotExamples, DoubleCheck: true, Description: "Categories this unit belongs to"},
		{Name: SlotEnglish, DataType: DataTypeText, Description: "Cosmetic description of the unit"},

		// Structural relation slots (inverse pairs)
		{Name: SlotExamples, DataType: DataTypeUnit, DontCopy: true, Inverse: SlotIsa, Description: "Known instances of this unit"},
		{Name: SlotGeneralizations, DataType: DataTypeUnit, DontCopy: true, Inverse: SlotSpecializations, Description: "More general forms of this unit"},
		{Name: SlotSpecializations, DataType: DataTypeUnit, DontCopy: true, Inverse: SlotGeneralizations, Description: "More specific forms of this unit"},
		{Name: SlotDomain, DataType: DataTypeUnit, IsCriterial: true, Inverse: SlotInDomainOf, Description: "Input types this operation accepts"},
		{Name: SlotRange, DataType: DataTypeUnit, IsCriterial: true, Inverse: SlotIsRangeOf, Description: "Output types this operation produces"},
		{Name: SlotInDomainOf, DataType: DataTypeUnit, Inverse: SlotDomain, Description: "Operations accepting this unit as input"},
		{Name: SlotIsRangeOf, DataType: DataTypeUnit, Inverse: SlotRange, Description: "Operations producing this unit"},

		// Algorithm slots
		{Name: SlotAlgorithm, DataType: DataTypeFunction, IsCriterial: true, Description: "Executable algorithm for this operation"},
		{Name: SlotDefinition, DataType: DataTypeFunction, IsCriterial: true, Description: "Membership predicate for this concept"},

		// Record-keeping slots (never copied into specializations)
		{Name: SlotApplics, DontCopy: true, Description: "Recorded applications of this unit"},
		{Name: SlotCreditors, DataType: DataTypeUnit, DontCopy: true, Description: "Units credited with creating this one"},

		// Heuristic-support slots
		{Name: SlotArity, DataType: DataTypeNumber, Description: "Argument count for operations"},
		{Name: SlotInterestingness, DataType: DataTypeFunction, Description: "Predicate judging whether a value is interesting"},
		{Name: SlotSubsumedBy, DataType: DataTypeUnit, DontCopy: true, Description: "Heuristics that subsume this one"},
	}

	for _, slot := range core {
		r.slots[slot.Name] = slot
	}
}
