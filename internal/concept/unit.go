package concept

import (
	"sort"

	"eureka/internal/logging"
)

// Core slot names. These are the slots the engine itself reads and writes;
// heuristic content is free to invent others.
const (
	SlotWorth           = "worth"
	SlotIsa             = "isa"
	SlotEnglish         = "english"
	SlotExamples        = "examples"
	SlotGeneralizations = "generalizations"
	SlotSpecializations = "specializations"
	SlotDomain          = "domain"
	SlotRange           = "range"
	SlotInDomainOf      = "in_domain_of"
	SlotIsRangeOf       = "is_range_of"
	SlotAlgorithm       = "algorithm"
	SlotDefinition      = "definition"
	SlotApplics         = "applics"
	SlotCreditors       = "creditors"
	SlotArity           = "arity"
	SlotInterestingness = "interestingness"
	SlotSubsumedBy      = "subsumed_by"
)

// Worth bounds. Every unit's worth is clamped to this range.
const (
	WorthMin = 0
	WorthMax = 1000
)

// Algorithm is an executable value stored in a unit's algorithm slot.
type Algorithm func(args []interface{}) interface{}

// Predicate is a membership/interestingness test stored as a slot value.
type Predicate func(value interface{}) bool

// Application records one observed application of an operation unit:
// the arguments, the produced result, and how valuable it was judged.
type Application struct {
	Args   []interface{}
	Result interface{}
	Worth  int
}

// Unit is a named knowledge record with a typed property bag. The name is
// the immutable unique key; everything else, including the categories the
// unit belongs to, lives in the property bag and may be rewritten by any
// heuristic phase at any time.
//
// Units are mutated directly, without locks, by phase functions. This is
// safe only because engine execution is strictly single-threaded; the
// registries carry their own locks for outside readers.
type Unit struct {
	name  string
	worth int
	props map[string]interface{}
}

// NewUnit creates a unit with the given name and worth (clamped to [0,1000]).
func NewUnit(name string, worth int) *Unit {
	return &Unit{
		name:  name,
		worth: clampWorth(worth),
		props: make(map[string]interface{}),
	}
}

// Name returns the unit's immutable name.
func (u *Unit) Name() string { return u.name }

// Worth returns the unit's current worth.
func (u *Unit) Worth() int { return u.worth }

// SetWorth sets the worth, clamped to [0,1000].
func (u *Unit) SetWorth(w int) { u.worth = clampWorth(w) }

// AdjustWorth shifts the worth by delta, clamped to [0,1000].
func (u *Unit) AdjustWorth(delta int) { u.worth = clampWorth(u.worth + delta) }

func clampWorth(w int) int {
	if w < WorthMin {
		return WorthMin
	}
	if w > WorthMax {
		return WorthMax
	}
	return w
}

// GetProp returns a property value, or nil when absent.
func (u *Unit) GetProp(name string) interface{} {
	return u.props[name]
}

// SetProp sets a property value.
func (u *Unit) SetProp(name string, value interface{}) {
	u.props[name] = value
}

// HasProp reports whether a property is present.
func (u *Unit) HasProp(name string) bool {
	_, ok := u.props[name]
	return ok
}

// RemoveProp deletes a property entirely.
func (u *Unit) RemoveProp(name string) {
	delete(u.props, name)
}

// RemovePropValue removes one value from a list-valued property.
func (u *Unit) RemovePropValue(name, value string) {
	list := u.ListProp(name)
	if list == nil {
		return
	}
	out := make([]string, 0, len(list))
	for _, v := range list {
		if v != value {
			out = append(out, v)
		}
	}
	u.props[name] = out
}

// AddProp appends a value to a list-valued property with set semantics:
// a value already present is not added again. toHead prepends instead.
func (u *Unit) AddProp(name, value string, toHead bool) {
	list := u.ListProp(name)
	for _, v := range list {
		if v == value {
			return
		}
	}
	if toHead {
		u.props[name] = append([]string{value}, list...)
	} else {
		u.props[name] = append(list, value)
	}
}

// ListProp returns a list-valued property as []string. A scalar string is
// treated as a single-element list; anything else yields nil.
func (u *Unit) ListProp(name string) []string {
	switch v := u.props[name].(type) {
	case []string:
		return v
	case string:
		return []string{v}
	default:
		return nil
	}
}

// PropNames returns the property names, sorted.
func (u *Unit) PropNames() []string {
	names := make([]string, 0, len(u.props))
	for name := range u.props {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Snapshot returns a shallow copy of the property bag with list values
// copied, suitable for before/after diffing by the executor.
func (u *Unit) Snapshot() map[string]interface{} {
	out := make(map[string]interface{}, len(u.props))
	for k, v := range u.props {
		if list, ok := v.([]string); ok {
			out[k] = append([]string(nil), list...)
			continue
		}
		out[k] = v
	}
	return out
}

// Derived relational accessors.

// Isa returns the categories this unit belongs to.
func (u *Unit) Isa() []string { return u.ListProp(SlotIsa) }

// Examples returns the recorded instances of this unit.
func (u *Unit) Examples() []string { return u.ListProp(SlotExamples) }

// Specializations returns the names of this unit's specializations.
func (u *Unit) Specializations() []string { return u.ListProp(SlotSpecializations) }

// Generalizations returns the names of this unit's generalizations.
func (u *Unit) Generalizations() []string { return u.ListProp(SlotGeneralizations) }

// IsMemberOf reports whether the unit carries the given category.
func (u *Unit) IsMemberOf(category string) bool {
	for _, c := range u.Isa() {
		if c == category {
			return true
		}
	}
	return false
}

// ApplyAlgorithm runs the unit's algorithm slot against args, or returns
// nil when no algorithm is stored.
func (u *Unit) ApplyAlgorithm(args []interface{}) interface{} {
	alg, ok := u.props[SlotAlgorithm].(Algorithm)
	if !ok {
		return nil
	}
	return alg(args)
}

// Applications returns the recorded applications of this unit.
func (u *Unit) Applications() []Application {
	apps, _ := u.props[SlotApplics].([]Application)
	return apps
}

// AddApplication records an application of this unit.
func (u *Unit) AddApplication(app Application) {
	u.props[SlotApplics] = append(u.Applications(), app)
}

// MergeProps copies another unit's properties into this one, the way a
// specialization inherits most of a parent's knowledge:
//
//   - the other unit's name and worth are never copied
//   - slots marked dont_copy are skipped
//   - with criterialOnly, only criterial slots are copied
//   - list-valued slots present on both sides are unioned, duplicate-free
//   - scalar slots are overwritten
func (u *Unit) MergeProps(other *Unit, slots *SlotRegistry, criterialOnly bool) {
	for _, name := range other.PropNames() {
		if name == SlotWorth {
			continue
		}
		meta := slots.Get(name)
		if meta != nil {
			if meta.DontCopy {
				continue
			}
			if criterialOnly && !meta.IsCriterial {
				continue
			}
		} else if criterialOnly {
			continue
		}

		theirs := other.props[name]
		theirList, theirsIsList := theirs.([]string)
		mineList, mineIsList := u.props[name].([]string)

		if theirsIsList && mineIsList {
			u.props[name] = unionStrings(mineList, theirList)
			continue
		}
		if theirsIsList {
			u.props[name] = append([]string(nil), theirList...)
			continue
		}
		u.props[name] = theirs
	}
	logging.UnitsDebug("merged props of %s into %s (criterialOnly=%v)", other.name, u.name, criterialOnly)
}

// unionStrings appends the members of b not already in a, preserving order.
func unionStrings(a, b []string) []string {
	out := append([]string(nil), a...)
	seen := make(map[string]bool, len(a))
	for _, v := range a {
		seen[v] = true
	}
	for _, v := range b {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

// Link records a two-way relation: b's name is added to a's slot and a's
// name to the slot's declared inverse on b. Core code writes relational
// slots through Link so that inverse pairs (isa/examples,
// specializations/generalizations, domain/in_domain_of) stay consistent;
// direct SetProp writes remain possible and are the caller's contract.
func Link(a *Unit, slotName string, b *Unit, slots *SlotRegistry) {
	a.AddProp(slotName, b.Name(), false)
	meta := slots.Get(slotName)
	if meta == nil || meta.Inverse == "" {
		return
	}
	b.AddProp(meta.Inverse, a.Name(), false)
}
