package engine

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"eureka/internal/concept"
	"eureka/internal/logging"
)

// EliminateDuplicates finds units that are structurally the same concept
// and collapses each group onto one survivor. Two units are duplicates
// when any one category is shared and every populated criterial slot
// agrees; categories beyond the shared one do not separate them. A unit
// with no populated criterial slot never matches anything. The
// earliest-registered unit survives, absorbs the losers' non-criterial
// properties, and every reference to a loser, in other units and in
// pending tasks, is rewritten to the survivor. Losers are tombstoned so
// their names can never silently return.
func (e *Engine) EliminateDuplicates() int {
	groups := make(map[string][]string)
	for _, name := range e.units.Names() {
		u := e.units.GetUnit(name)
		if u == nil {
			continue
		}
		sig := e.criterialSignature(u)
		if sig == "" {
			continue
		}
		// One group per category, so a single shared category suffices.
		for _, cat := range u.Isa() {
			key := cat + "|" + sig
			groups[key] = append(groups[key], name)
		}
	}

	removed := 0
	for _, members := range groups {
		if len(members) < 2 {
			continue
		}

		sort.Slice(members, func(i, j int) bool {
			return e.units.RegistrationSeq(members[i]) < e.units.RegistrationSeq(members[j])
		})

		var survivor *concept.Unit
		for _, name := range members {
			u := e.units.GetUnit(name)
			if u == nil {
				// Already collapsed through another shared category.
				continue
			}
			if survivor == nil {
				survivor = u
				continue
			}

			survivor.MergeProps(u, e.slots, false)
			if u.Worth() > survivor.Worth() {
				survivor.SetWorth(u.Worth())
			}

			e.units.Unregister(name)
			e.rewriteUnitReferences(name, survivor.Name())
			e.agenda.RewriteUnitRefs(name, survivor.Name())

			logging.Units("duplicate %s collapsed into %s", name, survivor.Name())
			removed++
		}
		if survivor != nil {
			e.units.Reindex(survivor.Name())
		}
	}

	return removed
}

// criterialSignature renders a unit's identity for duplicate detection:
// every populated criterial slot, category-independent. Name-list values
// compare as sorted sets; function values compare by code pointer.
// Returns "" when no criterial slot is populated.
func (e *Engine) criterialSignature(u *concept.Unit) string {
	var parts []string
	for _, slotName := range e.slots.CriterialSlots() {
		value := u.GetProp(slotName)
		if value == nil {
			continue
		}
		meta := e.slots.Get(slotName)
		if meta != nil && meta.DataType == concept.DataTypeFunction {
			parts = append(parts, fmt.Sprintf("%s=fn:%x", slotName, reflect.ValueOf(value).Pointer()))
			continue
		}
		names := u.ListProp(slotName)
		if len(names) == 0 {
			continue
		}
		sorted := append([]string(nil), names...)
		sort.Strings(sorted)
		parts = append(parts, slotName+"="+strings.Join(sorted, ","))
	}
	if len(parts) == 0 {
		return ""
	}
	return strings.Join(parts, "|")
}

// rewriteUnitReferences replaces a removed unit's name with its survivor
// in every unit-valued slot of every remaining unit.
func (e *Engine) rewriteUnitReferences(oldName, newName string) {
	for name, u := range e.units.All() {
		changed := false
		for _, slotName := range u.PropNames() {
			meta := e.slots.Get(slotName)
			if meta == nil || meta.DataType != concept.DataTypeUnit {
				continue
			}
			names := u.ListProp(slotName)
			hit := false
			rewritten := make([]string, 0, len(names))
			seen := make(map[string]bool, len(names))
			for _, n := range names {
				if n == oldName {
					n = newName
					hit = true
				}
				if !seen[n] {
					seen[n] = true
					rewritten = append(rewritten, n)
				}
			}
			if hit {
				u.SetProp(slotName, rewritten)
				changed = true
			}
		}
		if changed {
			e.units.Reindex(name)
			logging.UnitsDebug("rewrote references in %s: %s -> %s", name, oldName, newName)
		}
	}
}
