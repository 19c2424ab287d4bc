package rules

import (
	"fmt"

	"eureka/internal/agenda"
	"eureka/internal/concept"
	"eureka/internal/heuristic"
	"eureka/internal/logging"
)

// chooseSlotToGeneralize mirrors chooseSlotToSpecialize for the widening
// direction: a generalization task with no chosen slot gets one.
func chooseSlotToGeneralize() *heuristic.Heuristic {
	h := heuristic.New("choose-slot-to-generalize", 700,
		"If asked to generalize a unit with no slot chosen, pick a criterial slot at random")

	h.PotentiallyRelevant = func(h *heuristic.Heuristic, ctx *heuristic.Context) bool {
		return ctx.Task.Kind() == agenda.KindGeneralization && ctx.Task.SlotToChange() == ""
	}
	h.TrulyRelevant = func(h *heuristic.Heuristic, ctx *heuristic.Context) bool {
		return len(widenableSlots(ctx)) > 0
	}

	h.Compute = func(h *heuristic.Heuristic, ctx *heuristic.Context) bool {
		candidates := widenableSlots(ctx)
		ctx.OldValue = candidates[ctx.Rand.Intn(len(candidates))]
		return true
	}

	h.AddToAgenda = func(h *heuristic.Heuristic, ctx *heuristic.Context) bool {
		chosen := ctx.OldValue.(string)
		follow := agenda.NewTask(scaled(ctx.Priority, 0.9), ctx.Unit.Name(), concept.SlotGeneralizations,
			fmt.Sprintf("%s chose slot %s of %s", h.Name(), chosen, ctx.Unit.Name())).
			WithSupplemental(agenda.KeyTaskKind, agenda.KindGeneralization).
			WithSupplemental(agenda.KeySlotToChange, chosen)
		ctx.Results.AddNewTask(follow)
		return true
	}

	return h
}

// generalizeChosenSlot widens the chosen slot: the new unit's value list is
// the union of the parent's values with what the parent's generalizations
// hold in the same slot. No growth means the rule fails.
func generalizeChosenSlot() *heuristic.Heuristic {
	h := heuristic.New("generalize-chosen-slot", 700,
		"Create a generalization of a unit by widening one criterial slot")

	h.PotentiallyRelevant = func(h *heuristic.Heuristic, ctx *heuristic.Context) bool {
		return ctx.Task.Kind() == agenda.KindGeneralization && ctx.Task.SlotToChange() != ""
	}
	h.TrulyRelevant = func(h *heuristic.Heuristic, ctx *heuristic.Context) bool {
		return len(ctx.Unit.ListProp(ctx.Task.SlotToChange())) > 0
	}

	h.Compute = func(h *heuristic.Heuristic, ctx *heuristic.Context) bool {
		slotToChange := ctx.Task.SlotToChange()
		current := ctx.Unit.ListProp(slotToChange)

		widened := append([]string(nil), current...)
		seen := make(map[string]bool, len(widened))
		for _, v := range widened {
			seen[v] = true
		}
		for _, genlName := range ctx.Unit.Generalizations() {
			genl := ctx.Units.GetUnit(genlName)
			if genl == nil {
				continue
			}
			for _, v := range genl.ListProp(slotToChange) {
				if !seen[v] {
					seen[v] = true
					widened = append(widened, v)
				}
			}
		}

		if len(widened) == len(current) {
			return false
		}
		ctx.OldValue = current
		ctx.NewValues = []interface{}{widened}
		return true
	}

	h.DefineConcepts = func(h *heuristic.Heuristic, ctx *heuristic.Context) bool {
		widened := ctx.NewValues[0].([]string)
		parent := ctx.Unit
		slotToChange := ctx.Task.SlotToChange()

		name := uniqueChildName(ctx, parent.Name(), "genl")
		worth := scaled(parent.Worth(), ctx.Tunables.SpecializationRatio)
		child := ctx.Units.CreateUnit(name, worth, parent.Isa()...)
		if child == nil {
			return false
		}

		child.MergeProps(parent, ctx.Slots, false)
		child.SetProp(slotToChange, widened)
		child.SetProp(concept.SlotEnglish,
			fmt.Sprintf("Generalization of %s with %s widened to %v", parent.Name(), slotToChange, widened))
		child.AddProp(concept.SlotCreditors, h.Name(), false)
		concept.Link(child, concept.SlotSpecializations, parent, ctx.Slots)

		ctx.Results.AddNewUnit(name)
		ctx.Results.AddModifiedUnit(parent.Name())
		return true
	}

	h.PrintToUser = func(h *heuristic.Heuristic, ctx *heuristic.Context) bool {
		logging.Heuristics("%s: widened %s.%s from %v to %v",
			h.Name(), ctx.Unit.Name(), ctx.Task.SlotToChange(), ctx.OldValue, ctx.NewValues[0])
		return true
	}

	return h
}

// widenableSlots returns the criterial slots that hold at least one name;
// whether widening actually grows them is settled in the compute phase.
func widenableSlots(ctx *heuristic.Context) []string {
	var out []string
	for _, name := range ctx.Slots.CriterialSlots() {
		meta := ctx.Slots.Get(name)
		if meta != nil && meta.DataType == concept.DataTypeFunction {
			continue
		}
		if len(ctx.Unit.ListProp(name)) > 0 {
			out = append(out, name)
		}
	}
	return out
}
