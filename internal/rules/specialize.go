package rules

import (
	"fmt"
	"math/rand"

	"eureka/internal/agenda"
	"eureka/internal/concept"
	"eureka/internal/heuristic"
	"eureka/internal/logging"
)

// chooseSlotToSpecialize handles a specialization task that has not yet
// decided which slot to narrow: it picks a populated criterial slot at
// random and queues a follow-up task carrying the choice.
func chooseSlotToSpecialize() *heuristic.Heuristic {
	h := heuristic.New("choose-slot-to-specialize", 700,
		"If asked to specialize a unit with no slot chosen, pick a criterial slot at random")

	h.PotentiallyRelevant = func(h *heuristic.Heuristic, ctx *heuristic.Context) bool {
		return ctx.Task.Kind() == agenda.KindSpecialization && ctx.Task.SlotToChange() == ""
	}
	h.TrulyRelevant = func(h *heuristic.Heuristic, ctx *heuristic.Context) bool {
		return len(narrowableSlots(ctx)) > 0
	}

	h.Compute = func(h *heuristic.Heuristic, ctx *heuristic.Context) bool {
		candidates := narrowableSlots(ctx)
		ctx.OldValue = candidates[ctx.Rand.Intn(len(candidates))]
		return true
	}

	h.AddToAgenda = func(h *heuristic.Heuristic, ctx *heuristic.Context) bool {
		chosen := ctx.OldValue.(string)
		follow := agenda.NewTask(scaled(ctx.Priority, 0.9), ctx.Unit.Name(), concept.SlotSpecializations,
			fmt.Sprintf("%s chose slot %s of %s", h.Name(), chosen, ctx.Unit.Name())).
			WithSupplemental(agenda.KeyTaskKind, agenda.KindSpecialization).
			WithSupplemental(agenda.KeySlotToChange, chosen)
		ctx.Results.AddNewTask(follow)
		return true
	}

	return h
}

// specializeChosenSlot carries out the narrowing: the chosen slot's value
// list is replaced by a strict non-empty subset on a brand-new unit, which
// inherits everything copyable from its parent at a discounted worth.
func specializeChosenSlot() *heuristic.Heuristic {
	h := heuristic.New("specialize-chosen-slot", 700,
		"Create a specialization of a unit by shrinking one criterial slot to a strict subset")

	h.PotentiallyRelevant = func(h *heuristic.Heuristic, ctx *heuristic.Context) bool {
		return ctx.Task.Kind() == agenda.KindSpecialization && ctx.Task.SlotToChange() != ""
	}
	h.TrulyRelevant = func(h *heuristic.Heuristic, ctx *heuristic.Context) bool {
		return len(ctx.Unit.ListProp(ctx.Task.SlotToChange())) >= 2
	}

	h.Compute = func(h *heuristic.Heuristic, ctx *heuristic.Context) bool {
		values := ctx.Unit.ListProp(ctx.Task.SlotToChange())
		subset := strictSubset(values, ctx.Rand)
		if subset == nil {
			return false
		}
		ctx.OldValue = values
		ctx.NewValues = []interface{}{subset}
		return true
	}

	h.DefineConcepts = func(h *heuristic.Heuristic, ctx *heuristic.Context) bool {
		subset := ctx.NewValues[0].([]string)
		parent := ctx.Unit
		slotToChange := ctx.Task.SlotToChange()

		name := uniqueChildName(ctx, parent.Name(), "spec")
		worth := scaled(parent.Worth(), ctx.Tunables.SpecializationRatio)
		child := ctx.Units.CreateUnit(name, worth, parent.Isa()...)
		if child == nil {
			return false
		}

		child.MergeProps(parent, ctx.Slots, false)
		child.SetProp(slotToChange, subset)
		child.SetProp(concept.SlotEnglish,
			fmt.Sprintf("Specialization of %s with %s narrowed to %v", parent.Name(), slotToChange, subset))
		child.AddProp(concept.SlotCreditors, h.Name(), false)
		concept.Link(parent, concept.SlotSpecializations, child, ctx.Slots)

		ctx.Results.AddNewUnit(name)
		ctx.Results.AddModifiedUnit(parent.Name())
		return true
	}

	h.PrintToUser = func(h *heuristic.Heuristic, ctx *heuristic.Context) bool {
		logging.Heuristics("%s: narrowed %s.%s from %v to %v",
			h.Name(), ctx.Unit.Name(), ctx.Task.SlotToChange(), ctx.OldValue, ctx.NewValues[0])
		return true
	}

	return h
}

// narrowableSlots returns the criterial slots of the target that hold at
// least two names, so a strict non-empty subset exists.
func narrowableSlots(ctx *heuristic.Context) []string {
	var out []string
	for _, name := range ctx.Slots.CriterialSlots() {
		meta := ctx.Slots.Get(name)
		if meta != nil && meta.DataType == concept.DataTypeFunction {
			continue
		}
		if len(ctx.Unit.ListProp(name)) >= 2 {
			out = append(out, name)
		}
	}
	return out
}

// strictSubset keeps a random strict non-empty subset of values, order
// preserved. Returns nil when no such subset exists.
func strictSubset(values []string, r *rand.Rand) []string {
	if len(values) < 2 {
		return nil
	}
	keep := 1 + r.Intn(len(values)-1)

	picked := make(map[int]bool, keep)
	for len(picked) < keep {
		picked[r.Intn(len(values))] = true
	}

	out := make([]string, 0, keep)
	for i, v := range values {
		if picked[i] {
			out = append(out, v)
		}
	}
	return out
}

// uniqueChildName derives a fresh unit name from a parent, skipping names
// that exist or are tombstoned.
func uniqueChildName(ctx *heuristic.Context, parent, tag string) string {
	for i := 1; ; i++ {
		name := fmt.Sprintf("%s-%s-%d", parent, tag, i)
		if !ctx.Units.Exists(name) && !ctx.Units.Tombstoned(name) {
			return name
		}
	}
}

// scaled multiplies and truncates, for priority and worth discounts.
func scaled(v int, ratio float64) int {
	return int(float64(v) * ratio)
}
