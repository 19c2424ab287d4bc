package rules

import (
	"eureka/internal/concept"
	"eureka/internal/heuristic"
	"eureka/internal/logging"
)

// garbageWorthCeiling marks a created unit as garbage once its worth has
// decayed this low.
const garbageWorthCeiling = 175

// punishGarbageCreators passes blame upstream: when a created unit has
// decayed into garbage, every creditor pays for it.
func punishGarbageCreators() *heuristic.Heuristic {
	h := heuristic.New("punish-garbage-creators", 700,
		"When a created unit decays into garbage, penalize whatever created it")

	h.PotentiallyRelevant = func(h *heuristic.Heuristic, ctx *heuristic.Context) bool {
		return ctx.Unit.Worth() <= garbageWorthCeiling && len(ctx.Unit.ListProp(concept.SlotCreditors)) > 0
	}

	h.Compute = func(h *heuristic.Heuristic, ctx *heuristic.Context) bool {
		for _, creditorName := range ctx.Unit.ListProp(concept.SlotCreditors) {
			creditor := ctx.Units.GetUnit(creditorName)
			if creditor == nil {
				continue
			}
			creditor.AdjustWorth(-ctx.Tunables.FailureDelta)
			ctx.Results.AddModifiedUnit(creditorName)
			logging.Worth("%s: %s penalized for creating %s, worth now %d",
				h.Name(), creditorName, ctx.Unit.Name(), creditor.Worth())
		}
		return true
	}

	h.DeleteConcepts = func(h *heuristic.Heuristic, ctx *heuristic.Context) bool {
		if ctx.Unit.Worth() > 0 {
			return true
		}
		name := ctx.Unit.Name()
		ctx.Heuristics.Remove(name)
		ctx.Units.Unregister(name)
		logging.Units("%s: %s hit worth 0 and was removed", h.Name(), name)
		return true
	}

	return h
}

// retirementFailureFloor is how many fruitless firings a heuristic gets
// before retirement is considered.
const retirementFailureFloor = 5

// retireHopelessHeuristics is the meta-rule that prunes the rule set
// itself: a heuristic that has fired repeatedly without ever succeeding,
// or that is subsumed by another registered rule, is removed.
func retireHopelessHeuristics() *heuristic.Heuristic {
	h := heuristic.New("retire-hopeless-heuristics", 800,
		"Remove heuristics that never succeed or are subsumed by another rule")

	h.PotentiallyRelevant = func(h *heuristic.Heuristic, ctx *heuristic.Context) bool {
		return ctx.Unit.IsMemberOf(heuristic.CategoryHeuristic) && ctx.Unit.Name() != h.Name()
	}
	h.TrulyRelevant = func(h *heuristic.Heuristic, ctx *heuristic.Context) bool {
		target := ctx.Heuristics.Get(ctx.Unit.Name())
		if target == nil {
			return false
		}
		if hopeless(target) {
			return true
		}
		for _, other := range ctx.Unit.ListProp(concept.SlotSubsumedBy) {
			if ctx.Heuristics.Exists(other) {
				return true
			}
		}
		return false
	}

	h.DeleteConcepts = func(h *heuristic.Heuristic, ctx *heuristic.Context) bool {
		name := ctx.Unit.Name()
		target := ctx.Heuristics.Get(name)
		ctx.Heuristics.Remove(name)
		ctx.Units.Unregister(name)
		logging.Heuristics("%s: retired %s (successes=%d failures=%d)",
			h.Name(), name, target.SuccessCount(), target.FailureCount())
		return true
	}

	return h
}

func hopeless(target *heuristic.Heuristic) bool {
	return target.SuccessCount() == 0 && target.FailureCount() >= retirementFailureFloor
}
