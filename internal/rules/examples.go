package rules

import (
	"eureka/internal/concept"
	"eureka/internal/heuristic"
	"eureka/internal/logging"
)

// verifyApplications re-runs an operation's algorithm over its recorded
// applications. Applications whose recorded result no longer matches are
// marked worthless; a unit whose record is entirely stale fails the rule.
func verifyApplications() *heuristic.Heuristic {
	h := heuristic.New("verify-applications", 600,
		"Re-run an operation's algorithm over its recorded applications and mark stale ones")

	h.PotentiallyRelevant = func(h *heuristic.Heuristic, ctx *heuristic.Context) bool {
		return ctx.SlotName == concept.SlotExamples && ctx.Unit.HasProp(concept.SlotAlgorithm)
	}
	h.TrulyRelevant = func(h *heuristic.Heuristic, ctx *heuristic.Context) bool {
		return len(ctx.Unit.Applications()) > 0
	}

	h.Compute = func(h *heuristic.Heuristic, ctx *heuristic.Context) bool {
		apps := ctx.Unit.Applications()
		consistent := 0
		changed := false
		for i := range apps {
			got := ctx.Unit.ApplyAlgorithm(apps[i].Args)
			if got == apps[i].Result {
				consistent++
				continue
			}
			if apps[i].Worth != 0 {
				apps[i].Worth = 0
				changed = true
			}
		}
		ctx.Unit.SetProp(concept.SlotApplics, apps)
		if changed {
			ctx.Results.AddModifiedUnit(ctx.Unit.Name())
		}
		ctx.OldValue = len(apps)
		ctx.NewValues = []interface{}{consistent}
		return consistent > 0
	}

	h.PrintToUser = func(h *heuristic.Heuristic, ctx *heuristic.Context) bool {
		logging.Heuristics("%s: %d/%d applications of %s verified",
			h.Name(), ctx.NewValues[0], ctx.OldValue, ctx.Unit.Name())
		return true
	}

	return h
}

// collectExamplesFromSpecializations pulls examples upward: every member
// of a more specific concept is a member of this one.
func collectExamplesFromSpecializations() *heuristic.Heuristic {
	h := heuristic.New("collect-examples-from-specializations", 650,
		"Every example of a specialization is an example of the unit itself")

	h.PotentiallyRelevant = func(h *heuristic.Heuristic, ctx *heuristic.Context) bool {
		return ctx.SlotName == concept.SlotExamples && len(ctx.Unit.Specializations()) > 0
	}

	h.Compute = func(h *heuristic.Heuristic, ctx *heuristic.Context) bool {
		have := make(map[string]bool)
		for _, e := range ctx.Unit.Examples() {
			have[e] = true
		}

		added := 0
		for _, specName := range ctx.Unit.Specializations() {
			spec := ctx.Units.GetUnit(specName)
			if spec == nil {
				continue
			}
			for _, e := range spec.Examples() {
				if !have[e] {
					have[e] = true
					ctx.Unit.AddProp(concept.SlotExamples, e, false)
					added++
				}
			}
		}

		if added == 0 {
			return false
		}
		ctx.Results.AddModifiedUnit(ctx.Unit.Name())
		logging.HeuristicsDebug("%s: lifted %d example(s) into %s", h.Name(), added, ctx.Unit.Name())
		return true
	}

	return h
}

// noticeInterestingApplications rewards a unit whose interestingness
// predicate approves of some recorded result.
func noticeInterestingApplications() *heuristic.Heuristic {
	h := heuristic.New("notice-interesting-applications", 650,
		"Raise the worth of a unit whose results its own interestingness predicate approves")

	h.PotentiallyRelevant = func(h *heuristic.Heuristic, ctx *heuristic.Context) bool {
		_, ok := ctx.Unit.GetProp(concept.SlotInterestingness).(concept.Predicate)
		return ok && len(ctx.Unit.Applications()) > 0
	}

	h.Compute = func(h *heuristic.Heuristic, ctx *heuristic.Context) bool {
		pred := ctx.Unit.GetProp(concept.SlotInterestingness).(concept.Predicate)
		interesting := 0
		for _, app := range ctx.Unit.Applications() {
			if pred(app.Result) {
				interesting++
			}
		}
		if interesting == 0 {
			return false
		}
		ctx.NewValues = []interface{}{interesting}
		return true
	}

	h.Conjecture = func(h *heuristic.Heuristic, ctx *heuristic.Context) bool {
		ctx.Unit.AdjustWorth(ctx.Tunables.SuccessDelta)
		ctx.Results.AddModifiedUnit(ctx.Unit.Name())
		logging.Worth("%s: %d interesting result(s), %s worth now %d",
			h.Name(), ctx.NewValues[0], ctx.Unit.Name(), ctx.Unit.Worth())
		return true
	}

	return h
}
