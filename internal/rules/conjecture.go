package rules

import (
	"fmt"

	"eureka/internal/agenda"
	"eureka/internal/concept"
	"eureka/internal/heuristic"
	"eureka/internal/logging"
)

// highWorthApplication is the worth at which a recorded application counts
// as genuinely valuable.
const highWorthApplication = 800

// conjectureFromWeakApplications notices an operation whose record is
// mostly mediocre: if at most a fifth of its applications are valuable,
// conjecture that a narrower variant would do better and queue the work.
func conjectureFromWeakApplications() *heuristic.Heuristic {
	h := heuristic.New("conjecture-from-weak-applications", 750,
		"If few applications of an operation are valuable, some specialization of it may be more reliably valuable")

	h.PotentiallyRelevant = func(h *heuristic.Heuristic, ctx *heuristic.Context) bool {
		return len(ctx.Unit.Applications()) >= 3
	}
	h.TrulyRelevant = func(h *heuristic.Heuristic, ctx *heuristic.Context) bool {
		apps := ctx.Unit.Applications()
		high := 0
		for _, app := range apps {
			if app.Worth >= highWorthApplication {
				high++
			}
		}
		return high > 0 && high*5 <= len(apps)
	}

	h.Conjecture = func(h *heuristic.Heuristic, ctx *heuristic.Context) bool {
		logging.Heuristics("%s: %s is rarely valuable; conjecturing a specialization would help",
			h.Name(), ctx.Unit.Name())
		return true
	}

	h.AddToAgenda = func(h *heuristic.Heuristic, ctx *heuristic.Context) bool {
		t := agenda.NewTask(scaled(ctx.Unit.Worth(), 1.1), ctx.Unit.Name(), concept.SlotSpecializations,
			fmt.Sprintf("only a few applications of %s are valuable", ctx.Unit.Name())).
			WithSupplemental(agenda.KeyTaskKind, agenda.KindSpecialization)
		ctx.Results.AddNewTask(t)
		return true
	}

	return h
}

// proposeSpecializingValuableUnits keeps proven concepts in play: a
// high-worth target earns a specialization task regardless of what the
// current task was about.
func proposeSpecializingValuableUnits() *heuristic.Heuristic {
	h := heuristic.New("propose-specializing-valuable-units", 700,
		"A unit that has proven valuable deserves specialization attempts")

	h.PotentiallyRelevant = func(h *heuristic.Heuristic, ctx *heuristic.Context) bool {
		return ctx.Unit.Worth() >= 800 && ctx.Task.Kind() != agenda.KindSpecialization
	}

	h.AddToAgenda = func(h *heuristic.Heuristic, ctx *heuristic.Context) bool {
		t := agenda.NewTask(ctx.Unit.Worth()-100, ctx.Unit.Name(), concept.SlotSpecializations,
			fmt.Sprintf("%s has proven valuable (worth %d)", ctx.Unit.Name(), ctx.Unit.Worth())).
			WithSupplemental(agenda.KeyTaskKind, agenda.KindSpecialization)
		ctx.Results.AddNewTask(t)
		return true
	}

	return h
}

// scheduleNewUnits gives every concept created earlier in the same task a
// data-gathering task, so fresh definitions are examined promptly. It must
// register after the defining rules.
func scheduleNewUnits() *heuristic.Heuristic {
	h := heuristic.New("schedule-new-units", 600,
		"A newly created concept needs data gathered about it")

	h.PotentiallyRelevant = func(h *heuristic.Heuristic, ctx *heuristic.Context) bool {
		return len(ctx.Results.NewUnits) > 0
	}

	h.AddToAgenda = func(h *heuristic.Heuristic, ctx *heuristic.Context) bool {
		for _, name := range ctx.Results.NewUnits {
			u := ctx.Units.GetUnit(name)
			if u == nil {
				continue
			}
			t := agenda.NewTask(u.Worth(), name, concept.SlotExamples,
				fmt.Sprintf("%s was just created and needs data", name)).
				WithSupplemental(agenda.KeyTaskKind, agenda.KindGatherData)
			ctx.Results.AddNewTask(t)
		}
		return true
	}

	return h
}
