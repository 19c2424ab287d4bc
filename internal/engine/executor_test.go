package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eureka/internal/agenda"
	"eureka/internal/concept"
	"eureka/internal/config"
	"eureka/internal/heuristic"
)

func newTestEngine() *Engine {
	cfg := config.DefaultConfig()
	cfg.Run.RandomSeed = 42
	return New(cfg)
}

func TestWorkOnTaskUnitNotFound(t *testing.T) {
	e := newTestEngine()

	res := e.WorkOnTask(agenda.NewTask(500, "missing", concept.SlotExamples, "r"))

	assert.Equal(t, agenda.StatusFailed, res.Status)
	assert.Equal(t, FailUnitNotFound, res.FailureReason)
}

func TestWorkOnTaskNoRelevantHeuristicsPenalizesTarget(t *testing.T) {
	e := newTestEngine()
	u := e.Units().CreateUnit("lonely", 500)

	res := e.WorkOnTask(agenda.NewTask(500, "lonely", concept.SlotExamples, "r"))

	assert.Equal(t, agenda.StatusFailed, res.Status)
	assert.Equal(t, FailNoneRelevant, res.FailureReason)
	assert.Equal(t, 480, u.Worth(), "failed tasks cost the target FailureDelta")
}

func TestWorkOnTaskRewardsOnEffects(t *testing.T) {
	e := newTestEngine()
	u := e.Units().CreateUnit("target", 500)

	h := heuristic.New("modifier", 700, "")
	h.Compute = func(h *heuristic.Heuristic, ctx *heuristic.Context) bool {
		ctx.Unit.SetProp(concept.SlotEnglish, "touched")
		ctx.Results.AddModifiedUnit(ctx.Unit.Name())
		return true
	}
	require.True(t, e.Heuristics().Register(h))

	res := e.WorkOnTask(agenda.NewTask(500, "target", concept.SlotExamples, "r"))

	assert.Equal(t, agenda.StatusCompleted, res.Status)
	assert.Equal(t, []string{"target"}, res.ModifiedUnits)
	assert.Equal(t, 550, u.Worth(), "effects earn the target SuccessDelta")
	assert.Equal(t, 750, h.Worth(), "the firing heuristic earns SuccessDelta")
	assert.NotNil(t, res.InitialState)
}

func TestWorkOnTaskCompletedWithoutEffectsEarnsNothing(t *testing.T) {
	e := newTestEngine()
	u := e.Units().CreateUnit("target", 500)

	h := heuristic.New("observer", 700, "")
	h.Compute = func(h *heuristic.Heuristic, ctx *heuristic.Context) bool { return true }
	e.Heuristics().Register(h)

	res := e.WorkOnTask(agenda.NewTask(500, "target", concept.SlotExamples, "r"))

	assert.Equal(t, agenda.StatusCompleted, res.Status)
	assert.Equal(t, 500, u.Worth())
}

func TestWorkOnTaskAbortSkipsRemainingHeuristics(t *testing.T) {
	e := newTestEngine()
	e.Units().CreateUnit("target", 500)

	aborter := heuristic.New("aborter", 700, "")
	aborter.Compute = func(h *heuristic.Heuristic, ctx *heuristic.Context) bool {
		ctx.Abort()
		return true
	}
	e.Heuristics().Register(aborter)

	laterRan := false
	later := heuristic.New("later", 700, "")
	later.Compute = func(h *heuristic.Heuristic, ctx *heuristic.Context) bool {
		laterRan = true
		return true
	}
	e.Heuristics().Register(later)

	res := e.WorkOnTask(agenda.NewTask(500, "target", concept.SlotExamples, "r"))

	assert.Equal(t, agenda.StatusAborted, res.Status)
	assert.False(t, laterRan, "abort is polled between heuristics")
}

func TestWorkOnTaskFoldsProducedTasksThroughMergeRules(t *testing.T) {
	e := newTestEngine()
	e.Units().CreateUnit("target", 500)

	h := heuristic.New("spawner", 700, "")
	h.AddToAgenda = func(h *heuristic.Heuristic, ctx *heuristic.Context) bool {
		ctx.Results.AddNewTask(agenda.NewTask(400, "target", concept.SlotSpecializations, "looks promising"))
		ctx.Results.AddNewTask(agenda.NewTask(450, "target", concept.SlotSpecializations, "another reason"))
		ctx.Results.AddModifiedUnit("target")
		return true
	}
	e.Heuristics().Register(h)

	e.WorkOnTask(agenda.NewTask(500, "target", concept.SlotExamples, "r"))

	require.Equal(t, 1, e.Agenda().Len(), "produced duplicates merge on the way in")
	merged := e.Agenda().Tasks()[0]
	assert.Equal(t, concept.SlotSpecializations, merged.SlotName)
	assert.Greater(t, merged.Priority, 450)
}

func TestWorkOnTaskReindexesModifiedUnits(t *testing.T) {
	e := newTestEngine()
	e.Units().CreateUnit("target", 500)

	h := heuristic.New("recategorizer", 700, "")
	h.Compute = func(h *heuristic.Heuristic, ctx *heuristic.Context) bool {
		ctx.Unit.AddProp(concept.SlotIsa, "math-op", false)
		ctx.Results.AddModifiedUnit(ctx.Unit.Name())
		return true
	}
	e.Heuristics().Register(h)

	e.WorkOnTask(agenda.NewTask(500, "target", concept.SlotExamples, "r"))

	assert.Equal(t, []string{"target"}, e.Units().ByCategory("math-op"),
		"category index is refreshed after the task")
}

func TestWorkOnTaskAllHeuristicsFailed(t *testing.T) {
	e := newTestEngine()
	e.Units().CreateUnit("target", 500)

	h := heuristic.New("flaky", 700, "")
	h.Compute = func(h *heuristic.Heuristic, ctx *heuristic.Context) bool { return false }
	e.Heuristics().Register(h)

	res := e.WorkOnTask(agenda.NewTask(500, "target", concept.SlotExamples, "r"))

	assert.Equal(t, agenda.StatusFailed, res.Status)
	assert.Equal(t, FailAllHeuristics, res.FailureReason)
	assert.Equal(t, 680, h.Worth(), "a failing heuristic pays FailureDelta")
}
