package heuristic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eureka/internal/concept"
)

func TestApplyRunsPhasesInCanonicalOrder(t *testing.T) {
	var ran []Phase
	record := func(phase Phase) PhaseFunc {
		return func(h *Heuristic, ctx *Context) bool {
			ran = append(ran, phase)
			return true
		}
	}

	h := New("order-check", 700, "runs every phase")
	h.AddToAgenda = record(PhaseAddToAgenda) // assigned out of order on purpose
	h.Compute = record(PhaseCompute)
	h.Conjecture = record(PhaseConjecture)

	result := h.Apply(&Context{})

	require.True(t, result.Fired)
	assert.True(t, result.Success)
	assert.Equal(t, 3, result.PhasesRun)
	assert.Equal(t, []Phase{PhaseCompute, PhaseConjecture, PhaseAddToAgenda}, ran)

	assert.Equal(t, 1, h.GetRecord(RecordSlot(PhaseCompute, false)).Count)
	assert.Equal(t, 1, h.SuccessCount())
	assert.Zero(t, h.FailureCount())
}

func TestRelevanceFailureSkipsPhases(t *testing.T) {
	phaseRan := false
	h := New("irrelevant", 700, "")
	h.PotentiallyRelevant = func(h *Heuristic, ctx *Context) bool { return false }
	h.Compute = func(h *Heuristic, ctx *Context) bool {
		phaseRan = true
		return true
	}

	result := h.Apply(&Context{})

	assert.False(t, result.Fired)
	assert.False(t, phaseRan)
	assert.Zero(t, h.SuccessCount(), "a non-firing heuristic records nothing")
	assert.Zero(t, h.FailureCount())
}

func TestPanicInPredicateIsFalse(t *testing.T) {
	h := New("panicky-check", 700, "")
	h.TrulyRelevant = func(h *Heuristic, ctx *Context) bool {
		panic("inspection blew up")
	}

	assert.NotPanics(t, func() {
		result := h.Apply(&Context{})
		assert.False(t, result.Fired)
	})
}

func TestFalsePhaseStopsRemainingPhases(t *testing.T) {
	laterRan := false
	h := New("early-out", 700, "")
	h.Compute = func(h *Heuristic, ctx *Context) bool { return false }
	h.AddToAgenda = func(h *Heuristic, ctx *Context) bool {
		laterRan = true
		return true
	}

	result := h.Apply(&Context{})

	assert.True(t, result.Fired)
	assert.False(t, result.Success)
	assert.Equal(t, PhaseCompute, result.FailedAt)
	assert.False(t, laterRan)

	assert.Equal(t, 1, h.GetRecord(RecordSlot(PhaseCompute, true)).Count)
	assert.Zero(t, h.GetRecord(RecordSlot(PhaseCompute, false)).Count)
	assert.Equal(t, 1, h.FailureCount())
	assert.Zero(t, h.SuccessCount())
}

func TestPanicInPhaseCountsAsFailure(t *testing.T) {
	h := New("panicky-phase", 700, "")
	h.Conjecture = func(h *Heuristic, ctx *Context) bool {
		panic("conjecture exploded")
	}

	assert.NotPanics(t, func() {
		result := h.Apply(&Context{})
		assert.True(t, result.Fired)
		assert.False(t, result.Success)
		assert.Equal(t, PhaseConjecture, result.FailedAt)
	})
	assert.Equal(t, 1, h.GetRecord(RecordSlot(PhaseConjecture, true)).Count)
}

func TestNoPhasesIsLegalAndSucceeds(t *testing.T) {
	h := New("inert", 700, "no phases at all")

	result := h.Apply(&Context{})

	assert.True(t, result.Fired)
	assert.True(t, result.Success)
	assert.Zero(t, result.PhasesRun)
	assert.Empty(t, h.DefinedPhases())
}

func TestRecordSlotsAreNeverInherited(t *testing.T) {
	slots := concept.NewSlotRegistry()
	RegisterRecordSlots(slots)

	parent := New("veteran", 700, "")
	parent.Compute = func(h *Heuristic, ctx *Context) bool { return true }
	parent.Apply(&Context{})
	require.Equal(t, 1, parent.SuccessCount())

	child := concept.NewUnit("rookie", 600)
	child.MergeProps(parent.Unit(), slots, false)

	wrapped := Wrap(child)
	assert.Zero(t, wrapped.SuccessCount(), "specializations start with a clean record")
}

func TestContextAbortFlag(t *testing.T) {
	ctx := &Context{}
	assert.False(t, ctx.AbortRequested())

	h := New("abortive", 700, "")
	h.Compute = func(h *Heuristic, ctx *Context) bool {
		ctx.Abort()
		return true
	}
	h.Apply(ctx)

	assert.True(t, ctx.AbortRequested())
}

func TestRegistryOrderAndUnitRegistration(t *testing.T) {
	units := concept.NewUnitRegistry()
	reg := NewRegistry(units)

	require.True(t, reg.Register(New("alpha", 700, "")))
	require.True(t, reg.Register(New("beta", 600, "")))
	require.True(t, reg.Register(New("gamma", 500, "")))

	assert.Equal(t, []string{"alpha", "beta", "gamma"}, reg.Names())
	assert.Equal(t, []string{"alpha", "beta", "gamma"}, units.ByCategory(CategoryHeuristic),
		"registering a heuristic registers its backing unit")

	// Re-registration replaces callbacks but keeps the position.
	replacement := New("beta", 650, "revised")
	require.True(t, reg.Register(replacement))
	assert.Equal(t, []string{"alpha", "beta", "gamma"}, reg.Names())
	assert.Same(t, replacement, reg.Get("beta"))
}

func TestRegistryRefusesTombstonedName(t *testing.T) {
	units := concept.NewUnitRegistry()
	reg := NewRegistry(units)

	units.CreateUnit("ghost", 500)
	units.Unregister("ghost")

	assert.False(t, reg.Register(New("ghost", 700, "")))
	assert.False(t, reg.Exists("ghost"))
}

func TestRegistryRemove(t *testing.T) {
	units := concept.NewUnitRegistry()
	reg := NewRegistry(units)

	reg.Register(New("keep", 700, ""))
	reg.Register(New("drop", 700, ""))

	assert.True(t, reg.Remove("drop"))
	assert.False(t, reg.Remove("drop"))
	assert.Equal(t, []string{"keep"}, reg.Names())
	assert.Equal(t, 1, reg.Len())

	snap := reg.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, "keep", snap[0].Name())
}
