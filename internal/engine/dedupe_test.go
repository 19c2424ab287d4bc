package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eureka/internal/agenda"
	"eureka/internal/concept"
)

func TestEliminateDuplicatesCollapsesOnCriterialEquality(t *testing.T) {
	e := newTestEngine()

	first := e.Units().CreateUnit("op-a", 500, "math-op")
	first.SetProp(concept.SlotDomain, []string{"number"})
	first.SetProp(concept.SlotRange, []string{"number"})

	second := e.Units().CreateUnit("op-b", 700, "math-op")
	second.SetProp(concept.SlotDomain, []string{"number"})
	second.SetProp(concept.SlotRange, []string{"number"})
	second.SetProp(concept.SlotEnglish, "the later twin")

	// A third unit references the doomed duplicate.
	fan := e.Units().CreateUnit("fan", 500)
	fan.SetProp(concept.SlotInDomainOf, []string{"op-b"})

	// So does a pending task.
	e.Agenda().Add(agenda.NewTask(500, "op-b", concept.SlotExamples, "r"))

	removed := e.EliminateDuplicates()

	assert.Equal(t, 1, removed)
	assert.Nil(t, e.Units().GetUnit("op-b"))
	assert.True(t, e.Units().Tombstoned("op-b"))

	// The earliest registration survives and absorbs non-criterial props.
	survivor := e.Units().GetUnit("op-a")
	require.NotNil(t, survivor)
	assert.Equal(t, 700, survivor.Worth(), "survivor keeps the higher worth")
	assert.Equal(t, "the later twin", survivor.GetProp(concept.SlotEnglish))

	assert.Equal(t, []string{"op-a"}, fan.ListProp(concept.SlotInDomainOf))

	tasks := e.Agenda().Tasks()
	require.Len(t, tasks, 1)
	assert.Equal(t, "op-a", tasks[0].UnitName)
}

func TestEliminateDuplicatesIgnoresUnitsWithoutCriterialSlots(t *testing.T) {
	e := newTestEngine()

	e.Units().CreateUnit("cat-a", 500, "category")
	e.Units().CreateUnit("cat-b", 500, "category")

	assert.Zero(t, e.EliminateDuplicates(),
		"no populated criterial slot means no identity to compare")
	assert.NotNil(t, e.Units().GetUnit("cat-a"))
	assert.NotNil(t, e.Units().GetUnit("cat-b"))
}

func TestEliminateDuplicatesCollapsesAcrossExtraCategories(t *testing.T) {
	e := newTestEngine()

	a := e.Units().CreateUnit("op-a", 500, "math-op")
	a.SetProp(concept.SlotDomain, []string{"number"})

	b := e.Units().CreateUnit("op-b", 500, "math-op", "op")
	b.SetProp(concept.SlotDomain, []string{"number"})

	assert.Equal(t, 1, e.EliminateDuplicates(),
		"one shared category is enough; op-b's extra category does not separate them")
	assert.NotNil(t, e.Units().GetUnit("op-a"))
	assert.Nil(t, e.Units().GetUnit("op-b"))
	assert.True(t, e.Units().Tombstoned("op-b"))
}

func TestEliminateDuplicatesRequiresSharedCategory(t *testing.T) {
	e := newTestEngine()

	a := e.Units().CreateUnit("op", 500, "math-op")
	a.SetProp(concept.SlotDomain, []string{"number"})

	b := e.Units().CreateUnit("pred", 500, "predicate")
	b.SetProp(concept.SlotDomain, []string{"number"})

	assert.Zero(t, e.EliminateDuplicates())
}

func TestEliminateDuplicatesDistinguishesAlgorithms(t *testing.T) {
	e := newTestEngine()

	a := e.Units().CreateUnit("op-a", 500, "math-op")
	a.SetProp(concept.SlotDomain, []string{"number"})
	a.SetProp(concept.SlotAlgorithm, concept.Algorithm(sumArgs))

	b := e.Units().CreateUnit("op-b", 500, "math-op")
	b.SetProp(concept.SlotDomain, []string{"number"})
	b.SetProp(concept.SlotAlgorithm, concept.Algorithm(productArgs))

	assert.Zero(t, e.EliminateDuplicates(),
		"different algorithms mean different concepts")
}
