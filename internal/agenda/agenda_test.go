package agenda

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddDropsBelowMinimum(t *testing.T) {
	a := New(150, 10)

	assert.False(t, a.Add(NewTask(100, "u", "slot", "too quiet")))
	assert.Equal(t, 0, a.Len(), "sub-minimum tasks are never stored")

	assert.True(t, a.Add(NewTask(150, "u", "slot", "just loud enough")))
	assert.Equal(t, 1, a.Len())

	m := a.GetMetrics()
	assert.Equal(t, int64(1), m.TotalDropped)
	assert.Equal(t, int64(1), m.TotalAdded)
}

func TestMergeUnionsReasonsAndBoostsPriority(t *testing.T) {
	a := New(150, 10)

	a.Add(NewTask(400, "u", "slot", "reason one"))
	a.Add(NewTask(500, "u", "slot", "reason two", "reason one"))

	require.Equal(t, 1, a.Len(), "same (unit, slot) merges instead of duplicating")

	merged := a.Tasks()[0]
	assert.ElementsMatch(t, []string{"reason one", "reason two"}, merged.Reasons)
	// min(1000, max(400, 500) + 10*2)
	assert.Equal(t, 520, merged.Priority)
}

func TestMergePriorityCapsAt1000(t *testing.T) {
	a := New(150, 10)

	a.Add(NewTask(995, "u", "slot", "r1"))
	a.Add(NewTask(998, "u", "slot", "r2"))

	assert.Equal(t, 1000, a.Tasks()[0].Priority)
}

// End-to-end merge property: a (100) is dropped or stored per the floor,
// then a (900) on the same pair leaves agenda length 1 with a merged
// priority above 900.
func TestMergedPriorityExceedsBothInputs(t *testing.T) {
	a := New(50, 10)

	a.Add(NewTask(100, "u", "slotX", "first reason"))
	a.Add(NewTask(900, "u", "slotX", "second reason"))

	require.Equal(t, 1, a.Len())
	assert.Greater(t, a.Tasks()[0].Priority, 900)
}

func TestNextPopsHighestThenFIFO(t *testing.T) {
	a := New(0, 10)

	taskA := NewTask(500, "a", "s", "r")
	taskB := NewTask(500, "b", "s", "r")
	taskC := NewTask(500, "c", "s", "r")
	high := NewTask(900, "z", "s", "r")

	a.Add(taskA)
	a.Add(taskB)
	a.Add(taskC)
	a.Add(high)

	assert.Equal(t, "z", a.Next().UnitName, "highest priority pops first")
	assert.Equal(t, "a", a.Next().UnitName)
	assert.Equal(t, "b", a.Next().UnitName)
	assert.Equal(t, "c", a.Next().UnitName)
	assert.Nil(t, a.Next())
}

func TestOrderReestablishedAfterMerge(t *testing.T) {
	a := New(0, 100)

	a.Add(NewTask(500, "low", "s", "r"))
	a.Add(NewTask(600, "high", "s", "r"))

	// A merge boosts "low" past "high"; the order must reflect it.
	a.Add(NewTask(550, "low", "s", "another reason"))

	assert.Equal(t, "low", a.Next().UnitName)
	assert.Equal(t, "high", a.Next().UnitName)
}

func TestMergeSupplementalLaterWins(t *testing.T) {
	a := New(0, 10)

	a.Add(NewTask(500, "u", "s", "r").WithSupplemental(KeySlotToChange, "domain"))
	a.Add(NewTask(500, "u", "s", "r").WithSupplemental(KeySlotToChange, "range"))

	assert.Equal(t, "range", a.Tasks()[0].SlotToChange())
}

func TestRewriteUnitRefs(t *testing.T) {
	a := New(0, 10)

	doomed := NewTask(500, "dup", "s", "r")
	doomed.Results.AddNewUnit("dup")
	bystander := NewTask(400, "other", "s", "r")
	bystander.Results.AddModifiedUnit("dup")
	survivorTask := NewTask(300, "survivor", "s", "r")

	a.Add(doomed)
	a.Add(bystander)
	a.Add(survivorTask)

	a.RewriteUnitRefs("dup", "survivor")

	// The retargeted task merged into the existing (survivor, s) task.
	require.Equal(t, 2, a.Len())
	for _, task := range a.Tasks() {
		assert.NotEqual(t, "dup", task.UnitName)
		assert.NotContains(t, task.Results.NewUnits, "dup")
		assert.NotContains(t, task.Results.ModifiedUnits, "dup")
	}
}

func TestRewriteUnitRefsKeepsFIFOPosition(t *testing.T) {
	a := New(0, 10)

	a.Add(NewTask(500, "dup", "s", "r"))
	a.Add(NewTask(500, "later", "s", "r"))

	a.RewriteUnitRefs("dup", "survivor")

	// No (survivor, s) task existed, so the retarget is not a re-add:
	// among equal priorities it still pops before the later task.
	assert.Equal(t, "survivor", a.Next().UnitName)
	assert.Equal(t, "later", a.Next().UnitName)
}

func TestNewTaskClampsPriorityAndDedupesReasons(t *testing.T) {
	task := NewTask(5000, "u", "s", "r", "r", "other")
	assert.Equal(t, 1000, task.Priority)
	assert.Equal(t, []string{"r", "other"}, task.Reasons)

	task = NewTask(-5, "u", "s")
	assert.Equal(t, 0, task.Priority)
}
