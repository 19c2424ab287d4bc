package concept

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorthClamping(t *testing.T) {
	u := NewUnit("thing", 1500)
	assert.Equal(t, 1000, u.Worth())

	u.AdjustWorth(-2000)
	assert.Equal(t, 0, u.Worth())

	u.SetWorth(500)
	u.AdjustWorth(50)
	assert.Equal(t, 550, u.Worth())
}

func TestAddPropSetSemantics(t *testing.T) {
	u := NewUnit("set", 500)
	u.AddProp(SlotExamples, "a", false)
	u.AddProp(SlotExamples, "b", false)
	u.AddProp(SlotExamples, "a", false) // duplicate ignored
	assert.Equal(t, []string{"a", "b"}, u.Examples())

	u.AddProp(SlotExamples, "z", true) // to head
	assert.Equal(t, []string{"z", "a", "b"}, u.Examples())
}

func TestRemovePropValue(t *testing.T) {
	u := NewUnit("set", 500)
	u.SetProp(SlotDomain, []string{"a", "b", "c"})
	u.RemovePropValue(SlotDomain, "b")
	assert.Equal(t, []string{"a", "c"}, u.ListProp(SlotDomain))
}

func TestListPropCoercesScalar(t *testing.T) {
	u := NewUnit("scalar", 500)
	u.SetProp(SlotIsa, "category")
	assert.Equal(t, []string{"category"}, u.Isa())

	u.SetProp("number", 42)
	assert.Nil(t, u.ListProp("number"))
}

func TestSnapshotCopiesLists(t *testing.T) {
	u := NewUnit("snap", 500)
	u.SetProp(SlotDomain, []string{"a", "b"})
	u.SetProp("scalar", 7)

	snap := u.Snapshot()
	u.AddProp(SlotDomain, "c", false)

	assert.Equal(t, []string{"a", "b"}, snap[SlotDomain], "snapshot must not alias live lists")
	assert.Equal(t, 7, snap["scalar"])
}

func TestMergeProps(t *testing.T) {
	slots := NewSlotRegistry()

	a := NewUnit("a", 500)
	a.SetProp(SlotDomain, []string{"x", "y"})
	a.SetProp(SlotEnglish, "original description")

	b := NewUnit("b", 900)
	b.SetProp(SlotDomain, []string{"y", "z"})
	b.SetProp(SlotEnglish, "new description")
	b.SetProp(SlotExamples, []string{"e1"})  // dont_copy
	b.SetProp(SlotCreditors, []string{"h"}) // dont_copy

	a.MergeProps(b, slots, false)

	// Name and worth never change.
	assert.Equal(t, "a", a.Name())
	assert.Equal(t, 500, a.Worth())

	// dont_copy slots are skipped.
	assert.False(t, a.HasProp(SlotExamples))
	assert.False(t, a.HasProp(SlotCreditors))

	// List slots present on both sides are unioned, duplicate-free.
	if diff := cmp.Diff([]string{"x", "y", "z"}, a.ListProp(SlotDomain)); diff != "" {
		t.Errorf("domain mismatch (-want +got):\n%s", diff)
	}

	// Scalar slots are overwritten.
	assert.Equal(t, "new description", a.GetProp(SlotEnglish))
}

func TestMergePropsCriterialOnly(t *testing.T) {
	slots := NewSlotRegistry()

	a := NewUnit("a", 500)
	b := NewUnit("b", 500)
	b.SetProp(SlotDomain, []string{"x"})      // criterial
	b.SetProp(SlotEnglish, "some text")       // non-criterial
	b.SetProp("unregistered_slot", "ignored") // unknown slots skipped in criterial mode

	a.MergeProps(b, slots, true)

	assert.Equal(t, []string{"x"}, a.ListProp(SlotDomain))
	assert.False(t, a.HasProp(SlotEnglish))
	assert.False(t, a.HasProp("unregistered_slot"))
}

func TestMergePropsUnionDoesNotAliasSource(t *testing.T) {
	slots := NewSlotRegistry()

	a := NewUnit("a", 500)
	b := NewUnit("b", 500)
	b.SetProp(SlotDomain, []string{"x"})

	a.MergeProps(b, slots, false)
	a.AddProp(SlotDomain, "y", false)

	require.Equal(t, []string{"x"}, b.ListProp(SlotDomain), "merge must copy, not alias")
}

func TestApplyAlgorithm(t *testing.T) {
	u := NewUnit("double", 500)
	assert.Nil(t, u.ApplyAlgorithm([]interface{}{2}), "no algorithm slot yields nil")

	u.SetProp(SlotAlgorithm, Algorithm(func(args []interface{}) interface{} {
		return args[0].(int) * 2
	}))
	assert.Equal(t, 4, u.ApplyAlgorithm([]interface{}{2}))
}

func TestApplicationsRecord(t *testing.T) {
	u := NewUnit("add", 500)
	u.AddApplication(Application{Args: []interface{}{1, 2}, Result: 3, Worth: 800})
	u.AddApplication(Application{Args: []interface{}{2, 3}, Result: 5, Worth: 400})

	apps := u.Applications()
	require.Len(t, apps, 2)
	assert.Equal(t, 3, apps[0].Result)
	assert.Equal(t, 400, apps[1].Worth)
}

func TestLinkWritesBothSides(t *testing.T) {
	slots := NewSlotRegistry()
	parent := NewUnit("parent", 500)
	child := NewUnit("child", 450)

	Link(parent, SlotSpecializations, child, slots)

	assert.Contains(t, parent.Specializations(), "child")
	assert.Contains(t, child.Generalizations(), "parent")

	// Linking again stays duplicate-free.
	Link(parent, SlotSpecializations, child, slots)
	assert.Len(t, parent.Specializations(), 1)
}
