package concept

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateUnitCollisionReturnsExisting(t *testing.T) {
	r := NewUnitRegistry()

	first := r.CreateUnit("add", 500, "math-op")
	first.SetProp(SlotEnglish, "addition")

	second := r.CreateUnit("add", 900, "something-else")
	assert.Same(t, first, second, "name collision returns the existing unit unchanged")
	assert.Equal(t, 500, second.Worth())
	assert.Equal(t, []string{"math-op"}, second.Isa())
}

func TestTombstonedNameNeverReregisters(t *testing.T) {
	r := NewUnitRegistry()
	r.CreateUnit("doomed", 500, "category")

	r.Unregister("doomed")
	assert.True(t, r.Tombstoned("doomed"))
	assert.Nil(t, r.GetUnit("doomed"))

	assert.False(t, r.Register(NewUnit("doomed", 500)), "register must refuse a tombstoned name")
	assert.Nil(t, r.CreateUnit("doomed", 500), "create must refuse a tombstoned name")
	assert.False(t, r.Exists("doomed"))
}

func TestUnregisterRemovesFromCategoryIndex(t *testing.T) {
	r := NewUnitRegistry()
	r.CreateUnit("h1", 700, "heuristic")
	r.CreateUnit("h2", 700, "heuristic")

	require.Equal(t, []string{"h1", "h2"}, r.ByCategory("heuristic"))

	r.Unregister("h1")
	assert.Equal(t, []string{"h2"}, r.ByCategory("heuristic"))
}

func TestReindexPicksUpIsaEdits(t *testing.T) {
	r := NewUnitRegistry()
	u := r.CreateUnit("chameleon", 500, "category")

	// A direct isa edit is invisible until the unit is reindexed.
	u.AddProp(SlotIsa, "heuristic", false)
	assert.Empty(t, r.ByCategory("heuristic"))

	r.Reindex("chameleon")
	assert.Equal(t, []string{"chameleon"}, r.ByCategory("heuristic"))
	assert.Equal(t, []string{"chameleon"}, r.ByCategory("category"))

	// Removing a category also takes effect on reindex.
	u.RemovePropValue(SlotIsa, "category")
	r.Reindex("chameleon")
	assert.Empty(t, r.ByCategory("category"))
}

func TestRegistrationSeqOrdersSurvivors(t *testing.T) {
	r := NewUnitRegistry()
	r.CreateUnit("first", 500)
	r.CreateUnit("second", 500)

	assert.Less(t, r.RegistrationSeq("first"), r.RegistrationSeq("second"))
	assert.Zero(t, r.RegistrationSeq("absent"))
}

func TestRegisterOverwritesAndReindexes(t *testing.T) {
	r := NewUnitRegistry()
	r.CreateUnit("op", 500, "math-op")

	replacement := NewUnit("op", 600)
	replacement.SetProp(SlotIsa, []string{"heuristic"})
	require.True(t, r.Register(replacement))

	assert.Empty(t, r.ByCategory("math-op"))
	assert.Equal(t, []string{"op"}, r.ByCategory("heuristic"))
	assert.Equal(t, 600, r.GetUnit("op").Worth())
}
