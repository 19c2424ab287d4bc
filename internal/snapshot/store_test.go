package snapshot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eureka/internal/concept"
	"eureka/internal/heuristic"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSaveAndListRuns(t *testing.T) {
	store := newTestStore(t)

	started := time.Now().Add(-time.Minute).UTC()
	id, err := store.SaveRun(RunInfo{
		StartedAt:      started,
		FinishedAt:     time.Now().UTC(),
		Cycles:         3,
		TasksExecuted:  12,
		TasksCompleted: 10,
		TasksFailed:    2,
		UnitsAtStart:   8,
		UnitsAtEnd:     11,
	})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	runs, err := store.ListRuns(10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, id, runs[0].ID)
	assert.Equal(t, 3, runs[0].Cycles)
	assert.Equal(t, 12, runs[0].TasksExecuted)
	assert.Equal(t, 11, runs[0].UnitsAtEnd)
}

func TestSaveUnitsDropsFunctionValues(t *testing.T) {
	store := newTestStore(t)

	units := concept.NewUnitRegistry()
	op := units.CreateUnit("op", 700, "math-op")
	op.SetProp(concept.SlotDomain, []string{"number"})
	op.SetProp(concept.SlotAlgorithm, concept.Algorithm(func(args []interface{}) interface{} { return nil }))

	units.CreateUnit("other", 300, "math-obj")

	id, err := store.SaveRun(RunInfo{StartedAt: time.Now().UTC(), FinishedAt: time.Now().UTC()})
	require.NoError(t, err)
	require.NoError(t, store.SaveUnits(id, units))

	top, err := store.TopUnits(id, 10)
	require.NoError(t, err)
	require.Len(t, top, 2)

	assert.Equal(t, "op", top[0].Name, "units come back ordered by worth")
	assert.Equal(t, 700, top[0].Worth)
	assert.Equal(t, []string{"math-op"}, top[0].Isa)
	assert.Equal(t, "other", top[1].Name)
}

func TestSaveHeuristicRecords(t *testing.T) {
	store := newTestStore(t)

	units := concept.NewUnitRegistry()
	reg := heuristic.NewRegistry(units)

	h := heuristic.New("worker", 700, "")
	h.Compute = func(h *heuristic.Heuristic, ctx *heuristic.Context) bool { return true }
	require.True(t, reg.Register(h))
	h.Apply(&heuristic.Context{})

	id, err := store.SaveRun(RunInfo{StartedAt: time.Now().UTC(), FinishedAt: time.Now().UTC()})
	require.NoError(t, err)
	assert.NoError(t, store.SaveHeuristicRecords(id, reg))
}
