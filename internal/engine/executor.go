package engine

import (
	"go.uber.org/zap"

	"eureka/internal/agenda"
	"eureka/internal/heuristic"
	"eureka/internal/logging"
)

// Failure reasons reported on task results.
const (
	FailUnitNotFound  = "unit not found"
	FailNoneRelevant  = "no relevant heuristics"
	FailAllHeuristics = "every relevant heuristic failed"
)

// WorkOnTask applies every registered heuristic to one task, in
// registration order. A missing target unit is the only fatal
// precondition. The abort flag is polled between heuristics, never
// between the phases of one heuristic. Effects are folded back in
// afterwards: modified units are reindexed, produced tasks go through the
// agenda's merge rules, and the worth economy pays out.
func (e *Engine) WorkOnTask(t *agenda.Task) *agenda.Results {
	e.taskNum++
	res := t.Results

	unit := e.units.GetUnit(t.UnitName)
	if unit == nil {
		res.Status = agenda.StatusFailed
		res.FailureReason = FailUnitNotFound
		logging.Engine("task %d %s: %s", e.taskNum, t, FailUnitNotFound)
		return res
	}

	res.InitialState = unit.Snapshot()

	ctx := &heuristic.Context{
		Unit:         unit,
		SlotName:     t.SlotName,
		Task:         t,
		Priority:     t.Priority,
		Reasons:      t.Reasons,
		Supplemental: t.Supplemental,
		Results:      res,
		Units:        e.units,
		Slots:        e.slots,
		Heuristics:   e.heuristics,
		Agenda:       e.agenda,
		Tunables:     e.tunables(),
		Rand:         e.rand,
		TaskNum:      e.taskNum,
	}

	var firedOK, firedFailed int
	aborted := false
	for _, h := range e.heuristics.Snapshot() {
		applied := h.Apply(ctx)
		if applied.Fired {
			if applied.Success {
				firedOK++
				h.Unit().AdjustWorth(e.cfg.Worth.SuccessDelta)
				logging.WorthDebug("heuristic %s rewarded, worth now %d", h.Name(), h.Worth())
			} else {
				firedFailed++
				h.Unit().AdjustWorth(-e.cfg.Worth.FailureDelta)
				logging.WorthDebug("heuristic %s penalized at %s, worth now %d", h.Name(), applied.FailedAt, h.Worth())
			}
		}
		if ctx.AbortRequested() {
			aborted = true
			logging.Engine("task %d %s: aborted by %s", e.taskNum, t, h.Name())
			break
		}
	}

	switch {
	case aborted:
		res.Status = agenda.StatusAborted
	case firedOK > 0:
		res.Status = agenda.StatusCompleted
	case firedFailed > 0:
		res.Status = agenda.StatusFailed
		res.FailureReason = FailAllHeuristics
	default:
		res.Status = agenda.StatusFailed
		res.FailureReason = FailNoneRelevant
	}

	// Heuristics edit category memberships directly; the index only sees
	// it on reindex.
	for _, name := range res.ModifiedUnits {
		e.units.Reindex(name)
	}

	e.agenda.AddAll(res.NewTasks)

	// Credit assignment for the target itself. A completed task with no
	// effects earns nothing.
	switch res.Status {
	case agenda.StatusCompleted:
		if len(res.NewUnits) > 0 || len(res.ModifiedUnits) > 0 {
			unit.AdjustWorth(e.cfg.Worth.SuccessDelta)
		}
	case agenda.StatusFailed:
		unit.AdjustWorth(-e.cfg.Worth.FailureDelta)
	}

	logging.Engine("task %d %s: %s (fired=%d failed=%d new_units=%d new_tasks=%d)",
		e.taskNum, t, res.Status, firedOK, firedFailed, len(res.NewUnits), len(res.NewTasks))
	e.logger.Debug("task finished",
		zap.Int("task_num", e.taskNum),
		zap.String("unit", t.UnitName),
		zap.String("slot", t.SlotName),
		zap.String("status", string(res.Status)),
		zap.Int("new_units", len(res.NewUnits)),
		zap.Int("new_tasks", len(res.NewTasks)))

	return res
}
