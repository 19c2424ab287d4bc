package engine

import (
	"context"

	"go.uber.org/zap"

	"eureka/internal/agenda"
	"eureka/internal/concept"
	"eureka/internal/logging"
)

// RunStats summarizes one run of the discovery loop.
type RunStats struct {
	Cycles            int
	TasksExecuted     int
	TasksCompleted    int
	TasksFailed       int
	TasksAborted      int
	UnitsAtStart      int
	UnitsAtEnd        int
	DuplicatesRemoved int
}

// Run drives the discovery loop until the agenda drains, the cycle limit
// is reached, or the context is done. The context is checked between
// tasks only; a task in flight always finishes.
//
// In eternal mode a drained agenda is refilled with revisit tasks for the
// highest-worth units, so the loop keeps running until the context or the
// cycle limit stops it.
func (e *Engine) Run(ctx context.Context) (*RunStats, error) {
	stats := &RunStats{UnitsAtStart: e.units.Len()}
	defer func() { stats.UnitsAtEnd = e.units.Len() }()

	maxCycles := e.cfg.Run.MaxCycles
	for cycle := 1; maxCycles == 0 || cycle <= maxCycles; cycle++ {
		if !e.agenda.HasTasks() {
			if !e.cfg.Run.EternalMode {
				logging.Engine("agenda drained after %d cycle(s)", stats.Cycles)
				break
			}
			if e.regenerateTasks() == 0 {
				logging.Engine("eternal mode found nothing left to revisit")
				break
			}
		}

		stats.Cycles++
		logging.Engine("cycle %d: %d task(s) pending", cycle, e.agenda.Len())

		for i := 0; i < e.cfg.Run.MaxTasksPerCycle; i++ {
			select {
			case <-ctx.Done():
				e.logger.Info("run stopped", zap.Error(ctx.Err()), zap.Int("tasks", stats.TasksExecuted))
				return stats, ctx.Err()
			default:
			}

			t := e.agenda.Next()
			if t == nil {
				break
			}

			res := e.WorkOnTask(t)
			stats.TasksExecuted++
			switch res.Status {
			case agenda.StatusCompleted:
				stats.TasksCompleted++
			case agenda.StatusAborted:
				stats.TasksAborted++
			default:
				stats.TasksFailed++
			}
		}

		stats.DuplicatesRemoved += e.EliminateDuplicates()
	}

	e.logger.Info("run finished",
		zap.Int("cycles", stats.Cycles),
		zap.Int("tasks", stats.TasksExecuted),
		zap.Int("completed", stats.TasksCompleted),
		zap.Int("failed", stats.TasksFailed),
		zap.Int("duplicates_removed", stats.DuplicatesRemoved))
	return stats, nil
}

// revisitWorthFloor is the minimum worth for a unit to earn an
// eternal-mode revisit task.
const revisitWorthFloor = 500

// regenerateTasks refills a drained agenda in eternal mode: every unit
// still worth revisiting gets an examples-gathering task at a priority
// equal to its worth. Returns the number of tasks actually stored.
func (e *Engine) regenerateTasks() int {
	added := 0
	for _, name := range e.units.Names() {
		u := e.units.GetUnit(name)
		if u == nil || u.Worth() < revisitWorthFloor {
			continue
		}
		t := agenda.NewTask(u.Worth(), name, concept.SlotExamples, "eternal mode revisit").
			WithSupplemental(agenda.KeyTaskKind, agenda.KindGatherData)
		if e.agenda.Add(t) {
			added++
		}
	}
	logging.Engine("eternal mode regenerated %d task(s)", added)
	return added
}
