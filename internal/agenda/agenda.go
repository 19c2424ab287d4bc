package agenda

import (
	"sort"
	"sync"

	"eureka/internal/logging"
)

// Agenda is the priority-ordered collection of pending tasks. Ordering is a
// total order: priority descending, then insertion sequence ascending, and
// it is re-established after every insertion or merge.
//
// Two tasks sharing (unit, slot) are merged rather than duplicated: their
// reason sets are unioned and the surviving priority becomes
// min(1000, max(old, new) + reasonBonus*distinctReasons). The reference
// system carried two incompatible bonus formulas; this implementation
// standardizes on a flat per-distinct-reason bonus.
type Agenda struct {
	mu          sync.RWMutex
	tasks       []*Task
	minPriority int
	reasonBonus int
	nextSeq     int64

	// Counters for observability
	totalAdded   int64
	totalMerged  int64
	totalDropped int64
}

// New creates an agenda with the given insertion floor and merge bonus.
func New(minPriority, reasonBonus int) *Agenda {
	return &Agenda{
		minPriority: minPriority,
		reasonBonus: reasonBonus,
	}
}

// MinPriority returns the insertion floor.
func (a *Agenda) MinPriority() int { return a.minPriority }

// Add inserts a task, returning false when it was dropped (below the
// minimum priority) and true when it was stored or merged. Sub-minimum
// tasks are rejected silently and never stored.
func (a *Agenda) Add(t *Task) bool {
	if t.Priority < a.minPriority {
		a.mu.Lock()
		a.totalDropped++
		a.mu.Unlock()
		logging.AgendaDebug("dropped task %s: priority below minimum %d", t, a.minPriority)
		return false
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	for _, existing := range a.tasks {
		if existing.UnitName == t.UnitName && existing.SlotName == t.SlotName {
			a.mergeLocked(existing, t)
			a.sortLocked()
			return true
		}
	}

	a.nextSeq++
	t.seq = a.nextSeq
	a.tasks = append(a.tasks, t)
	a.totalAdded++
	a.sortLocked()
	logging.AgendaDebug("added task %s", t)
	return true
}

// AddAll inserts a batch of tasks through Add, so merge rules apply.
func (a *Agenda) AddAll(tasks []*Task) {
	for _, t := range tasks {
		a.Add(t)
	}
}

// mergeLocked folds the new task into the existing one: reasons unioned,
// priority boosted by the distinct-reason count, capped at 1000.
func (a *Agenda) mergeLocked(existing, incoming *Task) {
	existing.Reasons = dedupe(append(existing.Reasons, incoming.Reasons...))

	base := existing.Priority
	if incoming.Priority > base {
		base = incoming.Priority
	}
	merged := base + a.reasonBonus*len(existing.Reasons)
	if merged > PriorityMax {
		merged = PriorityMax
	}
	existing.Priority = merged

	// Later supplemental values win, matching scalar-overwrite semantics.
	for k, v := range incoming.Supplemental {
		existing.Supplemental[k] = v
	}

	a.totalMerged++
	logging.AgendaDebug("merged task into %s", existing)
}

// sortLocked re-establishes the total order: priority descending, insertion
// sequence ascending among equals.
func (a *Agenda) sortLocked() {
	sort.Slice(a.tasks, func(i, j int) bool {
		if a.tasks[i].Priority != a.tasks[j].Priority {
			return a.tasks[i].Priority > a.tasks[j].Priority
		}
		return a.tasks[i].seq < a.tasks[j].seq
	})
}

// Next pops the highest-priority task; equal priorities pop in original
// insertion order. Returns nil when the agenda is empty.
func (a *Agenda) Next() *Task {
	a.mu.Lock()
	defer a.mu.Unlock()

	if len(a.tasks) == 0 {
		return nil
	}
	t := a.tasks[0]
	a.tasks = a.tasks[1:]
	return t
}

// Len returns the number of pending tasks.
func (a *Agenda) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.tasks)
}

// HasTasks reports whether any task is pending.
func (a *Agenda) HasTasks() bool {
	return a.Len() > 0
}

// Tasks returns a copy of the pending tasks in scheduling order.
func (a *Agenda) Tasks() []*Task {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]*Task(nil), a.tasks...)
}

// RewriteUnitRefs replaces references to a removed unit name with its
// duplicate-elimination survivor: task targets and any result lists that
// mention the old name. A retargeted task keeps its insertion sequence,
// so its FIFO position among equal priorities is unchanged, unless the
// new target collides with a pending (unit, slot) pair, which merges.
func (a *Agenda) RewriteUnitRefs(oldName, newName string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	var retargeted []*Task
	kept := a.tasks[:0]
	for _, t := range a.tasks {
		rewriteList(t.Results.NewUnits, oldName, newName)
		rewriteList(t.Results.ModifiedUnits, oldName, newName)
		if t.UnitName == oldName {
			t.UnitName = newName
			retargeted = append(retargeted, t)
			continue
		}
		kept = append(kept, t)
	}
	a.tasks = kept

	for _, t := range retargeted {
		merged := false
		for _, existing := range a.tasks {
			if existing.UnitName == t.UnitName && existing.SlotName == t.SlotName {
				a.mergeLocked(existing, t)
				merged = true
				break
			}
		}
		if !merged {
			a.tasks = append(a.tasks, t)
		}
	}
	a.sortLocked()

	if len(retargeted) > 0 {
		logging.Agenda("rewrote %d task(s) from %s to %s", len(retargeted), oldName, newName)
	}
}

func rewriteList(list []string, oldName, newName string) {
	for i, v := range list {
		if v == oldName {
			list[i] = newName
		}
	}
}

// Metrics is a point-in-time view of agenda counters.
type Metrics struct {
	Pending      int
	TotalAdded   int64
	TotalMerged  int64
	TotalDropped int64
}

// GetMetrics returns current agenda counters.
func (a *Agenda) GetMetrics() Metrics {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return Metrics{
		Pending:      len(a.tasks),
		TotalAdded:   a.totalAdded,
		TotalMerged:  a.totalMerged,
		TotalDropped: a.totalDropped,
	}
}
