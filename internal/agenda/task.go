// Package agenda implements the task model and the priority-ordered agenda
// that schedules them: merge-on-duplicate semantics, a minimum-priority
// insertion floor, and stable FIFO ordering among equal priorities.
package agenda

import (
	"fmt"

	"github.com/google/uuid"
)

// Priority bounds for tasks.
const (
	PriorityMin = 0
	PriorityMax = 1000
)

// Status is the outcome of working on a task.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusAborted   Status = "aborted"
)

// Well-known supplemental keys. The supplemental bag is free-form; these are
// the keys the built-in rules use.
const (
	KeyTaskKind     = "task_kind"
	KeySlotToChange = "slot_to_change"
	KeyCreditors    = "creditors"
)

// Task kinds used by the built-in rules.
const (
	KindSpecialization = "specialization"
	KindGeneralization = "generalization"
	KindGatherData     = "gather_data"
	KindConjecture     = "conjecture"
)

// Results is the mutable output sink of a task. Heuristic phases append to
// it while the task runs; callers branch on Status afterwards.
type Results struct {
	Status        Status
	FailureReason string

	NewUnits      []string // Names of units created while working the task
	NewTasks      []*Task  // Tasks to fold back into the agenda
	ModifiedUnits []string // Names of units whose properties changed

	// InitialState is a snapshot of the target unit's properties taken
	// before any heuristic ran, kept for before/after diffing.
	InitialState map[string]interface{}
}

// AddNewUnit records a created unit, duplicate-free.
func (r *Results) AddNewUnit(name string) {
	for _, n := range r.NewUnits {
		if n == name {
			return
		}
	}
	r.NewUnits = append(r.NewUnits, name)
}

// AddModifiedUnit records a modified unit, duplicate-free.
func (r *Results) AddModifiedUnit(name string) {
	for _, n := range r.ModifiedUnits {
		if n == name {
			return
		}
	}
	r.ModifiedUnits = append(r.ModifiedUnits, name)
}

// AddNewTask queues a task for folding back into the agenda after the
// current task completes.
func (r *Results) AddNewTask(t *Task) {
	r.NewTasks = append(r.NewTasks, t)
}

// Task is a scheduled unit of work: work on one slot of one unit at a given
// priority. Reasons are informational justifications; they only influence
// the priority boost when duplicate tasks merge.
type Task struct {
	ID           string
	Priority     int
	UnitName     string
	SlotName     string
	Reasons      []string
	Supplemental map[string]interface{}
	Results      *Results

	// seq is the agenda's insertion sequence, the FIFO tiebreak among
	// equal priorities. Assigned by Agenda.Add.
	seq int64
}

// NewTask creates a pending task. Priority is clamped to [0,1000].
func NewTask(priority int, unitName, slotName string, reasons ...string) *Task {
	if priority < PriorityMin {
		priority = PriorityMin
	}
	if priority > PriorityMax {
		priority = PriorityMax
	}
	return &Task{
		ID:           uuid.NewString(),
		Priority:     priority,
		UnitName:     unitName,
		SlotName:     slotName,
		Reasons:      dedupe(reasons),
		Supplemental: make(map[string]interface{}),
		Results:      &Results{Status: StatusPending},
	}
}

// WithSupplemental sets a supplemental key and returns the task, for
// fluent construction.
func (t *Task) WithSupplemental(key string, value interface{}) *Task {
	t.Supplemental[key] = value
	return t
}

// Kind returns the task kind from the supplemental bag, or "".
func (t *Task) Kind() string {
	kind, _ := t.Supplemental[KeyTaskKind].(string)
	return kind
}

// SlotToChange returns the slot-to-change parameter, or "".
func (t *Task) SlotToChange() string {
	s, _ := t.Supplemental[KeySlotToChange].(string)
	return s
}

// String renders the task for logs.
func (t *Task) String() string {
	return fmt.Sprintf("%s:%s (priority=%d, reasons=%d)", t.UnitName, t.SlotName, t.Priority, len(t.Reasons))
}

// dedupe returns the input with duplicates removed, order preserved.
func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}
