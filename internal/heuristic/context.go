package heuristic

import (
	"math/rand"

	"eureka/internal/agenda"
	"eureka/internal/concept"
)

// Tunables are the worth-economy knobs heuristics consult when they create
// or reward concepts. The executor fills these from configuration.
type Tunables struct {
	SuccessDelta        int
	FailureDelta        int
	SpecializationRatio float64
}

// Context is the working state shared by every heuristic applied to one
// task. Heuristics read the task's target and write their effects through
// the back-references: new units via Units, new tasks via Results or
// Agenda, relevance decisions via the value fields.
type Context struct {
	// Task target
	Unit     *concept.Unit
	SlotName string
	Task     *agenda.Task
	Priority int
	Reasons  []string

	// Free-form parameters carried by the task
	Supplemental map[string]interface{}

	// Results sink; AddToAgenda phases may also write Agenda directly
	Results *agenda.Results

	// Value scratchpad for phase-to-phase handoff within one heuristic
	OldValue  interface{}
	NewValues []interface{}

	// Back-references into the running system
	Units      *concept.UnitRegistry
	Slots      *concept.SlotRegistry
	Heuristics *Registry
	Agenda     *agenda.Agenda

	Tunables Tunables

	// Rand is the seeded source for any stochastic choice, so runs are
	// reproducible under a fixed seed.
	Rand *rand.Rand

	// TaskNum is the 1-based count of tasks executed so far this run.
	TaskNum int

	abortRequested bool
}

// Abort asks the executor to stop working the current task once the
// current heuristic finishes. Remaining heuristics are skipped; remaining
// phases of the aborting heuristic still run.
func (c *Context) Abort() { c.abortRequested = true }

// AbortRequested reports whether any heuristic raised the abort flag.
func (c *Context) AbortRequested() bool { return c.abortRequested }

// TargetSlotValues returns the task's target slot as a name list.
func (c *Context) TargetSlotValues() []string {
	if c.Unit == nil {
		return nil
	}
	return c.Unit.ListProp(c.SlotName)
}
