// Package heuristic implements the heuristic-application protocol: a
// heuristic is a unit specialized as an executable rule, with two relevance
// predicates, an ordered set of optional effect phases, and per-phase
// performance records stored back into its own property bag so that other
// heuristics can treat its track record as ordinary data.
package heuristic

import (
	"time"

	"eureka/internal/concept"
	"eureka/internal/logging"
)

// Phase identifies one effect phase. Phases run in canonical order; each is
// optional, and a heuristic with no phases at all is legal and inert.
type Phase string

const (
	PhaseCompute        Phase = "compute"
	PhasePrintToUser    Phase = "print_to_user"
	PhaseConjecture     Phase = "conjecture"
	PhaseDefineConcepts Phase = "define_concepts"
	PhaseDeleteConcepts Phase = "delete_concepts"
	PhaseAddToAgenda    Phase = "add_to_agenda"
)

// PhaseOrder is the canonical execution order.
var PhaseOrder = []Phase{
	PhaseCompute,
	PhasePrintToUser,
	PhaseConjecture,
	PhaseDefineConcepts,
	PhaseDeleteConcepts,
	PhaseAddToAgenda,
}

// PredicateFunc is a relevance check. A panic inside one is treated
// identically to returning false.
type PredicateFunc func(h *Heuristic, ctx *Context) bool

// PhaseFunc is an effect phase. Returning false (or panicking) stops the
// remaining phases of the same heuristic only; sibling heuristics and the
// task itself are unaffected.
type PhaseFunc func(h *Heuristic, ctx *Context) bool

// Record accumulates elapsed time and invocation count for one outcome of
// one phase. Success and failure are tracked separately.
type Record struct {
	Elapsed time.Duration
	Count   int
}

// RecordSlot returns the property name under which a phase record is
// stored on the heuristic's unit.
func RecordSlot(phase Phase, failed bool) string {
	name := "record:" + string(phase)
	if failed {
		name += ":failed"
	}
	return name
}

// Overall record slot names.
const (
	SlotRecordOverall       = "record:overall"
	SlotRecordOverallFailed = "record:overall:failed"
)

// RegisterRecordSlots registers the record slot metadata (dont_copy, so a
// specialization of a heuristic starts with a clean slate) in a slot
// registry. Call once at bootstrap.
func RegisterRecordSlots(slots *concept.SlotRegistry) {
	names := []string{SlotRecordOverall, SlotRecordOverallFailed}
	for _, phase := range PhaseOrder {
		names = append(names, RecordSlot(phase, false), RecordSlot(phase, true))
	}
	for _, name := range names {
		slots.Register(&concept.Slot{
			Name:        name,
			DontCopy:    true,
			Description: "Performance history; never inherited",
		})
	}
}

// Heuristic is a unit subtype: an executable rule wrapping a backing unit
// registered under the "heuristic" category. Its logic is an explicit
// callback record set at registration time, not executable text stored in
// a slot.
type Heuristic struct {
	unit *concept.Unit

	// Relevance predicates; a nil predicate passes.
	PotentiallyRelevant PredicateFunc
	TrulyRelevant       PredicateFunc

	// Optional effect phases, run in PhaseOrder.
	Compute        PhaseFunc
	PrintToUser    PhaseFunc
	Conjecture     PhaseFunc
	DefineConcepts PhaseFunc
	DeleteConcepts PhaseFunc
	AddToAgenda    PhaseFunc
}

// CategoryHeuristic is the isa category shared by all heuristics.
const CategoryHeuristic = "heuristic"

// New creates a heuristic and its backing unit. The unit carries the
// category, description, and zeroed performance records.
func New(name string, worth int, english string) *Heuristic {
	u := concept.NewUnit(name, worth)
	u.SetProp(concept.SlotIsa, []string{CategoryHeuristic})
	if english != "" {
		u.SetProp(concept.SlotEnglish, english)
	}
	h := &Heuristic{unit: u}
	h.initRecords()
	return h
}

// Wrap builds a heuristic around an existing unit, adding the heuristic
// category if missing. Used when specializing one heuristic into another.
func Wrap(u *concept.Unit) *Heuristic {
	u.AddProp(concept.SlotIsa, CategoryHeuristic, false)
	h := &Heuristic{unit: u}
	h.initRecords()
	return h
}

func (h *Heuristic) initRecords() {
	slots := []string{SlotRecordOverall, SlotRecordOverallFailed}
	for _, phase := range PhaseOrder {
		slots = append(slots, RecordSlot(phase, false), RecordSlot(phase, true))
	}
	for _, slot := range slots {
		if !h.unit.HasProp(slot) {
			h.unit.SetProp(slot, Record{})
		}
	}
}

// Unit returns the backing unit.
func (h *Heuristic) Unit() *concept.Unit { return h.unit }

// Name returns the heuristic's name.
func (h *Heuristic) Name() string { return h.unit.Name() }

// Worth returns the backing unit's worth.
func (h *Heuristic) Worth() int { return h.unit.Worth() }

// phaseFunc maps a Phase to its callback, nil when undefined.
func (h *Heuristic) phaseFunc(phase Phase) PhaseFunc {
	switch phase {
	case PhaseCompute:
		return h.Compute
	case PhasePrintToUser:
		return h.PrintToUser
	case PhaseConjecture:
		return h.Conjecture
	case PhaseDefineConcepts:
		return h.DefineConcepts
	case PhaseDeleteConcepts:
		return h.DeleteConcepts
	case PhaseAddToAgenda:
		return h.AddToAgenda
	default:
		return nil
	}
}

// DefinedPhases returns the phases with callbacks, in canonical order.
func (h *Heuristic) DefinedPhases() []Phase {
	var out []Phase
	for _, phase := range PhaseOrder {
		if h.phaseFunc(phase) != nil {
			out = append(out, phase)
		}
	}
	return out
}

// GetRecord reads a performance record from the backing unit.
func (h *Heuristic) GetRecord(slot string) Record {
	rec, _ := h.unit.GetProp(slot).(Record)
	return rec
}

func (h *Heuristic) bumpRecord(slot string, elapsed time.Duration) {
	rec := h.GetRecord(slot)
	rec.Elapsed += elapsed
	rec.Count++
	h.unit.SetProp(slot, rec)
}

// SuccessCount returns how many times this heuristic fired successfully.
func (h *Heuristic) SuccessCount() int { return h.GetRecord(SlotRecordOverall).Count }

// FailureCount returns how many times this heuristic fired and failed.
func (h *Heuristic) FailureCount() int { return h.GetRecord(SlotRecordOverallFailed).Count }

// SubsumedBy reports whether other subsumes this heuristic, per the
// backing unit's subsumed_by slot.
func (h *Heuristic) SubsumedBy(other string) bool {
	for _, name := range h.unit.ListProp(concept.SlotSubsumedBy) {
		if name == other {
			return true
		}
	}
	return false
}

// IsPotentiallyRelevant runs the cheap syntactic relevance check. A nil
// predicate passes; a panic is treated as false and never propagates.
func (h *Heuristic) IsPotentiallyRelevant(ctx *Context) bool {
	return h.safePredicate(h.PotentiallyRelevant, ctx, "potentially_relevant")
}

// IsTrulyRelevant runs the deeper semantic relevance check under the same
// failure rules.
func (h *Heuristic) IsTrulyRelevant(ctx *Context) bool {
	return h.safePredicate(h.TrulyRelevant, ctx, "truly_relevant")
}

func (h *Heuristic) safePredicate(fn PredicateFunc, ctx *Context, label string) (result bool) {
	if fn == nil {
		return true
	}
	defer func() {
		if r := recover(); r != nil {
			logging.Get(logging.CategoryHeuristics).Error("%s: panic in %s check: %v", h.Name(), label, r)
			result = false
		}
	}()
	return fn(h, ctx)
}

// ApplyResult summarizes one application of a heuristic to a context.
type ApplyResult struct {
	Fired     bool  // Both relevance stages passed
	Success   bool  // Every executed phase succeeded
	PhasesRun int   // Number of phases that executed
	FailedAt  Phase // Phase that returned false or panicked, "" if none
}

// Apply drives the full per-task state machine for this heuristic:
// two-stage relevance, then each defined phase in canonical order. A phase
// that panics is logged and counted as failing; a phase that returns false
// stops only the remaining phases of this heuristic. Per-phase and overall
// performance records are updated either way.
func (h *Heuristic) Apply(ctx *Context) ApplyResult {
	if !h.IsPotentiallyRelevant(ctx) {
		logging.HeuristicsDebug("%s: not potentially relevant", h.Name())
		return ApplyResult{}
	}
	if !h.IsTrulyRelevant(ctx) {
		logging.HeuristicsDebug("%s: not truly relevant", h.Name())
		return ApplyResult{}
	}

	result := ApplyResult{Fired: true, Success: true}
	start := time.Now()

	for _, phase := range PhaseOrder {
		fn := h.phaseFunc(phase)
		if fn == nil {
			continue
		}

		phaseStart := time.Now()
		ok := h.runPhase(fn, ctx, phase)
		elapsed := time.Since(phaseStart)
		result.PhasesRun++

		if !ok {
			h.bumpRecord(RecordSlot(phase, true), elapsed)
			result.Success = false
			result.FailedAt = phase
			break
		}
		h.bumpRecord(RecordSlot(phase, false), elapsed)
	}

	overall := SlotRecordOverall
	if !result.Success {
		overall = SlotRecordOverallFailed
	}
	h.bumpRecord(overall, time.Since(start))

	return result
}

// runPhase executes one phase callback, converting a panic into a phase
// failure.
func (h *Heuristic) runPhase(fn PhaseFunc, ctx *Context, phase Phase) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			logging.Get(logging.CategoryHeuristics).Error("%s: panic in %s phase: %v", h.Name(), phase, r)
			ok = false
		}
	}()
	return fn(h, ctx)
}
