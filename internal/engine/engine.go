// Package engine wires the knowledge registries, the agenda, and the
// heuristic registry into a running discovery loop: pop the best task,
// apply every relevant heuristic, fold the effects back in, and sweep for
// duplicate concepts between cycles.
package engine

import (
	"math/rand"
	"time"

	"go.uber.org/zap"

	"eureka/internal/agenda"
	"eureka/internal/concept"
	"eureka/internal/config"
	"eureka/internal/heuristic"
	"eureka/internal/logging"
)

// Engine owns the full running system.
type Engine struct {
	cfg        *config.Config
	units      *concept.UnitRegistry
	slots      *concept.SlotRegistry
	heuristics *heuristic.Registry
	agenda     *agenda.Agenda
	logger     *zap.Logger
	rand       *rand.Rand

	taskNum int
}

// Option configures an Engine at construction time.
type Option func(*Engine)

// WithLogger attaches a structured logger for run-level events. The
// default is a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// New builds an engine from configuration: fresh registries with the core
// slot table plus the heuristic record slots, and an empty agenda tuned to
// the configured floor and merge bonus.
func New(cfg *config.Config, opts ...Option) *Engine {
	slots := concept.NewSlotRegistry()
	heuristic.RegisterRecordSlots(slots)

	units := concept.NewUnitRegistry()

	seed := cfg.Run.RandomSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	e := &Engine{
		cfg:        cfg,
		units:      units,
		slots:      slots,
		heuristics: heuristic.NewRegistry(units),
		agenda:     agenda.New(cfg.Agenda.MinPriority, cfg.Agenda.ReasonBonus),
		logger:     zap.NewNop(),
		rand:       rand.New(rand.NewSource(seed)),
	}
	for _, opt := range opts {
		opt(e)
	}

	for _, warning := range slots.CheckInverses() {
		logging.Boot("slot table: %s", warning)
	}

	return e
}

// Units returns the unit registry.
func (e *Engine) Units() *concept.UnitRegistry { return e.units }

// Slots returns the slot registry.
func (e *Engine) Slots() *concept.SlotRegistry { return e.slots }

// Heuristics returns the heuristic registry.
func (e *Engine) Heuristics() *heuristic.Registry { return e.heuristics }

// Agenda returns the task agenda.
func (e *Engine) Agenda() *agenda.Agenda { return e.agenda }

// Config returns the engine's configuration.
func (e *Engine) Config() *config.Config { return e.cfg }

// Rand returns the engine's seeded random source.
func (e *Engine) Rand() *rand.Rand { return e.rand }

// TaskNum returns the number of tasks executed so far.
func (e *Engine) TaskNum() int { return e.taskNum }

func (e *Engine) tunables() heuristic.Tunables {
	return heuristic.Tunables{
		SuccessDelta:        e.cfg.Worth.SuccessDelta,
		FailureDelta:        e.cfg.Worth.FailureDelta,
		SpecializationRatio: e.cfg.Worth.SpecializationRatio,
	}
}
