package engine

import (
	"eureka/internal/agenda"
	"eureka/internal/concept"
	"eureka/internal/logging"
)

// Core category names seeded into every fresh knowledge base.
const (
	UnitAnything  = "anything"
	UnitCategory  = "category"
	UnitSlotType  = "slot"
	UnitHeuristic = "heuristic"
	UnitMathObj   = "math-obj"
	UnitMathOp    = "math-op"
	UnitNumber    = "number"
	UnitAdd       = "add"
	UnitMultiply  = "multiply"
)

// SeedCoreNetwork installs the bootstrap concept network: the root
// categories, the arithmetic operations with runnable algorithms and
// recorded applications, and the initial tasks that give the loop
// something to chew on. A knowledge base that already carries the root
// category is left alone.
func (e *Engine) SeedCoreNetwork() {
	if e.units.Exists(UnitAnything) {
		return
	}

	anything := e.units.CreateUnit(UnitAnything, 550, UnitCategory)
	anything.SetProp(concept.SlotEnglish, "The root of the generalization hierarchy")

	category := e.units.CreateUnit(UnitCategory, 500, UnitCategory)
	category.SetProp(concept.SlotEnglish, "A collection of related units")
	concept.Link(category, concept.SlotGeneralizations, anything, e.slots)

	slotType := e.units.CreateUnit(UnitSlotType, 500, UnitCategory)
	slotType.SetProp(concept.SlotEnglish, "A named property a unit can carry")
	concept.Link(slotType, concept.SlotGeneralizations, anything, e.slots)

	heuristicCat := e.units.CreateUnit(UnitHeuristic, 900, UnitCategory)
	heuristicCat.SetProp(concept.SlotEnglish, "An executable rule that modifies the knowledge base")
	concept.Link(heuristicCat, concept.SlotGeneralizations, anything, e.slots)

	mathObj := e.units.CreateUnit(UnitMathObj, 500, UnitCategory)
	mathObj.SetProp(concept.SlotEnglish, "Mathematical objects")
	concept.Link(mathObj, concept.SlotGeneralizations, anything, e.slots)

	mathOp := e.units.CreateUnit(UnitMathOp, 500, UnitCategory)
	mathOp.SetProp(concept.SlotEnglish, "Operations on mathematical objects")
	concept.Link(mathOp, concept.SlotGeneralizations, anything, e.slots)

	number := e.units.CreateUnit(UnitNumber, 500, UnitMathObj)
	number.SetProp(concept.SlotEnglish, "A number")
	concept.Link(number, concept.SlotGeneralizations, mathObj, e.slots)

	add := e.units.CreateUnit(UnitAdd, 500, UnitMathOp)
	add.SetProp(concept.SlotEnglish, "Addition of numbers")
	add.SetProp(concept.SlotArity, 2)
	add.SetProp(concept.SlotAlgorithm, concept.Algorithm(sumArgs))
	concept.Link(add, concept.SlotDomain, number, e.slots)
	concept.Link(add, concept.SlotRange, number, e.slots)
	seedApplications(add, [][3]float64{{1, 2, 3}, {2, 3, 5}, {4, 4, 8}})

	multiply := e.units.CreateUnit(UnitMultiply, 500, UnitMathOp)
	multiply.SetProp(concept.SlotEnglish, "Multiplication of numbers")
	multiply.SetProp(concept.SlotArity, 2)
	multiply.SetProp(concept.SlotAlgorithm, concept.Algorithm(productArgs))
	concept.Link(multiply, concept.SlotDomain, number, e.slots)
	concept.Link(multiply, concept.SlotRange, number, e.slots)
	seedApplications(multiply, [][3]float64{{2, 3, 6}, {3, 4, 12}, {5, 5, 25}})

	logging.Boot("seeded core network: %d units", e.units.Len())
}

// SeedInitialTasks queues the bootstrap agenda: gather data on the
// arithmetic operations and try specializing them.
func (e *Engine) SeedInitialTasks() {
	e.agenda.Add(agenda.NewTask(600, UnitAdd, concept.SlotExamples, "seed: gather data on addition").
		WithSupplemental(agenda.KeyTaskKind, agenda.KindGatherData))
	e.agenda.Add(agenda.NewTask(550, UnitMultiply, concept.SlotExamples, "seed: gather data on multiplication").
		WithSupplemental(agenda.KeyTaskKind, agenda.KindGatherData))
	e.agenda.Add(agenda.NewTask(500, UnitAdd, concept.SlotSpecializations, "seed: addition looks worth specializing").
		WithSupplemental(agenda.KeyTaskKind, agenda.KindSpecialization))

	logging.Boot("seeded %d initial task(s)", e.agenda.Len())
}

func seedApplications(u *concept.Unit, rows [][3]float64) {
	for _, row := range rows {
		u.AddApplication(concept.Application{
			Args:   []interface{}{row[0], row[1]},
			Result: row[2],
			Worth:  500,
		})
	}
}

func sumArgs(args []interface{}) interface{} {
	total := 0.0
	for _, a := range args {
		n, ok := toFloat(a)
		if !ok {
			return nil
		}
		total += n
	}
	return total
}

func productArgs(args []interface{}) interface{} {
	total := 1.0
	for _, a := range args {
		n, ok := toFloat(a)
		if !ok {
			return nil
		}
		total *= n
	}
	return total
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}
