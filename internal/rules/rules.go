// Package rules holds the built-in heuristics: the rule set that drives
// discovery on a fresh knowledge base. Each rule is an ordinary heuristic
// unit; nothing here is privileged, and a run can retire any of them the
// same way it retires a discovered rule.
package rules

import (
	"fmt"

	"eureka/internal/heuristic"
	"eureka/internal/logging"
)

// RegisterAll installs the built-in rule set. Registration order is
// execution order within a task: definers run before the rules that react
// to freshly created units, and housekeeping runs last.
func RegisterAll(reg *heuristic.Registry) error {
	rules := []*heuristic.Heuristic{
		chooseSlotToSpecialize(),
		specializeChosenSlot(),
		chooseSlotToGeneralize(),
		generalizeChosenSlot(),
		verifyApplications(),
		collectExamplesFromSpecializations(),
		noticeInterestingApplications(),
		conjectureFromWeakApplications(),
		proposeSpecializingValuableUnits(),
		scheduleNewUnits(),
		punishGarbageCreators(),
		retireHopelessHeuristics(),
	}

	for _, r := range rules {
		if !reg.Register(r) {
			return fmt.Errorf("failed to register built-in rule %q", r.Name())
		}
	}

	logging.Boot("registered %d built-in rules", len(rules))
	return nil
}
