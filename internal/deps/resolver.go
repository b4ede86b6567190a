// Package deps orders a task's actions so that every declared dependency
// precedes its dependents.
package deps

import (
	"fmt"

	"github.com/soochol/taskd/internal/taskd"
)

type visitState int

const (
	unvisited visitState = iota
	visiting
	done
)

// Resolve returns the actions in execution order: for every action A
// depending on B, B precedes A. Ties among mutually independent actions
// preserve the input order, so the result is deterministic.
//
// A dependency on an ID not present in the list fails with
// ErrUnknownDependency. A cycle fails with ErrCyclicDependency; the
// depth-first visit tracks per-node state so a cyclic graph can never
// recurse unboundedly.
func Resolve(actions []taskd.Action) ([]taskd.Action, error) {
	byID := make(map[string]*taskd.Action, len(actions))
	for i := range actions {
		a := &actions[i]
		if _, exists := byID[a.ID]; exists {
			return nil, fmt.Errorf("duplicate action ID: %s", a.ID)
		}
		byID[a.ID] = a
	}

	state := make(map[string]visitState, len(actions))
	order := make([]taskd.Action, 0, len(actions))

	var visit func(a *taskd.Action) error
	visit = func(a *taskd.Action) error {
		switch state[a.ID] {
		case done:
			return nil
		case visiting:
			return fmt.Errorf("%w: %s", taskd.ErrCyclicDependency, a.ID)
		}
		state[a.ID] = visiting

		for _, depID := range a.Dependencies {
			dep, ok := byID[depID]
			if !ok {
				return fmt.Errorf("%w: %s depends on %s", taskd.ErrUnknownDependency, a.ID, depID)
			}
			if err := visit(dep); err != nil {
				return err
			}
		}

		state[a.ID] = done
		order = append(order, *a)
		return nil
	}

	for i := range actions {
		if err := visit(&actions[i]); err != nil {
			return nil, err
		}
	}
	return order, nil
}
