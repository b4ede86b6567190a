// Package ports declares the capability interfaces the scheduling and
// execution core consumes. Concrete transports (HTTP calls, mail, shell,
// plugin RPC) implement ActionHandler outside the core; the core itself
// carries no transport dependencies.
package ports

import (
	"context"

	"github.com/soochol/taskd/internal/taskd"
)

// ActionHandler executes one action type against a resolved config and
// the task execution's shared context.
type ActionHandler interface {
	Execute(ctx context.Context, config map[string]any, execCtx map[string]any) (any, error)
}

// HandlerRegistry maps an action type to its handler.
type HandlerRegistry interface {
	Handler(actionType string) (ActionHandler, bool)
}

// ConditionEvaluator decides whether a condition holds for the given
// trigger data. It is read-only; the core assumes no side effects.
type ConditionEvaluator interface {
	Evaluate(ctx context.Context, cond taskd.Condition, triggerData map[string]any) (bool, error)
}

// EventSink consumes lifecycle events fire-and-forget. Implementations
// must never propagate an error back into the scheduler or executor.
type EventSink interface {
	Publish(name string, payload map[string]any)
}
