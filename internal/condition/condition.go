// Package condition is the default ConditionEvaluator: expression-based
// predicates evaluated against the fire's trigger data.
package condition

import (
	"context"
	"fmt"

	"github.com/expr-lang/expr"

	"github.com/soochol/taskd/internal/taskd"
)

// Evaluator compiles and runs condition expressions with expr-lang.
// Example: `trigger == "schedule" && attempts < 3`.
type Evaluator struct{}

func NewEvaluator() *Evaluator {
	return &Evaluator{}
}

// Evaluate returns true if the condition's expression evaluates to a
// truthy value against triggerData. An empty expression always holds.
// Compilation failures (e.g. undefined variables) report the error and
// evaluate as false.
func (e *Evaluator) Evaluate(_ context.Context, cond taskd.Condition, triggerData map[string]any) (bool, error) {
	if cond.Expression == "" {
		return true, nil
	}

	env := triggerData
	if env == nil {
		env = map[string]any{}
	}

	program, err := expr.Compile(cond.Expression, expr.Env(env))
	if err != nil {
		return false, fmt.Errorf("compile condition %q: %w", cond.Expression, err)
	}

	result, err := expr.Run(program, env)
	if err != nil {
		return false, fmt.Errorf("evaluate condition %q: %w", cond.Expression, err)
	}

	return isTruthy(result), nil
}

// isTruthy converts a value to a boolean.
func isTruthy(v any) bool {
	if v == nil {
		return false
	}
	switch val := v.(type) {
	case bool:
		return val
	case string:
		return val != ""
	case int:
		return val != 0
	case int64:
		return val != 0
	case float64:
		return val != 0
	default:
		return true
	}
}
