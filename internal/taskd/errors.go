package taskd

import "errors"

// Sentinel errors for the scheduling and execution core. Callers match
// them with errors.Is; wrapped messages carry the offending identifier.
var (
	// ErrNotRunning is returned when a task is scheduled before Start.
	ErrNotRunning = errors.New("scheduler is not running")

	// ErrAlreadyRunning is returned by Start on a started scheduler.
	ErrAlreadyRunning = errors.New("scheduler is already running")

	// ErrInvalidSchedule marks a malformed schedule expression. The task
	// never fires; the scheduler itself is unaffected.
	ErrInvalidSchedule = errors.New("invalid schedule")

	// ErrTaskNotScheduled is returned by TriggerNow for an unknown task ID.
	ErrTaskNotScheduled = errors.New("task is not scheduled")

	// ErrUnknownActionType means no handler is registered for an action's
	// type. It is fatal for the task execution and never retried.
	ErrUnknownActionType = errors.New("unknown action type")

	// ErrCyclicDependency means a task's action graph contains a cycle.
	// It surfaces before any action runs.
	ErrCyclicDependency = errors.New("cyclic action dependency")

	// ErrUnknownDependency means an action references a dependency ID not
	// present in the same task.
	ErrUnknownDependency = errors.New("dependency references unknown action")

	// ErrActionTimeout means a single attempt exceeded the action timeout.
	// It drives the retry loop like any other attempt failure.
	ErrActionTimeout = errors.New("action timed out")

	// ErrExecutionNotFound is returned by CancelExecution for an ID that
	// is not in the active registry.
	ErrExecutionNotFound = errors.New("execution not found")

	// ErrExecutionCancelled is returned by a retry loop whose execution
	// was cancelled between attempts.
	ErrExecutionCancelled = errors.New("execution cancelled")
)
