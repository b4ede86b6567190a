package taskd

import "time"

// Event is a domain event emitted during scheduling and execution.
// It decouples the core from whatever consumes lifecycle notifications.
type Event struct {
	Name    string         `json:"name"`
	Time    time.Time      `json:"time"`
	Payload map[string]any `json:"payload,omitempty"`
}

// Lifecycle event names.
const (
	EventTaskStarted   = "task.started"
	EventTaskCompleted = "task.completed"
	EventTaskFailed    = "task.failed"

	EventActionStarted   = "action.started"
	EventActionCompleted = "action.completed"
	EventActionFailed    = "action.failed"
	EventActionRetried   = "action.retried"
	EventActionCancelled = "action.cancelled"
)
