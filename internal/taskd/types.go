package taskd

import "time"

// --- Schedule ---

// ScheduleType selects how a task's next fire time is computed.
type ScheduleType string

const (
	ScheduleOnce     ScheduleType = "once"
	ScheduleInterval ScheduleType = "interval"
	ScheduleCron     ScheduleType = "cron"
)

// TaskSchedule is the temporal trigger rule for a task.
// Expression holds the interval in milliseconds for ScheduleInterval,
// or a 5- or 6-field cron string for ScheduleCron.
type TaskSchedule struct {
	Type       ScheduleType `json:"type" yaml:"type"`
	Expression string       `json:"expression,omitempty" yaml:"expression,omitempty"`
	StartDate  *time.Time   `json:"start_date,omitempty" yaml:"start_date,omitempty"`
	EndDate    *time.Time   `json:"end_date,omitempty" yaml:"end_date,omitempty"`
	Timezone   string       `json:"timezone,omitempty" yaml:"timezone,omitempty"`
}

// --- Retry Policy ---

// BackoffStrategy selects the delay-escalation curve between retries.
type BackoffStrategy string

const (
	BackoffFixed       BackoffStrategy = "fixed"
	BackoffLinear      BackoffStrategy = "linear"
	BackoffExponential BackoffStrategy = "exponential"
)

// RetryPolicy defines how a failed action attempt is retried.
type RetryPolicy struct {
	MaxAttempts  int             `json:"max_attempts"            yaml:"max_attempts"`
	InitialDelay time.Duration   `json:"initial_delay"           yaml:"initial_delay"`
	MaxDelay     time.Duration   `json:"max_delay"               yaml:"max_delay"`
	Strategy     BackoffStrategy `json:"backoff_strategy"        yaml:"backoff_strategy"`
	Multiplier   float64         `json:"multiplier,omitempty"    yaml:"multiplier,omitempty"`
}

// DefaultRetryPolicy returns a sensible default retry policy.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:  3,
		InitialDelay: time.Second,
		MaxDelay:     5 * time.Minute,
		Strategy:     BackoffExponential,
		Multiplier:   2.0,
	}
}

// --- Conditions ---

// Condition is a predicate gating a task fire. The core treats it as
// opaque; a ConditionEvaluator decides whether it holds.
type Condition struct {
	ID         string `json:"id,omitempty" yaml:"id,omitempty"`
	Expression string `json:"expression"   yaml:"expression"`
}

// --- Actions ---

// Action is one step of work within a task, dispatched by Type to an
// external handler. Config string values may contain {{a.b.c}} tokens
// resolved against the shared execution context before dispatch.
type Action struct {
	ID           string         `json:"id"                      yaml:"id"`
	Type         string         `json:"type"                    yaml:"type"`
	Config       map[string]any `json:"config,omitempty"        yaml:"config,omitempty"`
	Dependencies []string       `json:"dependencies,omitempty"  yaml:"dependencies,omitempty"`
	RetryPolicy  *RetryPolicy   `json:"retry_policy,omitempty"  yaml:"retry_policy,omitempty"`
	Timeout      time.Duration  `json:"timeout,omitempty"       yaml:"timeout,omitempty"`
}

// --- Task ---

// AutomationTask combines a trigger schedule, conditions, and an ordered
// action set. Counters and run timestamps are owned and mutated only by
// the scheduler.
type AutomationTask struct {
	ID         string       `json:"id"              yaml:"id"`
	Name       string       `json:"name,omitempty"  yaml:"name,omitempty"`
	Schedule   TaskSchedule `json:"schedule"        yaml:"schedule"`
	Conditions []Condition  `json:"conditions,omitempty" yaml:"conditions,omitempty"`
	Actions    []Action     `json:"actions"         yaml:"actions"`

	ExecutionCount int        `json:"execution_count"`
	SuccessCount   int        `json:"success_count"`
	FailureCount   int        `json:"failure_count"`
	LastRun        *time.Time `json:"last_run,omitempty"`
	NextRun        *time.Time `json:"next_run,omitempty"`
}

// Clone returns a shallow copy of the task. The scheduler replaces the
// LastRun/NextRun pointers rather than mutating the pointees, and the
// schedule, conditions and actions are read-only after scheduling, so a
// shallow copy taken under the scheduler's lock is a consistent
// snapshot.
func (t *AutomationTask) Clone() *AutomationTask {
	copied := *t
	return &copied
}
