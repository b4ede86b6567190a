package taskd

import (
	"sync"
	"time"
)

// ExecutionStatus represents the lifecycle state of a task or action run.
type ExecutionStatus string

const (
	StatusRunning   ExecutionStatus = "running"
	StatusCompleted ExecutionStatus = "completed"
	StatusFailed    ExecutionStatus = "failed"
	StatusCancelled ExecutionStatus = "cancelled"
)

// TaskExecution is a single run record of a task. It is mutable only
// while Status is StatusRunning; after finalization it is appended to
// the bounded history ring and never touched again. Logs are appended
// through AppendLog while the run's status fields belong to the
// scheduler's lock; Clone produces a detached copy safe to hand out.
type TaskExecution struct {
	mu sync.Mutex // guards Logs

	ID        string          `json:"id"`
	TaskID    string          `json:"task_id"`
	Status    ExecutionStatus `json:"status"`
	StartTime time.Time       `json:"start_time"`
	EndTime   *time.Time      `json:"end_time,omitempty"`
	Logs      []ExecutionLog  `json:"logs,omitempty"`
	Result    map[string]any  `json:"result,omitempty"`
	Error     string          `json:"error,omitempty"`
}

// AppendLog attaches one log entry to the execution.
func (e *TaskExecution) AppendLog(log ExecutionLog) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Logs = append(e.Logs, log)
}

// Clone returns a copy with its own Logs slice. Status, timestamps and
// result are owned by the scheduler; callers clone under its lock.
func (e *TaskExecution) Clone() *TaskExecution {
	e.mu.Lock()
	logs := make([]ExecutionLog, len(e.Logs))
	copy(logs, e.Logs)
	e.mu.Unlock()

	return &TaskExecution{
		ID:        e.ID,
		TaskID:    e.TaskID,
		Status:    e.Status,
		StartTime: e.StartTime,
		EndTime:   e.EndTime,
		Logs:      logs,
		Result:    e.Result,
		Error:     e.Error,
	}
}

// ActionExecution is a single invocation record of one action. It lives
// in the executor's active registry while running and is discarded on
// completion; only task-level history is retained.
type ActionExecution struct {
	ID         string          `json:"id"`
	ActionID   string          `json:"action_id"`
	Status     ExecutionStatus `json:"status"`
	StartTime  time.Time       `json:"start_time"`
	EndTime    *time.Time      `json:"end_time,omitempty"`
	RetryCount int             `json:"retry_count"`
	Result     any             `json:"result,omitempty"`
	Error      string          `json:"error,omitempty"`
}

// ExecutionLog is one structured log line attached to a task execution.
type ExecutionLog struct {
	ID        string         `json:"id"`
	Timestamp time.Time      `json:"timestamp"`
	Level     string         `json:"level"`
	Message   string         `json:"message"`
	Data      map[string]any `json:"data,omitempty"`
	Source    string         `json:"source"`
}
