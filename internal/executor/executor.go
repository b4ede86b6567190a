// Package executor runs a task's actions: dependency-ordered, strictly
// sequential, with per-action retry, backoff, and timeout.
package executor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/soochol/taskd/internal/backoff"
	"github.com/soochol/taskd/internal/deps"
	"github.com/soochol/taskd/internal/taskd"
	"github.com/soochol/taskd/internal/taskd/ports"
)

const defaultActionTimeout = 30 * time.Second

// Config controls executor-wide defaults applied when an action carries
// no retry policy or timeout of its own.
type Config struct {
	DefaultTimeout time.Duration
	DefaultRetry   taskd.RetryPolicy
}

// Executor dispatches actions to registered handlers and tracks active
// action executions. It carries no transport dependencies; all concrete
// work lives behind the HandlerRegistry port.
type Executor struct {
	handlers       ports.HandlerRegistry
	events         ports.EventSink
	defaultTimeout time.Duration
	defaultRetry   taskd.RetryPolicy

	mu        sync.Mutex
	active    map[string]*taskd.ActionExecution
	cancelled map[string]struct{}
}

func New(cfg Config, handlers ports.HandlerRegistry, events ports.EventSink) *Executor {
	if cfg.DefaultTimeout <= 0 {
		cfg.DefaultTimeout = defaultActionTimeout
	}
	if cfg.DefaultRetry.MaxAttempts < 1 {
		cfg.DefaultRetry = taskd.DefaultRetryPolicy()
	}
	return &Executor{
		handlers:       handlers,
		events:         events,
		defaultTimeout: cfg.DefaultTimeout,
		defaultRetry:   cfg.DefaultRetry,
		active:         make(map[string]*taskd.ActionExecution),
		cancelled:      make(map[string]struct{}),
	}
}

// ExecuteAction runs one action against the shared execution context,
// retrying per the action's policy. The returned record is final: its
// Status is completed, failed, or cancelled, and it has already been
// removed from the active registry on every exit path.
func (e *Executor) ExecuteAction(ctx context.Context, action taskd.Action, execCtx map[string]any) (*taskd.ActionExecution, error) {
	exec := &taskd.ActionExecution{
		ID:        uuid.NewString(),
		ActionID:  action.ID,
		Status:    taskd.StatusRunning,
		StartTime: time.Now(),
	}

	e.mu.Lock()
	e.active[exec.ID] = exec
	e.mu.Unlock()
	defer e.forget(exec.ID)

	e.publish(taskd.EventActionStarted, map[string]any{
		"execution_id": exec.ID,
		"action_id":    action.ID,
		"action_type":  action.Type,
	})

	result, err := e.runWithRetry(ctx, action, execCtx, exec)

	now := time.Now()
	e.mu.Lock()
	exec.EndTime = &now
	switch {
	case errors.Is(err, taskd.ErrExecutionCancelled):
		// Status already set by CancelExecution; cancelled is terminal.
	case err != nil:
		exec.Status = taskd.StatusFailed
		exec.Error = err.Error()
	default:
		exec.Status = taskd.StatusCompleted
		exec.Result = result
	}
	e.mu.Unlock()

	if err != nil {
		if !errors.Is(err, taskd.ErrExecutionCancelled) {
			e.publish(taskd.EventActionFailed, map[string]any{
				"execution_id": exec.ID,
				"action_id":    action.ID,
				"error":        err.Error(),
			})
		}
		return exec, err
	}

	e.publish(taskd.EventActionCompleted, map[string]any{
		"execution_id": exec.ID,
		"action_id":    action.ID,
		"result":       result,
	})
	return exec, nil
}

// runWithRetry is the attempt loop. Only the final attempt's error
// escapes; intermediate failures emit a retried event and back off.
func (e *Executor) runWithRetry(ctx context.Context, action taskd.Action, execCtx map[string]any, exec *taskd.ActionExecution) (any, error) {
	handler, ok := e.handlers.Handler(action.Type)
	if !ok {
		// Fatal for this execution, never retried.
		return nil, fmt.Errorf("%w: %q", taskd.ErrUnknownActionType, action.Type)
	}

	policy := e.defaultRetry
	if action.RetryPolicy != nil {
		policy = *action.RetryPolicy
	}
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}

	timeout := action.Timeout
	if timeout <= 0 {
		timeout = e.defaultTimeout
	}

	var lastErr error
	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		if e.isCancelled(exec.ID) {
			return nil, taskd.ErrExecutionCancelled
		}

		config := resolveConfig(action.Config, execCtx)
		result, err := e.runAttempt(ctx, handler, config, execCtx, timeout)
		if e.isCancelled(exec.ID) {
			return nil, taskd.ErrExecutionCancelled
		}
		if err == nil {
			return result, nil
		}
		lastErr = err

		if attempt == policy.MaxAttempts {
			break
		}

		e.mu.Lock()
		exec.RetryCount = attempt
		e.mu.Unlock()

		slog.Warn("executor: action attempt failed, retrying",
			"action", action.ID, "attempt", attempt, "err", err)
		e.publish(taskd.EventActionRetried, map[string]any{
			"execution_id": exec.ID,
			"action_id":    action.ID,
			"attempt":      attempt,
			"error":        err.Error(),
		})

		if err := e.sleep(ctx, backoff.Delay(policy, attempt)); err != nil {
			return nil, err
		}
	}
	return nil, lastErr
}

// runAttempt races one handler call against the action timeout;
// whichever settles first wins.
func (e *Executor) runAttempt(ctx context.Context, handler ports.ActionHandler, config, execCtx map[string]any, timeout time.Duration) (any, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type outcome struct {
		result any
		err    error
	}
	done := make(chan outcome, 1)

	go func() {
		result, err := handler.Execute(attemptCtx, config, execCtx)
		done <- outcome{result, err}
	}()

	select {
	case o := <-done:
		return o.result, o.err
	case <-attemptCtx.Done():
		if errors.Is(attemptCtx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w after %s", taskd.ErrActionTimeout, timeout)
		}
		return nil, attemptCtx.Err()
	}
}

// sleep waits for the backoff duration, respecting context cancellation.
func (e *Executor) sleep(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RunTaskActions resolves the task's action order and executes the
// actions strictly sequentially, accumulating each result into the
// shared context under the action's ID. The first failure aborts the
// remaining sequence.
func (e *Executor) RunTaskActions(ctx context.Context, task *taskd.AutomationTask, execCtx map[string]any, exec *taskd.TaskExecution) (map[string]any, error) {
	ordered, err := deps.Resolve(task.Actions)
	if err != nil {
		appendLog(exec, "error", "action order resolution failed", map[string]any{"error": err.Error()})
		return nil, err
	}

	if execCtx == nil {
		execCtx = make(map[string]any)
	}

	for _, action := range ordered {
		appendLog(exec, "info", "action started", map[string]any{
			"action_id": action.ID, "action_type": action.Type,
		})

		actExec, err := e.ExecuteAction(ctx, action, execCtx)
		if err != nil {
			appendLog(exec, "error", "action failed", map[string]any{
				"action_id": action.ID, "retry_count": actExec.RetryCount, "error": err.Error(),
			})
			return nil, fmt.Errorf("action %s: %w", action.ID, err)
		}

		execCtx[action.ID] = actExec.Result
		appendLog(exec, "info", "action completed", map[string]any{
			"action_id": action.ID, "retry_count": actExec.RetryCount,
		})
	}
	return execCtx, nil
}

// CancelExecution marks an active execution cancelled and removes it
// from the registry. Work already dispatched to a handler continues;
// handlers honor their own context cancellation if they support it.
func (e *Executor) CancelExecution(executionID string) error {
	e.mu.Lock()
	exec, ok := e.active[executionID]
	if !ok {
		e.mu.Unlock()
		return fmt.Errorf("%w: %s", taskd.ErrExecutionNotFound, executionID)
	}
	now := time.Now()
	exec.Status = taskd.StatusCancelled
	exec.EndTime = &now
	delete(e.active, executionID)
	e.cancelled[executionID] = struct{}{}
	actionID := exec.ActionID
	e.mu.Unlock()

	e.publish(taskd.EventActionCancelled, map[string]any{
		"execution_id": executionID,
		"action_id":    actionID,
	})
	return nil
}

// ActiveExecutions returns a snapshot of currently running action
// executions.
func (e *Executor) ActiveExecutions() []*taskd.ActionExecution {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]*taskd.ActionExecution, 0, len(e.active))
	for _, exec := range e.active {
		copied := *exec
		out = append(out, &copied)
	}
	return out
}

func (e *Executor) isCancelled(executionID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.cancelled[executionID]
	return ok
}

func (e *Executor) forget(executionID string) {
	e.mu.Lock()
	delete(e.active, executionID)
	delete(e.cancelled, executionID)
	e.mu.Unlock()
}

func (e *Executor) publish(name string, payload map[string]any) {
	if e.events == nil {
		return
	}
	e.events.Publish(name, payload)
}

func appendLog(exec *taskd.TaskExecution, level, message string, data map[string]any) {
	if exec == nil {
		return
	}
	exec.AppendLog(taskd.ExecutionLog{
		ID:        uuid.NewString(),
		Timestamp: time.Now(),
		Level:     level,
		Message:   message,
		Data:      data,
		Source:    "executor",
	})
}
