// Package scheduler owns per-task timers, computes next-run times,
// enforces the concurrency bound, and triggers the action executor.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/soochol/taskd/internal/executor"
	"github.com/soochol/taskd/internal/taskd"
	"github.com/soochol/taskd/internal/taskd/ports"
)

const defaultStopGrace = 5 * time.Second

// Config controls scheduler-wide bounds.
type Config struct {
	MaxConcurrentTasks int
	HistorySize        int
	StopGrace          time.Duration
}

// Status is the observability snapshot returned by Status().
type Status struct {
	IsRunning          bool `json:"is_running"`
	ScheduledCount     int  `json:"scheduled_count"`
	RunningCount       int  `json:"running_count"`
	MaxConcurrentTasks int  `json:"max_concurrent_tasks"`
}

// Scheduler manages one cancellable timer per scheduled task and a
// bounded set of concurrently running task executions. All mutations
// keyed by task ID are serialized under one mutex.
type Scheduler struct {
	mu       sync.Mutex
	running  bool
	tasks    map[string]*taskd.AutomationTask
	timers   map[string]*time.Timer
	inflight map[string]*taskd.TaskExecution

	wg        sync.WaitGroup
	limiter   *Limiter
	history   *History
	executor  *executor.Executor
	condition ports.ConditionEvaluator
	events    ports.EventSink
	stopGrace time.Duration
}

// New creates a Scheduler with all dependencies. condition and events
// may be nil; a nil condition gate always passes.
func New(cfg Config, exec *executor.Executor, condition ports.ConditionEvaluator, events ports.EventSink) *Scheduler {
	grace := cfg.StopGrace
	if grace <= 0 {
		grace = defaultStopGrace
	}
	return &Scheduler{
		tasks:     make(map[string]*taskd.AutomationTask),
		timers:    make(map[string]*time.Timer),
		inflight:  make(map[string]*taskd.TaskExecution),
		limiter:   NewLimiter(cfg.MaxConcurrentTasks),
		history:   NewHistory(cfg.HistorySize),
		executor:  exec,
		condition: condition,
		events:    events,
		stopGrace: grace,
	}
}

// Start begins accepting schedules.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return taskd.ErrAlreadyRunning
	}
	s.running = true
	slog.Info("scheduler: started", "max_concurrent", s.limiter.Max())
	return nil
}

// Stop cancels every pending timer, then waits up to the grace period
// for running executions to finish. If the grace period elapses,
// shutdown proceeds anyway and in-flight executions complete in the
// background.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	for id, timer := range s.timers {
		timer.Stop()
		delete(s.timers, id)
	}
	s.tasks = make(map[string]*taskd.AutomationTask)
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		slog.Info("scheduler: stopped")
	case <-time.After(s.stopGrace):
		slog.Warn("scheduler: stop grace period elapsed, in-flight executions continue in background",
			"grace", s.stopGrace)
	}
}

// ScheduleTask registers a task's timer, superseding any existing timer
// for the same ID. A next-run time that is absent or in the past leaves
// the task unscheduled. Returns ErrNotRunning before Start and a
// wrapped ErrInvalidSchedule for a malformed expression.
func (s *Scheduler) ScheduleTask(task *taskd.AutomationTask) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return taskd.ErrNotRunning
	}

	// Re-scheduling supersedes, never duplicates.
	if timer, ok := s.timers[task.ID]; ok {
		timer.Stop()
		delete(s.timers, task.ID)
		delete(s.tasks, task.ID)
	}

	now := time.Now()
	next, err := NextRun(task.Schedule, now)
	if err != nil {
		slog.Warn("scheduler: task has invalid schedule", "task", task.ID, "err", err)
		return fmt.Errorf("schedule task %s: %w", task.ID, err)
	}
	if next == nil || !next.After(now) {
		task.NextRun = nil
		slog.Info("scheduler: schedule lapsed, task left unscheduled", "task", task.ID)
		return nil
	}

	s.registerTimer(task, *next)
	slog.Info("scheduler: task scheduled",
		"task", task.ID, "type", task.Schedule.Type, "next_run", next)
	return nil
}

// registerTimer arms the task's timer. Caller holds s.mu. The timer
// hands its own identity to the fire callback so a callback from a
// superseded timer can recognize itself as stale.
func (s *Scheduler) registerTimer(task *taskd.AutomationTask, next time.Time) {
	nextCopy := next
	task.NextRun = &nextCopy
	s.tasks[task.ID] = task
	var timer *time.Timer
	timer = time.AfterFunc(time.Until(next), func() {
		s.fire(task, timer)
	})
	s.timers[task.ID] = timer
}

// UnscheduleTask cancels a pending timer if one exists. It has no effect
// on an execution already in flight.
func (s *Scheduler) UnscheduleTask(taskID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if timer, ok := s.timers[taskID]; ok {
		timer.Stop()
		delete(s.timers, taskID)
		delete(s.tasks, taskID)
		slog.Info("scheduler: task unscheduled", "task", taskID)
	}
}

// TriggerNow fires a scheduled task immediately, through the exact same
// concurrency and condition gates as a timer fire.
func (s *Scheduler) TriggerNow(taskID string) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return taskd.ErrNotRunning
	}
	task, ok := s.tasks[taskID]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", taskd.ErrTaskNotScheduled, taskID)
	}
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		s.executeTask(task, "manual")
	}()
	return nil
}

// fire runs when a task's timer elapses: it re-arms recurring schedules
// first, then launches the execution so a dropped fire is still retried
// at the next scheduled time. A callback whose timer was superseded by
// a re-schedule between elapsing and acquiring the lock must not touch
// the replacement timer's registration.
func (s *Scheduler) fire(task *taskd.AutomationTask, timer *time.Timer) {
	s.mu.Lock()
	if s.timers[task.ID] != timer {
		s.mu.Unlock()
		return
	}
	delete(s.timers, task.ID)
	if !s.running {
		s.mu.Unlock()
		return
	}

	if task.Schedule.Type == taskd.ScheduleOnce {
		// A one-shot is consumed by firing, never rescheduled.
		task.NextRun = nil
		delete(s.tasks, task.ID)
	} else {
		now := time.Now()
		next, err := NextRun(task.Schedule, now)
		switch {
		case err != nil:
			task.NextRun = nil
			delete(s.tasks, task.ID)
			slog.Warn("scheduler: failed to compute next run", "task", task.ID, "err", err)
		case next == nil || !next.After(now):
			task.NextRun = nil
			delete(s.tasks, task.ID)
			slog.Info("scheduler: schedule exhausted", "task", task.ID)
		default:
			s.registerTimer(task, *next)
		}
	}

	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		s.executeTask(task, "schedule")
	}()
}

// executeTask is the trigger path shared by timer fires and TriggerNow.
// A fire that exceeds the concurrency bound or fails the condition gate
// is skipped and logged, not queued.
func (s *Scheduler) executeTask(task *taskd.AutomationTask, trigger string) {
	ctx := context.Background()

	if !s.limiter.TryAcquire() {
		slog.Warn("scheduler: concurrency limit reached, skipping fire",
			"task", task.ID, "limit", s.limiter.Max())
		return
	}
	defer s.limiter.Release()

	triggerData := map[string]any{
		"task_id":   task.ID,
		"task_name": task.Name,
		"trigger":   trigger,
		"fired_at":  time.Now().Format(time.RFC3339),
	}

	if s.condition != nil {
		for _, cond := range task.Conditions {
			met, err := s.condition.Evaluate(ctx, cond, triggerData)
			if err != nil {
				slog.Warn("scheduler: condition evaluation failed, skipping fire",
					"task", task.ID, "condition", cond.ID, "err", err)
				return
			}
			if !met {
				slog.Info("scheduler: condition not met, skipping fire",
					"task", task.ID, "condition", cond.ID)
				return
			}
		}
	}

	exec := &taskd.TaskExecution{
		ID:        uuid.NewString(),
		TaskID:    task.ID,
		Status:    taskd.StatusRunning,
		StartTime: time.Now(),
	}

	s.mu.Lock()
	if _, dup := s.inflight[task.ID]; dup {
		s.mu.Unlock()
		slog.Warn("scheduler: previous execution still running, skipping fire", "task", task.ID)
		return
	}
	s.inflight[task.ID] = exec
	now := time.Now()
	task.LastRun = &now
	task.ExecutionCount++
	s.mu.Unlock()

	s.publish(taskd.EventTaskStarted, map[string]any{
		"execution_id": exec.ID, "task_id": task.ID, "trigger": trigger,
	})

	result, err := s.executor.RunTaskActions(ctx, task, map[string]any{"trigger": triggerData}, exec)

	end := time.Now()
	s.mu.Lock()
	exec.EndTime = &end
	if err != nil {
		exec.Status = taskd.StatusFailed
		exec.Error = err.Error()
		task.FailureCount++
	} else {
		exec.Status = taskd.StatusCompleted
		exec.Result = result
		task.SuccessCount++
	}
	delete(s.inflight, task.ID)
	s.mu.Unlock()

	s.history.Append(exec)

	if err != nil {
		slog.Error("scheduler: task execution failed", "task", task.ID, "err", err)
		s.publish(taskd.EventTaskFailed, map[string]any{
			"execution_id": exec.ID, "task_id": task.ID, "error": err.Error(),
		})
		return
	}
	s.publish(taskd.EventTaskCompleted, map[string]any{
		"execution_id": exec.ID, "task_id": task.ID,
	})
}

// ScheduledTasks returns snapshots of the tasks with a pending timer.
// The live structs keep being mutated by the scheduler; handing out
// copies keeps callers (JSON encoders included) off shared state.
func (s *Scheduler) ScheduledTasks() []*taskd.AutomationTask {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*taskd.AutomationTask, 0, len(s.tasks))
	for _, t := range s.tasks {
		out = append(out, t.Clone())
	}
	return out
}

// ScheduledTask returns a snapshot of one scheduled task by ID.
func (s *Scheduler) ScheduledTask(taskID string) (*taskd.AutomationTask, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[taskID]
	if !ok {
		return nil, false
	}
	return t.Clone(), true
}

// RunningTasks returns snapshots of the currently in-flight task
// executions.
func (s *Scheduler) RunningTasks() []*taskd.TaskExecution {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*taskd.TaskExecution, 0, len(s.inflight))
	for _, exec := range s.inflight {
		out = append(out, exec.Clone())
	}
	return out
}

// TaskHistory returns up to limit of the most recent finalized
// executions in chronological order.
func (s *Scheduler) TaskHistory(limit int) []*taskd.TaskExecution {
	return s.history.Recent(limit)
}

// Status returns an observability snapshot.
func (s *Scheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{
		IsRunning:          s.running,
		ScheduledCount:     len(s.tasks),
		RunningCount:       len(s.inflight),
		MaxConcurrentTasks: s.limiter.Max(),
	}
}

func (s *Scheduler) publish(name string, payload map[string]any) {
	if s.events == nil {
		return
	}
	s.events.Publish(name, payload)
}
