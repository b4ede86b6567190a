package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/soochol/taskd/internal/taskd"
)

// getStatus returns the scheduler snapshot.
// GET /api/status
func (s *Server) getStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.sched.Status())
}

// listScheduledTasks returns all tasks with a pending timer.
// GET /api/tasks
func (s *Server) listScheduledTasks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.sched.ScheduledTasks())
}

// scheduleTask registers a task with the scheduler.
// POST /api/tasks
func (s *Server) scheduleTask(w http.ResponseWriter, r *http.Request) {
	var task taskd.AutomationTask
	if err := json.NewDecoder(r.Body).Decode(&task); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if task.ID == "" {
		task.ID = taskd.GenerateID("task")
	}
	// The scheduler owns the struct once scheduled; keep a pre-schedule
	// copy so a lapsed (or already fired) schedule can still be echoed
	// without reading scheduler-mutated state.
	submitted := task.Clone()

	if err := s.sched.ScheduleTask(&task); err != nil {
		switch {
		case errors.Is(err, taskd.ErrNotRunning):
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
		case errors.Is(err, taskd.ErrInvalidSchedule):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	if snapshot, ok := s.sched.ScheduledTask(submitted.ID); ok {
		writeJSON(w, http.StatusCreated, snapshot)
		return
	}
	writeJSON(w, http.StatusCreated, submitted)
}

// unscheduleTask cancels a task's pending timer.
// DELETE /api/tasks/{id}
func (s *Server) unscheduleTask(w http.ResponseWriter, r *http.Request) {
	s.sched.UnscheduleTask(chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}

// triggerTask fires a scheduled task immediately.
// POST /api/tasks/{id}/trigger
func (s *Server) triggerTask(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.sched.TriggerNow(id); err != nil {
		switch {
		case errors.Is(err, taskd.ErrTaskNotScheduled):
			http.Error(w, err.Error(), http.StatusNotFound)
		case errors.Is(err, taskd.ErrNotRunning):
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// listRunningTasks returns in-flight task executions.
// GET /api/running
func (s *Server) listRunningTasks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.sched.RunningTasks())
}

// getHistory returns recent finalized executions, newest last.
// GET /api/history?limit=50
func (s *Server) getHistory(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			http.Error(w, "limit must be a non-negative integer", http.StatusBadRequest)
			return
		}
		limit = parsed
	}
	writeJSON(w, http.StatusOK, s.sched.TaskHistory(limit))
}
