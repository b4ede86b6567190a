// Package api exposes the scheduler's boundary operations over HTTP
// JSON: status, scheduled tasks, running executions, history, and
// schedule/unschedule/trigger. Auth and dashboards live elsewhere.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/soochol/taskd/internal/scheduler"
)

type Server struct {
	sched *scheduler.Scheduler
}

func NewServer(sched *scheduler.Scheduler) *Server {
	return &Server{sched: sched}
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE"},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
	}))
	r.Route("/api", func(r chi.Router) {
		r.Get("/status", s.getStatus)
		r.Route("/tasks", func(r chi.Router) {
			r.Get("/", s.listScheduledTasks)
			r.Post("/", s.scheduleTask)
			r.Delete("/{id}", s.unscheduleTask)
			r.Post("/{id}/trigger", s.triggerTask)
		})
		r.Get("/running", s.listRunningTasks)
		r.Get("/history", s.getHistory)
	})
	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
