// Package actions holds the handler registry mapping an action type to
// its executor. Concrete handlers are registered by the composing
// application; this package carries no transport logic.
package actions

import (
	"context"
	"sort"
	"sync"

	"github.com/soochol/taskd/internal/taskd/ports"
)

// HandlerFunc adapts a plain function to the ActionHandler interface.
type HandlerFunc func(ctx context.Context, config map[string]any, execCtx map[string]any) (any, error)

func (f HandlerFunc) Execute(ctx context.Context, config map[string]any, execCtx map[string]any) (any, error) {
	return f(ctx, config, execCtx)
}

// Registry is a concurrency-safe map of action type to handler.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]ports.ActionHandler
}

func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]ports.ActionHandler)}
}

// Register adds a handler for the given action type, replacing any
// previous registration.
func (r *Registry) Register(actionType string, h ports.ActionHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[actionType] = h
}

// Handler returns the handler for an action type.
func (r *Registry) Handler(actionType string) (ports.ActionHandler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[actionType]
	return h, ok
}

// Types returns all registered action types, sorted.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	types := make([]string, 0, len(r.handlers))
	for t := range r.handlers {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}
