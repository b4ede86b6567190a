package scheduler

import (
	"sync"

	"github.com/soochol/taskd/internal/taskd"
)

const defaultHistorySize = 1000

// History is the bounded, FIFO-evicting store of finalized task
// executions. Appends are atomic across tasks; entries are immutable
// once stored.
type History struct {
	mu      sync.Mutex
	entries []*taskd.TaskExecution
	cap     int
}

// NewHistory creates a ring with the given capacity. A capacity <= 0
// falls back to 1000.
func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = defaultHistorySize
	}
	return &History{cap: capacity}
}

// Append stores a finalized execution, evicting the oldest entry once
// capacity is exceeded.
func (h *History) Append(exec *taskd.TaskExecution) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries, exec)
	if len(h.entries) > h.cap {
		h.entries = h.entries[len(h.entries)-h.cap:]
	}
}

// Recent returns up to limit of the most recent executions in
// chronological order. limit <= 0 returns everything retained.
func (h *History) Recent(limit int) []*taskd.TaskExecution {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := len(h.entries)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]*taskd.TaskExecution, n)
	copy(out, h.entries[len(h.entries)-n:])
	return out
}

// Len returns the number of retained executions.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}
