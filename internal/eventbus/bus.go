// Package eventbus is an in-process publish/subscribe bridge for
// lifecycle events. It implements the EventSink port.
package eventbus

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/soochol/taskd/internal/taskd"
)

// Handler receives every published event.
type Handler func(taskd.Event)

type subscription struct {
	id      int
	handler Handler
}

// Bus fans published events out to all subscribers. A subscriber panic
// is recovered and logged; it never reaches the publisher.
type Bus struct {
	mu     sync.RWMutex
	subs   []subscription
	nextID int
}

func New() *Bus {
	return &Bus{}
}

func (b *Bus) Subscribe(handler Handler) {
	b.subscribe(handler)
}

func (b *Bus) subscribe(handler Handler) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	b.subs = append(b.subs, subscription{id: b.nextID, handler: handler})
	return b.nextID
}

func (b *Bus) unsubscribe(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, sub := range b.subs {
		if sub.id == id {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			return
		}
	}
}

// Publish delivers the event to every subscriber synchronously, in
// subscription order.
func (b *Bus) Publish(name string, payload map[string]any) {
	event := taskd.Event{Name: name, Time: time.Now(), Payload: payload}

	b.mu.RLock()
	subs := make([]subscription, len(b.subs))
	copy(subs, b.subs)
	b.mu.RUnlock()

	for _, sub := range subs {
		invoke(sub.handler, event)
	}
}

func invoke(h Handler, event taskd.Event) {
	defer func() {
		if r := recover(); r != nil {
			slog.Warn("eventbus: subscriber panicked", "event", event.Name, "panic", r)
		}
	}()
	h(event)
}

// Channel returns a channel receiving events until ctx is done, at
// which point the bridge unsubscribes and the channel is closed. Events
// are dropped rather than blocking the publisher when the buffer is
// full. A publish racing the cancellation may already hold a copy of
// the bridge's handler, so sends stay guarded after the close.
func (b *Bus) Channel(ctx context.Context, bufSize int) <-chan taskd.Event {
	ch := make(chan taskd.Event, bufSize)
	var mu sync.Mutex
	closed := false

	id := b.subscribe(func(e taskd.Event) {
		mu.Lock()
		defer mu.Unlock()
		if closed {
			return
		}
		select {
		case ch <- e:
		default:
		}
	})

	go func() {
		<-ctx.Done()
		b.unsubscribe(id)
		mu.Lock()
		closed = true
		close(ch)
		mu.Unlock()
	}()
	return ch
}
