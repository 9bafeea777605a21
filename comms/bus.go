package comms

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

const defaultHistoryLimit = 200

// InMemoryBus is a synchronous in-process Bus. Handlers run on the
// publisher's goroutine in subscription order.
type InMemoryBus struct {
	mu           sync.RWMutex
	nextID       int
	subs         map[Topic]map[int]Handler
	history      []Event
	historyLimit int
}

// NewInMemoryBus returns an empty bus retaining the default amount of
// history.
func NewInMemoryBus() *InMemoryBus {
	return &InMemoryBus{
		subs:         make(map[Topic]map[int]Handler),
		historyLimit: defaultHistoryLimit,
	}
}

func (b *InMemoryBus) Publish(ctx context.Context, ev Event) error {
	if ev.Topic == "" {
		return fmt.Errorf("publish: empty topic")
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}

	b.mu.Lock()
	b.history = append(b.history, ev)
	if len(b.history) > b.historyLimit {
		b.history = b.history[len(b.history)-b.historyLimit:]
	}
	handlers := make([]Handler, 0, len(b.subs[ev.Topic])+len(b.subs[TopicAll]))
	for _, h := range b.subs[ev.Topic] {
		handlers = append(handlers, h)
	}
	for _, h := range b.subs[TopicAll] {
		handlers = append(handlers, h)
	}
	b.mu.Unlock()

	var errs []error
	for _, h := range handlers {
		if err := h(ctx, ev); err != nil {
			errs = append(errs, fmt.Errorf("handler for %q: %w", ev.Topic, err))
		}
	}
	return errors.Join(errs...)
}

func (b *InMemoryBus) Subscribe(topic Topic, handler Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	if b.subs[topic] == nil {
		b.subs[topic] = make(map[int]Handler)
	}
	b.subs[topic][id] = handler

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs[topic], id)
	}
}

func (b *InMemoryBus) History(topic Topic, limit int) []Event {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var out []Event
	for _, ev := range b.history {
		if topic == TopicAll || ev.Topic == topic {
			out = append(out, ev)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out
}
