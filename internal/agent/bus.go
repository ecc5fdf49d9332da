package agent

import (
	"fmt"
	"log/slog"
	"sync"
)

// Subscriber receives run records.
type Subscriber func(Record)

type subscription struct {
	id uint64
	fn Subscriber
}

// Bus fans run records out to subscribers. A panicking subscriber is
// recovered and logged; the remaining subscribers are still notified.
type Bus struct {
	mu     sync.RWMutex
	subs   []subscription
	nextID uint64
	logger *slog.Logger
}

// NewBus creates an empty bus. A nil logger falls back to slog.Default.
func NewBus(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{logger: logger}
}

// Subscribe adds fn and returns its unsubscribe function. Calling the
// returned function more than once is a no-op.
func (b *Bus) Subscribe(fn Subscriber) func() {
	if fn == nil {
		return func() {}
	}
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subs = append(b.subs, subscription{id: id, fn: fn})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(id) })
	}
}

func (b *Bus) remove(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, s := range b.subs {
		if s.id == id {
			b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
			return
		}
	}
}

// Publish delivers rec to every current subscriber in subscription order.
func (b *Bus) Publish(rec Record) {
	b.mu.RLock()
	subs := make([]subscription, len(b.subs))
	copy(subs, b.subs)
	b.mu.RUnlock()

	for _, s := range subs {
		if err := deliver(s.fn, rec); err != nil {
			b.logger.Warn("subscriber failed", "agent", rec.Agent, "error", err)
		}
	}
}

func deliver(fn Subscriber, rec Record) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("subscriber panic: %v", r)
		}
	}()
	fn(rec)
	return nil
}
