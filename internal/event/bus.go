package event

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

const subscriberBuffer = 64

type subscriber struct {
	ch    chan Event
	types map[Type]struct{}
}

func (s subscriber) wants(t Type) bool {
	if len(s.types) == 0 {
		return true
	}
	_, ok := s.types[t]
	return ok
}

// InMemoryBus fans events out to buffered subscribers. Publish never blocks:
// a subscriber whose buffer is full misses the event.
type InMemoryBus struct {
	mu          sync.RWMutex
	subscribers map[string]subscriber
}

func NewBus() *InMemoryBus {
	return &InMemoryBus{subscribers: map[string]subscriber{}}
}

func (b *InMemoryBus) Publish(e Event) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Timestamp == "" {
		e.Timestamp = time.Now().UTC().Format(time.RFC3339Nano)
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	for id, sub := range b.subscribers {
		if !sub.wants(e.Type) {
			continue
		}
		select {
		case sub.ch <- e:
		default:
			slog.Warn("event dropped for slow subscriber", "subscriber", id, "type", e.Type)
		}
	}
}

// Subscribe registers a listener for the given types, or for every type when
// none are given. The returned func closes the channel and is idempotent.
func (b *InMemoryBus) Subscribe(types ...Type) (<-chan Event, func()) {
	sub := subscriber{ch: make(chan Event, subscriberBuffer)}
	if len(types) > 0 {
		sub.types = make(map[Type]struct{}, len(types))
		for _, t := range types {
			sub.types[t] = struct{}{}
		}
	}

	id := uuid.NewString()
	b.mu.Lock()
	b.subscribers[id] = sub
	b.mu.Unlock()

	var once sync.Once
	return sub.ch, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subscribers, id)
			b.mu.Unlock()
			close(sub.ch)
		})
	}
}
