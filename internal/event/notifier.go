package event

import (
	"context"
	"log/slog"
	"sync"
)

// Notifier publishes transient operator messages, the console's toasts.
type Notifier struct {
	bus Bus
}

func NewNotifier(bus Bus) *Notifier {
	return &Notifier{bus: bus}
}

func (n *Notifier) Success(message string) { n.publish(TypeNotifySuccess, message) }
func (n *Notifier) Info(message string)    { n.publish(TypeNotifyInfo, message) }
func (n *Notifier) Warning(message string) { n.publish(TypeNotifyWarning, message) }
func (n *Notifier) Error(message string)   { n.publish(TypeNotifyError, message) }

func (n *Notifier) publish(typ Type, message string) {
	if n == nil || n.bus == nil {
		return
	}
	n.bus.Publish(Event{Type: typ, Message: message})
}

// Navigate asks the UI to move to path, e.g. after a forced logout.
func (n *Notifier) Navigate(path string) {
	if n == nil || n.bus == nil {
		return
	}
	n.bus.Publish(Event{Type: TypeNavigate, Payload: map[string]string{"path": path}})
}

// Inbox buffers the most recent events until the UI drains them.
type Inbox struct {
	mu       sync.Mutex
	capacity int
	events   []Event
	redirect string
}

func NewInbox(capacity int) *Inbox {
	if capacity <= 0 {
		capacity = 50
	}
	return &Inbox{capacity: capacity}
}

// Run consumes bus events until ctx is done.
func (i *Inbox) Run(ctx context.Context, bus Bus) {
	events, unsubscribe := bus.Subscribe(TypeNotifySuccess, TypeNotifyInfo, TypeNotifyWarning, TypeNotifyError, TypeNavigate)
	defer unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-events:
			if !ok {
				return
			}
			i.Add(e)
		}
	}
}

func (i *Inbox) Add(e Event) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if e.Type == TypeNavigate {
		if payload, ok := e.Payload.(map[string]string); ok {
			i.redirect = payload["path"]
		}
	}

	if !e.IsNotification() {
		return
	}

	i.events = append(i.events, e)
	if len(i.events) > i.capacity {
		dropped := len(i.events) - i.capacity
		slog.Debug("inbox full, dropping oldest notifications", "dropped", dropped)
		i.events = append([]Event(nil), i.events[dropped:]...)
	}
}

// Drain returns buffered notifications and any pending redirect, then clears them.
func (i *Inbox) Drain() ([]Event, string) {
	i.mu.Lock()
	defer i.mu.Unlock()

	out := i.events
	redirect := i.redirect
	i.events = nil
	i.redirect = ""
	if out == nil {
		out = []Event{}
	}
	return out, redirect
}
