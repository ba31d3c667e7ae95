package event

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestBusFansOutToSubscribers(t *testing.T) {
	t.Parallel()

	bus := NewBus()
	first, unsubscribeFirst := bus.Subscribe()
	second, unsubscribeSecond := bus.Subscribe()
	defer unsubscribeSecond()

	bus.Publish(Event{Type: TypeNotifySuccess, Message: "saved"})

	for _, ch := range []<-chan Event{first, second} {
		select {
		case e := <-ch:
			require.Equal(t, "saved", e.Message)
			require.NotEmpty(t, e.ID)
			require.NotEmpty(t, e.Timestamp)
		case <-time.After(time.Second):
			t.Fatal("event not delivered")
		}
	}

	unsubscribeFirst()
	unsubscribeFirst()
	_, open := <-first
	require.False(t, open)
}

func TestInboxCollectsNotificationsAndRedirect(t *testing.T) {
	t.Parallel()

	bus := NewBus()
	inbox := NewInbox(2)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go inbox.Run(ctx, bus)

	notifier := NewNotifier(bus)
	require.Eventually(t, func() bool {
		bus.mu.RLock()
		defer bus.mu.RUnlock()
		return len(bus.subscribers) == 1
	}, time.Second, 5*time.Millisecond)

	notifier.Info("one")
	notifier.Warning("two")
	notifier.Error("three")
	notifier.Navigate("/login")

	require.Eventually(t, func() bool {
		inbox.mu.Lock()
		defer inbox.mu.Unlock()
		return inbox.redirect == "/login"
	}, time.Second, 5*time.Millisecond)

	events, redirect := inbox.Drain()
	require.Equal(t, "/login", redirect)
	require.Len(t, events, 2)
	require.Equal(t, "two", events[0].Message)
	require.Equal(t, TypeNotifyError, events[1].Type)

	events, redirect = inbox.Drain()
	require.Empty(t, events)
	require.Empty(t, redirect)
}

func TestNilNotifierIsSafe(t *testing.T) {
	t.Parallel()

	var n *Notifier
	n.Success("ignored")
	n.Navigate("/login")
}

func TestBusFiltersByType(t *testing.T) {
	t.Parallel()

	bus := NewBus()
	sessions, unsubscribe := bus.Subscribe(TypeSessionLogout)
	defer unsubscribe()

	bus.Publish(Event{Type: TypeNotifyInfo, Message: "ignored"})
	bus.Publish(Event{Type: TypeSessionLogout})

	select {
	case e := <-sessions:
		require.Equal(t, TypeSessionLogout, e.Type)
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}
	require.Empty(t, sessions)
}
