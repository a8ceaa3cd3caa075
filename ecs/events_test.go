package ecs

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type pingEvent struct{ N int }
type pongEvent struct{ N int }

func TestEventBusDeliversInPublishOrder(t *testing.T) {
	bus := NewEventBus()
	var log []string

	Subscribe(bus, func(e pingEvent) { log = append(log, "ping", string(rune('0'+e.N))) })
	Subscribe(bus, func(e pongEvent) { log = append(log, "pong", string(rune('0'+e.N))) })

	Publish(bus, pingEvent{N: 1})
	Publish(bus, pongEvent{N: 2})
	Publish(bus, pingEvent{N: 3})
	require.Empty(t, log, "publish must not deliver synchronously")
	require.Equal(t, 3, bus.Pending())

	bus.Flush()
	require.Equal(t, []string{"ping", "1", "pong", "2", "ping", "3"}, log)
	require.Zero(t, bus.Pending())
}

func TestEventBusRelease(t *testing.T) {
	bus := NewEventBus()
	calls := 0
	sub := Subscribe(bus, func(pingEvent) { calls++ })

	Publish(bus, pingEvent{})
	bus.Flush()
	require.Equal(t, 1, calls)

	sub.Release()
	sub.Release()
	Publish(bus, pingEvent{})
	bus.Flush()
	require.Equal(t, 1, calls)
}

func TestEventBusHandlerPublishesDuringFlush(t *testing.T) {
	bus := NewEventBus()
	var got []int
	Subscribe(bus, func(e pingEvent) { Publish(bus, pongEvent{N: e.N + 1}) })
	Subscribe(bus, func(e pongEvent) { got = append(got, e.N) })

	Publish(bus, pingEvent{N: 1})
	bus.Flush()
	require.Equal(t, []int{2}, got)
}

func TestDeferredQueueRunsNestedDefersNextDrain(t *testing.T) {
	w := NewWorld()
	var order []int
	q := w.Deferred()
	q.Defer(func(w *World) {
		order = append(order, 1)
		w.Deferred().Defer(func(*World) { order = append(order, 3) })
	})
	q.Defer(func(*World) { order = append(order, 2) })

	q.Drain(w)
	require.Equal(t, []int{1, 2}, order)
	require.Equal(t, 1, q.Len())

	q.Drain(w)
	require.Equal(t, []int{1, 2, 3}, order)
}
