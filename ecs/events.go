package ecs

import "reflect"

// EventBus delivers typed events to subscribers. Publish only enqueues;
// handlers run when Flush is called, in publish order.
type EventBus struct {
	handlers map[reflect.Type][]*subscriber
	queue    []queuedEvent
	nextID   uint64
}

type queuedEvent struct {
	typ   reflect.Type
	value any
}

type subscriber struct {
	id uint64
	fn func(any)
}

// Subscription is returned by Subscribe. Release stops further delivery.
type Subscription struct {
	bus *EventBus
	typ reflect.Type
	id  uint64
}

// maxFlushRounds bounds handlers that keep publishing from inside Flush.
const maxFlushRounds = 64

func NewEventBus() *EventBus {
	return &EventBus{handlers: make(map[reflect.Type][]*subscriber)}
}

// Subscribe registers fn for events of type E.
func Subscribe[E any](bus *EventBus, fn func(E)) Subscription {
	if bus == nil || fn == nil {
		return Subscription{}
	}
	typ := reflect.TypeOf((*E)(nil)).Elem()
	bus.nextID++
	sub := &subscriber{
		id: bus.nextID,
		fn: func(v any) { fn(v.(E)) },
	}
	bus.handlers[typ] = append(bus.handlers[typ], sub)
	return Subscription{bus: bus, typ: typ, id: sub.id}
}

// Publish queues evt for the next Flush.
func Publish[E any](bus *EventBus, evt E) {
	if bus == nil {
		return
	}
	bus.queue = append(bus.queue, queuedEvent{typ: reflect.TypeOf((*E)(nil)).Elem(), value: evt})
}

// Release unsubscribes. It is safe to call more than once.
func (s Subscription) Release() {
	if s.bus == nil {
		return
	}
	subs := s.bus.handlers[s.typ]
	for i, sub := range subs {
		if sub.id == s.id {
			s.bus.handlers[s.typ] = append(subs[:i:i], subs[i+1:]...)
			return
		}
	}
}

// Pending reports the number of queued events.
func (b *EventBus) Pending() int {
	if b == nil {
		return 0
	}
	return len(b.queue)
}

// Flush delivers queued events. Events published by handlers are delivered
// in the same flush after the current batch.
func (b *EventBus) Flush() {
	if b == nil {
		return
	}
	for round := 0; round < maxFlushRounds && len(b.queue) > 0; round++ {
		batch := b.queue
		b.queue = nil
		for _, evt := range batch {
			subs := append([]*subscriber(nil), b.handlers[evt.typ]...)
			for _, sub := range subs {
				sub.fn(evt.value)
			}
		}
	}
}

// Clear drops queued events without delivering them.
func (b *EventBus) Clear() {
	if b == nil {
		return
	}
	b.queue = nil
}
