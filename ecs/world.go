package ecs

import (
	"github.com/milk9111/portalcore/ecs/component"
)

// System updates a world once per tick of the phase it is scheduled in.
type System interface {
	Update(w *World)
}

// World owns entities, component storage, the event bus and the deferred
// action queue. It is not safe for concurrent use.
type World struct {
	entities entityStore
	stores   map[component.ComponentID]storage

	events   *EventBus
	deferred DeferredQueue

	delta float64
	step  uint64
}

// NewWorld creates an empty ECS world.
func NewWorld() *World {
	return &World{
		stores: make(map[component.ComponentID]storage),
		events: NewEventBus(),
	}
}

// CreateEntity allocates a new entity.
func (w *World) CreateEntity() Entity {
	return w.entities.create()
}

// DestroyEntity removes every component of e and recycles its slot.
func (w *World) DestroyEntity(e Entity) bool {
	if w == nil || !w.entities.isAlive(e) {
		return false
	}
	for _, s := range w.stores {
		s.remove(e)
	}
	return w.entities.destroy(e)
}

// IsAlive reports whether an entity handle is valid.
func (w *World) IsAlive(e Entity) bool {
	if w == nil {
		return false
	}
	return w.entities.isAlive(e)
}

// Events returns the world event bus.
func (w *World) Events() *EventBus {
	if w == nil {
		return nil
	}
	return w.events
}

// Deferred returns the queue drained at the end of every fixed step.
func (w *World) Deferred() *DeferredQueue {
	if w == nil {
		return nil
	}
	return &w.deferred
}

// Delta is the duration in seconds of the phase currently running.
func (w *World) Delta() float64 {
	if w == nil {
		return 0
	}
	return w.delta
}

// FixedStepCount is the number of completed fixed steps.
func (w *World) FixedStepCount() uint64 {
	if w == nil {
		return 0
	}
	return w.step
}

// First returns the first live entity carrying every given kind.
func (w *World) First(kinds ...component.Kind) (Entity, bool) {
	ents := w.Query(kinds...)
	if len(ents) == 0 {
		return 0, false
	}
	return ents[0], true
}

// Query returns live entities carrying every given kind. The result is a
// fresh slice, so callers may add or remove components while iterating.
func (w *World) Query(kinds ...component.Kind) []Entity {
	if w == nil || len(kinds) == 0 {
		return nil
	}
	sets := make([]storage, 0, len(kinds))
	for _, k := range kinds {
		s, ok := w.stores[k.ID()]
		if !ok || s.len() == 0 {
			return nil
		}
		sets = append(sets, s)
	}
	smallest := sets[0]
	for _, s := range sets[1:] {
		if s.len() < smallest.len() {
			smallest = s
		}
	}
	out := make([]Entity, 0, smallest.len())
outer:
	for _, e := range smallest.entities() {
		if !w.entities.isAlive(e) {
			continue
		}
		for _, s := range sets {
			if s != smallest && !s.has(e) {
				continue outer
			}
		}
		out = append(out, e)
	}
	return out
}

func storeFor[T any](w *World, kind component.ComponentKind[T], create bool) *sparseSet[T] {
	if s, ok := w.stores[kind.ID()]; ok {
		typed, _ := s.(*sparseSet[T])
		return typed
	}
	if !create {
		return nil
	}
	s := newSparseSet[T]()
	w.stores[kind.ID()] = s
	return s
}
