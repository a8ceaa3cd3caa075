package ecs

import "github.com/milk9111/portalcore/ecs/component"

// CreateEntity allocates a new entity in w.
func CreateEntity(w *World) Entity {
	return w.CreateEntity()
}

// DestroyEntity removes e and all of its components.
func DestroyEntity(w *World, e Entity) bool {
	return w.DestroyEntity(e)
}

func IsAlive(w *World, e Entity) bool {
	return w.IsAlive(e)
}

// Entities returns every live entity in creation-slot order.
func Entities(w *World) []Entity {
	if w == nil {
		return nil
	}
	out := make([]Entity, 0, w.entities.count)
	w.entities.each(func(e Entity) { out = append(out, e) })
	return out
}

// Add attaches value to e, replacing any existing value of the same kind.
func Add[T any](w *World, e Entity, kind component.ComponentKind[T], value *T) error {
	if w == nil || !w.IsAlive(e) {
		return component.ErrEntityNotAlive
	}
	if !kind.Valid() {
		return component.ErrInvalidComponentKind
	}
	if value == nil {
		return component.ErrNilComponent
	}
	storeFor(w, kind, true).set(e, value)
	return nil
}

func Remove[T any](w *World, e Entity, kind component.ComponentKind[T]) bool {
	if w == nil {
		return false
	}
	s := storeFor(w, kind, false)
	if s == nil {
		return false
	}
	return s.remove(e)
}

func Has[T any](w *World, e Entity, kind component.ComponentKind[T]) bool {
	if w == nil || !w.IsAlive(e) {
		return false
	}
	s := storeFor(w, kind, false)
	return s != nil && s.has(e)
}

// Get returns the stored pointer so callers can mutate the component in place.
func Get[T any](w *World, e Entity, kind component.ComponentKind[T]) (*T, bool) {
	if w == nil || !w.IsAlive(e) {
		return nil, false
	}
	s := storeFor(w, kind, false)
	if s == nil {
		return nil, false
	}
	return s.get(e)
}

// ForEach visits every live entity carrying kind.
func ForEach[A any](w *World, ka component.ComponentKind[A], fn func(Entity, *A)) {
	if w == nil || fn == nil {
		return
	}
	sa := storeFor(w, ka, false)
	if sa == nil {
		return
	}
	for _, e := range append([]Entity(nil), sa.entities()...) {
		a, ok := sa.get(e)
		if !ok || !w.IsAlive(e) {
			continue
		}
		fn(e, a)
	}
}

func ForEach2[A, B any](w *World, ka component.ComponentKind[A], kb component.ComponentKind[B], fn func(Entity, *A, *B)) {
	if w == nil || fn == nil {
		return
	}
	sa, sb := storeFor(w, ka, false), storeFor(w, kb, false)
	if sa == nil || sb == nil {
		return
	}
	for _, e := range w.Query(ka, kb) {
		a, okA := sa.get(e)
		b, okB := sb.get(e)
		if okA && okB {
			fn(e, a, b)
		}
	}
}

func ForEach3[A, B, C any](w *World, ka component.ComponentKind[A], kb component.ComponentKind[B], kc component.ComponentKind[C], fn func(Entity, *A, *B, *C)) {
	if w == nil || fn == nil {
		return
	}
	sa, sb, sc := storeFor(w, ka, false), storeFor(w, kb, false), storeFor(w, kc, false)
	if sa == nil || sb == nil || sc == nil {
		return
	}
	for _, e := range w.Query(ka, kb, kc) {
		a, okA := sa.get(e)
		b, okB := sb.get(e)
		c, okC := sc.get(e)
		if okA && okB && okC {
			fn(e, a, b, c)
		}
	}
}

func ForEach4[A, B, C, D any](w *World, ka component.ComponentKind[A], kb component.ComponentKind[B], kc component.ComponentKind[C], kd component.ComponentKind[D], fn func(Entity, *A, *B, *C, *D)) {
	if w == nil || fn == nil {
		return
	}
	sa, sb, sc, sd := storeFor(w, ka, false), storeFor(w, kb, false), storeFor(w, kc, false), storeFor(w, kd, false)
	if sa == nil || sb == nil || sc == nil || sd == nil {
		return
	}
	for _, e := range w.Query(ka, kb, kc, kd) {
		a, okA := sa.get(e)
		b, okB := sb.get(e)
		c, okC := sc.get(e)
		d, okD := sd.get(e)
		if okA && okB && okC && okD {
			fn(e, a, b, c, d)
		}
	}
}
