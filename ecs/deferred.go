package ecs

// DeferredQueue holds world mutations that must not run while physics is
// mid-step. The scheduler drains it once at the end of each fixed step.
type DeferredQueue struct {
	actions  []func(*World)
	draining bool
}

// Defer queues fn. Actions queued while draining run on the next drain.
func (q *DeferredQueue) Defer(fn func(*World)) {
	if q == nil || fn == nil {
		return
	}
	q.actions = append(q.actions, fn)
}

func (q *DeferredQueue) Len() int {
	if q == nil {
		return 0
	}
	return len(q.actions)
}

// Drain runs queued actions in FIFO order.
func (q *DeferredQueue) Drain(w *World) {
	if q == nil || q.draining || len(q.actions) == 0 {
		return
	}
	q.draining = true
	defer func() { q.draining = false }()

	batch := q.actions
	q.actions = nil
	for _, fn := range batch {
		fn(w)
	}
}
