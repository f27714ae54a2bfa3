// Package waiter lets a handler block until a matching gateway event arrives.
package waiter

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrTimeout is returned by Wait when no matching event arrived in time.
var ErrTimeout = errors.New("timed out waiting for event")

// Registration is a waiter that already receives events. Events dispatched
// between Register and Wait are kept for Wait.
type Registration[T any] struct {
	d     *Dispatcher[T]
	id    uint64
	check func(T) bool
	ch    chan T

	// delivered is guarded by d.mu
	delivered bool
}

// Dispatcher fans events of one type out to pending waiters.
type Dispatcher[T any] struct {
	mu      sync.Mutex
	nextID  uint64
	waiters map[uint64]*Registration[T]
}

// NewDispatcher creates an empty dispatcher
func NewDispatcher[T any]() *Dispatcher[T] {
	return &Dispatcher[T]{waiters: make(map[uint64]*Registration[T])}
}

// Register starts collecting the first event satisfying check. A nil check
// matches every event. The caller must Wait or Cancel.
func (d *Dispatcher[T]) Register(check func(T) bool) *Registration[T] {
	if check == nil {
		check = func(T) bool { return true }
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.nextID++
	r := &Registration[T]{d: d, id: d.nextID, check: check, ch: make(chan T, 1)}
	d.waiters[r.id] = r
	return r
}

// Wait blocks until an event satisfying check is dispatched, the timeout
// elapses or ctx is done. A nil check matches every event.
func (d *Dispatcher[T]) Wait(ctx context.Context, timeout time.Duration, check func(T) bool) (T, error) {
	return d.Register(check).Wait(ctx, timeout)
}

// Wait blocks until the registered event arrives, the timeout elapses or
// ctx is done. Call it at most once; the registration is gone once Wait
// returns.
func (r *Registration[T]) Wait(ctx context.Context, timeout time.Duration) (T, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	var err error
	select {
	case ev := <-r.ch:
		return ev, nil
	case <-timer.C:
		err = ErrTimeout
	case <-ctx.Done():
		err = ctx.Err()
	}

	// Dispatch may have claimed the event after the deadline but before we
	// unregistered; it was reported as consumed so it must be returned.
	if r.release() {
		return <-r.ch, nil
	}

	var zero T
	return zero, err
}

// Cancel unregisters the waiter without waiting
func (r *Registration[T]) Cancel() {
	r.release()
}

// release unregisters the waiter and reports whether an event was delivered
func (r *Registration[T]) release() bool {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()

	delete(r.d.waiters, r.id)
	return r.delivered
}

// Dispatch delivers ev to every waiter whose check accepts it and reports
// whether any did. Each waiter receives at most one event.
func (d *Dispatcher[T]) Dispatch(ev T) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	delivered := false
	for id, w := range d.waiters {
		if !w.check(ev) {
			continue
		}
		w.ch <- ev
		w.delivered = true
		delete(d.waiters, id)
		delivered = true
	}
	return delivered
}

// Pending returns the number of registered waiters
func (d *Dispatcher[T]) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.waiters)
}
