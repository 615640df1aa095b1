package appointments

import (
	"context"
	"sync"
)

// dateLocks is a keyed lock table: one mutual-exclusion slot per
// calendar date, created on demand and evicted once unused. Locks for
// different dates never contend with each other.
type dateLocks struct {
	mu    sync.Mutex
	slots map[string]*dateSlot
}

type dateSlot struct {
	sem  chan struct{} // capacity 1
	refs int
}

func newDateLocks() *dateLocks {
	return &dateLocks{slots: make(map[string]*dateSlot)}
}

// Acquire blocks until the slot for date is held or ctx is done.
// Callers bound the wait through the context deadline; a ctx error is
// returned untranslated so the service can map it to ErrBusy.
func (l *dateLocks) Acquire(ctx context.Context, date string) error {
	l.mu.Lock()
	slot, ok := l.slots[date]
	if !ok {
		slot = &dateSlot{sem: make(chan struct{}, 1)}
		l.slots[date] = slot
	}
	slot.refs++
	l.mu.Unlock()

	select {
	case slot.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		l.drop(date, slot)
		return ctx.Err()
	}
}

// Release frees the slot for date. Must pair with a successful Acquire.
func (l *dateLocks) Release(date string) {
	l.mu.Lock()
	slot, ok := l.slots[date]
	l.mu.Unlock()
	if !ok {
		return
	}
	<-slot.sem
	l.drop(date, slot)
}

func (l *dateLocks) drop(date string, slot *dateSlot) {
	l.mu.Lock()
	slot.refs--
	if slot.refs <= 0 {
		delete(l.slots, date)
	}
	l.mu.Unlock()
}
