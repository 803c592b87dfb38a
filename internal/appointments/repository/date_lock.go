package repository

import (
	"context"
	"fmt"
	"sync"

	appointmentserrors "motoagenda/internal/appointments/errors"
)

// dateLocker hands out one lock per date so bookings for different dates
// never wait on each other.
type dateLocker struct {
	mu    sync.Mutex
	locks map[string]*dateLock
}

// dateLock is a one-slot semaphore so waiters can give up on ctx.
type dateLock struct {
	slot chan struct{}
	refs int
}

func newDateLocker() *dateLocker {
	return &dateLocker{locks: make(map[string]*dateLock)}
}

// Lock blocks until date is free or ctx is done. On success it returns the
// matching unlock func.
func (l *dateLocker) Lock(ctx context.Context, date string) (func(), error) {
	l.mu.Lock()
	lock, ok := l.locks[date]
	if !ok {
		lock = &dateLock{slot: make(chan struct{}, 1)}
		l.locks[date] = lock
	}
	lock.refs++
	l.mu.Unlock()

	select {
	case lock.slot <- struct{}{}:
	case <-ctx.Done():
		l.release(date, lock)
		return nil, fmt.Errorf("%w: %w", appointmentserrors.ErrDateLocked, ctx.Err())
	}

	return func() {
		<-lock.slot
		l.release(date, lock)
	}, nil
}

func (l *dateLocker) release(date string, lock *dateLock) {
	l.mu.Lock()
	defer l.mu.Unlock()

	lock.refs--
	if lock.refs == 0 {
		delete(l.locks, date)
	}
}
