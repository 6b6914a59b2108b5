package services

import (
	"context"
	"sync"
)

type flightLock struct {
	ch   chan struct{}
	refs int
}

// FlightLocker serializes work on a single flight. Entries are dropped once
// no goroutine holds or waits for them.
type FlightLocker struct {
	mu    sync.Mutex
	locks map[string]*flightLock
}

func NewFlightLocker() *FlightLocker {
	return &FlightLocker{locks: make(map[string]*flightLock)}
}

// Lock blocks until the flight is free or ctx is done. The returned unlock is safe to call more than once.
func (l *FlightLocker) Lock(ctx context.Context, flightID string) (func(), error) {
	l.mu.Lock()
	entry, ok := l.locks[flightID]
	if !ok {
		entry = &flightLock{ch: make(chan struct{}, 1)}
		l.locks[flightID] = entry
	}
	entry.refs++
	l.mu.Unlock()

	select {
	case entry.ch <- struct{}{}:
	case <-ctx.Done():
		l.release(flightID, entry)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-entry.ch
			l.release(flightID, entry)
		})
	}, nil
}

func (l *FlightLocker) release(flightID string, entry *flightLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	entry.refs--
	if entry.refs == 0 {
		delete(l.locks, flightID)
	}
}

// Len returns the number of flights currently locked or waited on.
func (l *FlightLocker) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
