// Package lock serializes reconciliation runs per (event, platform) key.
package lock

import (
	"context"
	"errors"
	"sync"
)

// ErrNotObtained is returned when the key is already held by someone else.
var ErrNotObtained = errors.New("lock not obtained")

// Release frees a held lock.
type Release func(ctx context.Context) error

// Locker hands out exclusive, non-blocking locks by key.
type Locker interface {
	// Lock acquires key or fails immediately with ErrNotObtained.
	Lock(ctx context.Context, key string) (Release, error)
}

// Local is an in-process Locker for single instance deployments and tests.
type Local struct {
	mu   sync.Mutex
	held map[string]struct{}
}

// NewLocal creates an empty in-process locker.
func NewLocal() *Local {
	return &Local{held: make(map[string]struct{})}
}

// Lock implements Locker.
func (l *Local) Lock(_ context.Context, key string) (Release, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, busy := l.held[key]; busy {
		return nil, ErrNotObtained
	}
	l.held[key] = struct{}{}

	var once sync.Once
	return func(context.Context) error {
		once.Do(func() {
			l.mu.Lock()
			delete(l.held, key)
			l.mu.Unlock()
		})
		return nil
	}, nil
}
