package synced

import (
	"sync"

	"github.com/pkg/errors"
)

// Synchronized wraps data and allows access to it only while a lock is held.
// A single bracketed call goes through Do; Tx holds the lock across multiple
// calls until ended.
//
// The lock policy is injectable: an internal mutex by default, an external
// lock through WithLocker, or lock methods of the data itself through
// WithDataLock.
type Synchronized[T any] struct {
	data T
	lock sync.Locker
}

// Option configures the lock policy.
type Option[T any] func(*Synchronized[T]) error

// WithLocker protects the data with an externally owned lock.
func WithLocker[T any](lock sync.Locker) Option[T] {
	return func(s *Synchronized[T]) error {
		s.lock = lock
		return nil
	}
}

// WithDataLock protects the data with its own Lock/Unlock methods.
func WithDataLock[T any]() Option[T] {
	return func(s *Synchronized[T]) error {
		lock, ok := any(&s.data).(sync.Locker)
		if !ok {
			return errors.Errorf("data type %T does not provide lock methods", s.data)
		}
		s.lock = lock
		return nil
	}
}

// New wraps data. Without options the data is protected by an internal
// mutex.
func New[T any](data T, opts ...Option[T]) (*Synchronized[T], error) {
	s := &Synchronized[T]{
		data: data,
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	if s.lock == nil {
		s.lock = &sync.Mutex{}
	}
	return s, nil
}

// Do runs fn with the lock held. The lock is released on all exit paths,
// including a panicking fn.
func (s *Synchronized[T]) Do(fn func(data *T)) {
	s.lock.Lock()
	defer s.lock.Unlock()

	fn(&s.data)
}

// Tx acquires the lock and returns a transaction granting access until End
// is called.
func (s *Synchronized[T]) Tx() *Tx[T] {
	s.lock.Lock()
	return &Tx[T]{s: s}
}

// Tx is an in-progress transaction on synchronized data.
type Tx[T any] struct {
	s *Synchronized[T]
}

// Data returns the wrapped data. Must not be retained past End.
func (t *Tx[T]) Data() *T {
	return &t.s.data
}

// End releases the lock. Safe to call more than once, so it may be deferred
// next to an early explicit call.
func (t *Tx[T]) End() {
	if t.s != nil {
		t.s.lock.Unlock()
		t.s = nil
	}
}
