package queue

import (
	"sync"

	"github.com/outofforest/flux/gate"
)

// Simple is a FIFO of homogeneous elements with the same contract as Queue:
// one producer, one consumer, and a dequeued reference staying valid until
// the next Dequeue.
type Simple[T any] struct {
	mu    sync.Mutex
	items []*T
	held  bool

	sem *gate.Gate
}

// NewSimple returns an empty queue.
func NewSimple[T any]() *Simple[T] {
	return &Simple[T]{
		sem: gate.New(0),
	}
}

// Enqueue appends a copy of element to the queue.
func (q *Simple[T]) Enqueue(element T) {
	q.mu.Lock()
	q.items = append(q.items, &element)
	q.mu.Unlock()

	q.sem.Release(1)
}

// Dequeue returns the oldest element, blocking until one is available. The
// returned pointer is valid until the next call to Dequeue.
func (q *Simple[T]) Dequeue() *T {
	if q.held {
		q.mu.Lock()
		q.items = q.items[1:]
		q.held = false
		q.mu.Unlock()
	}

	q.sem.Acquire(1)

	q.mu.Lock()
	defer q.mu.Unlock()

	q.held = true
	return q.items[0]
}

// IsEmpty returns true if there are no elements waiting beyond the one
// currently held by the consumer.
func (q *Simple[T]) IsEmpty() bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.held {
		return len(q.items) < 2
	}
	return len(q.items) == 0
}
