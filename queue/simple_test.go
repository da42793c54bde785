package queue

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSimpleFIFO(t *testing.T) {
	requireT := require.New(t)

	q := NewSimple[int]()
	requireT.True(q.IsEmpty())

	q.Enqueue(42)
	q.Enqueue(33)
	requireT.False(q.IsEmpty())

	requireT.Equal(42, *q.Dequeue())

	q.Enqueue(99)
	requireT.Equal(33, *q.Dequeue())
	requireT.Equal(99, *q.Dequeue())
	requireT.True(q.IsEmpty())
}

func TestSimpleHeldElementIsNotQueued(t *testing.T) {
	requireT := require.New(t)

	q := NewSimple[string]()
	q.Enqueue("a")

	held := q.Dequeue()
	requireT.Equal("a", *held)
	requireT.True(q.IsEmpty())

	q.Enqueue("b")
	requireT.False(q.IsEmpty())

	// The held reference stays valid until the next dequeue.
	requireT.Equal("a", *held)
	requireT.Equal("b", *q.Dequeue())
}

func TestSimpleBlockingDequeue(t *testing.T) {
	requireT := require.New(t)

	q := NewSimple[int]()

	var wg sync.WaitGroup
	wg.Add(1)
	var got int
	go func() {
		defer wg.Done()
		got = *q.Dequeue()
	}()

	q.Enqueue(7)
	wg.Wait()

	requireT.Equal(7, got)
}

func TestSimpleConcurrentFIFO(t *testing.T) {
	requireT := require.New(t)

	const count = 10000

	q := NewSimple[int]()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < count; i++ {
			q.Enqueue(i)
		}
	}()

	for i := 0; i < count; i++ {
		requireT.Equal(i, *q.Dequeue())
	}
	wg.Wait()
}
