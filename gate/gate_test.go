package gate

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestAcquireRelease(t *testing.T) {
	requireT := require.New(t)

	g := New(3)
	requireT.EqualValues(3, g.Count())

	g.Acquire(2)
	requireT.EqualValues(1, g.Count())

	g.Release(4)
	requireT.EqualValues(5, g.Count())

	g.Acquire(5)
	requireT.EqualValues(0, g.Count())
}

func TestTryAcquire(t *testing.T) {
	requireT := require.New(t)

	g := New(2)
	requireT.True(g.TryAcquire(2))
	requireT.False(g.TryAcquire(1))
	requireT.EqualValues(0, g.Count())

	g.Release(1)
	requireT.False(g.TryAcquire(2))
	requireT.True(g.TryAcquire(1))
}

func TestAcquireBlocksUntilReleased(t *testing.T) {
	requireT := require.New(t)

	g := New(0)
	acquired := make(chan struct{})

	go func() {
		g.Acquire(3)
		close(acquired)
	}()

	select {
	case <-acquired:
		requireT.Fail("acquire succeeded without credits")
	case <-time.After(50 * time.Millisecond):
	}

	// Credits may arrive from many notifiers in pieces.
	g.Release(1)
	g.Release(1)
	g.Release(1)

	select {
	case <-acquired:
	case <-time.After(time.Second):
		requireT.Fail("acquire did not wake up")
	}
	requireT.EqualValues(0, g.Count())
}

func TestAcquireWithin(t *testing.T) {
	requireT := require.New(t)

	g := New(1)
	requireT.True(g.AcquireWithin(1, time.Second))
	requireT.False(g.AcquireWithin(1, 20*time.Millisecond))

	var wg sync.WaitGroup
	wg.Add(1)
	var ok bool
	go func() {
		defer wg.Done()
		ok = g.AcquireWithin(2, time.Second)
	}()

	time.Sleep(20 * time.Millisecond)
	g.Release(2)
	wg.Wait()

	requireT.True(ok)
	requireT.EqualValues(0, g.Count())
}

func TestCountIsNeverNegative(t *testing.T) {
	requireT := require.New(t)

	g := New(0)
	for i := 0; i < 100; i++ {
		g.Release(1)
	}
	for i := 0; i < 100; i++ {
		g.Acquire(1)
	}
	requireT.False(g.TryAcquire(1))
	requireT.EqualValues(0, g.Count())
}
