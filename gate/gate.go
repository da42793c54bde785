package gate

import (
	"sync"
	"time"
)

// Gate is a blocking non-negative counter. Releasing adds credits, acquiring
// takes them, blocking until enough are available.
//
// It is the sole synchronization primitive under the heterogeneous queue.
// Safe for one waiter and any number of notifiers.
type Gate struct {
	mu    sync.Mutex
	cond  *sync.Cond
	count uint64
}

// New returns a gate holding initial credits.
func New(initial uint64) *Gate {
	g := &Gate{
		count: initial,
	}
	g.cond = sync.NewCond(&g.mu)
	return g
}

// Release adds n credits and wakes waiters.
func (g *Gate) Release(n uint64) {
	g.mu.Lock()
	g.count += n
	g.mu.Unlock()
	g.cond.Broadcast()
}

// Acquire blocks until n credits are available, then takes them.
func (g *Gate) Acquire(n uint64) {
	g.mu.Lock()
	defer g.mu.Unlock()

	for g.count < n {
		g.cond.Wait()
	}
	g.count -= n
}

// TryAcquire takes n credits if they are available right now.
func (g *Gate) TryAcquire(n uint64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.count < n {
		return false
	}
	g.count -= n
	return true
}

// AcquireWithin takes n credits if they become available within d.
func (g *Gate) AcquireWithin(n uint64, d time.Duration) bool {
	deadline := time.Now().Add(d)

	g.mu.Lock()
	defer g.mu.Unlock()

	for g.count < n {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return false
		}

		// sync.Cond has no timed wait, so the deadline broadcasts.
		timer := time.AfterFunc(remaining, func() {
			g.mu.Lock()
			g.cond.Broadcast()
			g.mu.Unlock()
		})
		g.cond.Wait()
		timer.Stop()
	}
	g.count -= n
	return true
}

// Count returns the current number of credits. The value is stale the moment
// it is returned and may be used only as a hint.
func (g *Gate) Count() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.count
}
