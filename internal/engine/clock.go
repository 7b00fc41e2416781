package engine

import (
	"sync"
	"time"
)

// Clock schedules at most one pending timer per session. Scheduling
// replaces the previous timer instead of stacking; every schedule
// hands out a fresh generation number and the actor drops timeout
// events whose generation is stale, so cancellation always wins a
// race with firing.
type Clock struct {
	mu      sync.Mutex
	nextGen uint64
	pending map[string]*pendingTimer
}

type pendingTimer struct {
	gen   uint64
	timer *time.Timer
}

func NewClock() *Clock {
	return &Clock{pending: make(map[string]*pendingTimer)}
}

// Schedule arms a timer for the session and returns its generation.
// fire runs on its own goroutine when the delay elapses.
func (c *Clock) Schedule(sessionID string, delay time.Duration, fire func(gen uint64)) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	if prev, ok := c.pending[sessionID]; ok {
		prev.timer.Stop()
	}
	c.nextGen++
	gen := c.nextGen
	c.pending[sessionID] = &pendingTimer{
		gen: gen,
		timer: time.AfterFunc(delay, func() {
			c.clear(sessionID, gen)
			fire(gen)
		}),
	}
	return gen
}

// Cancel drops the session's pending timer, if any. Safe to call when
// none is armed.
func (c *Clock) Cancel(sessionID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if p, ok := c.pending[sessionID]; ok {
		p.timer.Stop()
		delete(c.pending, sessionID)
	}
}

// Pending reports whether the session currently has an armed timer.
func (c *Clock) Pending(sessionID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.pending[sessionID]
	return ok
}

func (c *Clock) clear(sessionID string, gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if p, ok := c.pending[sessionID]; ok && p.gen == gen {
		delete(c.pending, sessionID)
	}
}
