package sched

import (
	"sync"
	"time"
)

// Package sched provides the timer scheduling used by the simulator.
//
// All periodic and one-shot work in the system (telemetry ticks, fault
// auto-clear) goes through a Clock so that tests can substitute a simulated
// clock and advance time deterministically instead of sleeping on wall-clock
// timers.

// Timer is a cancellable one-shot timer.
type Timer interface {
	// Stop cancels the timer. It reports whether the timer was stopped
	// before firing.
	Stop() bool
}

// Ticker delivers repeated callbacks until stopped.
type Ticker interface {
	Stop()
}

// Clock abstracts time for the simulator.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// AfterFunc arms a one-shot timer that invokes fn after d.
	AfterFunc(d time.Duration, fn func()) Timer

	// TickEvery invokes fn every interval until the returned Ticker is
	// stopped. The first invocation happens one interval after the call.
	TickEvery(interval time.Duration, fn func()) Ticker
}

// ─── Wall clock ───────────────────────────────────────────────────────────────

type wallClock struct{}

// NewWallClock returns a Clock backed by the runtime timers.
func NewWallClock() Clock { return wallClock{} }

func (wallClock) Now() time.Time { return time.Now() }

type wallTimer struct{ t *time.Timer }

func (w wallTimer) Stop() bool { return w.t.Stop() }

func (wallClock) AfterFunc(d time.Duration, fn func()) Timer {
	return wallTimer{t: time.AfterFunc(d, fn)}
}

type wallTicker struct {
	ticker *time.Ticker
	stopCh chan struct{}
	doneCh chan struct{}
}

func (w *wallTicker) Stop() {
	close(w.stopCh)
	<-w.doneCh
}

func (wallClock) TickEvery(interval time.Duration, fn func()) Ticker {
	wt := &wallTicker{
		ticker: time.NewTicker(interval),
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
	go func() {
		defer close(wt.doneCh)
		defer wt.ticker.Stop()
		for {
			select {
			case <-wt.ticker.C:
				fn()
			case <-wt.stopCh:
				return
			}
		}
	}()
	return wt
}

// ─── Simulated clock ──────────────────────────────────────────────────────────

// simTimer is a pending entry in the simulated clock's queue.
type simTimer struct {
	at       time.Time
	fn       func()
	interval time.Duration // 0 for one-shot
	stopped  bool
	seq      uint64 // tie-break so equal deadlines fire in arm order
}

func (t *simTimer) Stop() bool {
	if t.stopped {
		return false
	}
	t.stopped = true
	return true
}

// SimClock is a deterministic Clock for tests. Time only moves when Advance
// is called; due timers fire synchronously on the advancing goroutine, in
// deadline order.
type SimClock struct {
	mu      sync.Mutex
	now     time.Time
	pending []*simTimer
	nextSeq uint64
}

// NewSimClock creates a simulated clock starting at the given time.
func NewSimClock(start time.Time) *SimClock {
	return &SimClock{now: start}
}

func (c *SimClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *SimClock) AfterFunc(d time.Duration, fn func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &simTimer{at: c.now.Add(d), fn: fn, seq: c.nextSeq}
	c.nextSeq++
	c.pending = append(c.pending, t)
	return t
}

type simTicker struct {
	t *simTimer
}

func (s *simTicker) Stop() { s.t.Stop() }

func (c *SimClock) TickEvery(interval time.Duration, fn func()) Ticker {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &simTimer{at: c.now.Add(interval), fn: fn, interval: interval, seq: c.nextSeq}
	c.nextSeq++
	c.pending = append(c.pending, t)
	return &simTicker{t: t}
}

// Advance moves simulated time forward by d, firing every timer that comes
// due along the way. Interval timers re-arm themselves; callbacks run in
// deadline order with the clock already set to their deadline, so a callback
// reading Now sees its own fire time.
func (c *SimClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now.Add(d)
	for {
		next := c.nextDueLocked(target)
		if next == nil {
			break
		}
		c.now = next.at
		if next.interval > 0 {
			next.at = next.at.Add(next.interval)
		} else {
			next.stopped = true
		}
		fn := next.fn
		c.mu.Unlock()
		fn()
		c.mu.Lock()
	}
	c.now = target
	c.compactLocked()
	c.mu.Unlock()
}

// nextDueLocked returns the earliest live timer with deadline <= target.
func (c *SimClock) nextDueLocked(target time.Time) *simTimer {
	var best *simTimer
	for _, t := range c.pending {
		if t.stopped || t.at.After(target) {
			continue
		}
		if best == nil || t.at.Before(best.at) || (t.at.Equal(best.at) && t.seq < best.seq) {
			best = t
		}
	}
	return best
}

func (c *SimClock) compactLocked() {
	live := c.pending[:0]
	for _, t := range c.pending {
		if !t.stopped {
			live = append(live, t)
		}
	}
	c.pending = live
}
