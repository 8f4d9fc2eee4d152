// Package ratelimit implements a per-IP sliding-window limiter used to cap
// REST requests and room-join attempts.
package ratelimit

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// SlidingWindow caps the number of events per client address inside a rolling
// time window. Histories are pruned on each access by filtering out entries
// older than the window; the map itself is never destroyed, only pruned.
type SlidingWindow struct {
	mu      sync.Mutex
	events  map[string][]time.Time
	window  time.Duration
	cap     int
	clock   clockwork.Clock
	lastGC  time.Time
	gcEvery time.Duration
}

// New creates a limiter allowing at most cap events per window for each
// client address.
func New(window time.Duration, cap int) *SlidingWindow {
	return NewWithClock(window, cap, clockwork.NewRealClock())
}

// NewWithClock creates a limiter with an injected clock for tests.
func NewWithClock(window time.Duration, cap int, clock clockwork.Clock) *SlidingWindow {
	return &SlidingWindow{
		events:  make(map[string][]time.Time),
		window:  window,
		cap:     cap,
		clock:   clock,
		lastGC:  clock.Now(),
		gcEvery: window,
	}
}

// Allow records an event for addr and reports whether it fits inside the
// window. A rejected event is not recorded, so hammering a full window does
// not extend the lockout.
func (l *SlidingWindow) Allow(addr string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock.Now()
	cutoff := now.Add(-l.window)

	recent := prune(l.events[addr], cutoff)
	if len(recent) >= l.cap {
		l.events[addr] = recent
		return false
	}

	l.events[addr] = append(recent, now)
	l.maybeSweep(now, cutoff)
	return true
}

// prune drops timestamps at or before cutoff, keeping order.
func prune(ts []time.Time, cutoff time.Time) []time.Time {
	// Timestamps are appended in order; find the first one still inside the
	// window and reslice.
	for i, t := range ts {
		if t.After(cutoff) {
			return ts[i:]
		}
	}
	return nil
}

// maybeSweep walks the whole map at most once per window so idle addresses
// do not accumulate forever.
func (l *SlidingWindow) maybeSweep(now time.Time, cutoff time.Time) {
	if now.Sub(l.lastGC) < l.gcEvery {
		return
	}
	l.lastGC = now
	for addr, ts := range l.events {
		if recent := prune(ts, cutoff); len(recent) == 0 {
			delete(l.events, addr)
		} else {
			l.events[addr] = recent
		}
	}
}
