// Package ratelimiter throttles the lookup endpoints with a fixed-window
// counter per client key. It is server-side protection: the UI's own
// debounce is a convenience only and is never relied on.
package ratelimiter

import (
	"sync"
	"time"
)

// window tracks one client's count inside the current window.
type window struct {
	count int
	start time.Time
}

// FixedWindow limits each key to a number of calls per rolling interval.
type FixedWindow struct {
	limit    int
	interval time.Duration

	mu        sync.Mutex
	windows   map[string]*window
	lastSweep time.Time

	// now is injectable for tests.
	now func() time.Time
}

// NewFixedWindow creates a FixedWindow limiter allowing limit calls per
// interval for each key.
func NewFixedWindow(limit int, interval time.Duration) *FixedWindow {
	return &FixedWindow{
		limit:    limit,
		interval: interval,
		windows:  map[string]*window{},
		now:      time.Now,
	}
}

// Allow reports whether the call identified by key fits inside the current
// window, counting it when it does. Expired windows are swept at most once
// per interval, so the map stays bounded by the keys active during the
// last interval.
func (rl *FixedWindow) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if now.Sub(rl.lastSweep) >= rl.interval {
		for k, w := range rl.windows {
			if now.Sub(w.start) >= rl.interval {
				delete(rl.windows, k)
			}
		}
		rl.lastSweep = now
	}

	w, ok := rl.windows[key]
	if !ok || now.Sub(w.start) >= rl.interval {
		rl.windows[key] = &window{count: 1, start: now}
		return true
	}
	if w.count >= rl.limit {
		return false
	}
	w.count++
	return true
}
