package http

import (
	"sync"
	"time"
)

const (
	rateWindow    = time.Minute
	sweepInterval = 5 * time.Minute
)

// rateLimiter allows perMinute writes per client in fixed one-minute
// windows. Idle clients are swept lazily on later calls.
type rateLimiter struct {
	mu        sync.Mutex
	perMinute int
	now       func() time.Time
	windows   map[string]*window
	lastSweep time.Time
}

type window struct {
	start time.Time
	count int
}

func newRateLimiter(perMinute int) *rateLimiter {
	return &rateLimiter{
		perMinute: perMinute,
		now:       time.Now,
		windows:   make(map[string]*window),
	}
}

// allow records one write from client. When the window is full it returns
// false and how long until the window resets.
func (rl *rateLimiter) allow(client string) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if now.Sub(rl.lastSweep) >= sweepInterval {
		rl.sweep(now)
	}

	w, ok := rl.windows[client]
	if !ok || now.Sub(w.start) >= rateWindow {
		rl.windows[client] = &window{start: now, count: 1}
		return true, 0
	}
	if w.count >= rl.perMinute {
		return false, w.start.Add(rateWindow).Sub(now)
	}
	w.count++
	return true, 0
}

func (rl *rateLimiter) sweep(now time.Time) {
	for client, w := range rl.windows {
		if now.Sub(w.start) >= rateWindow {
			delete(rl.windows, client)
		}
	}
	rl.lastSweep = now
}
