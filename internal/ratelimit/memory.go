package ratelimit

import (
	"context"
	"sync"
	"time"
)

type windowState struct {
	count     int
	windowEnd time.Time
}

// MemoryLimiter is a single-process fixed-window limiter. Expired windows
// are dropped by Sweep.
type MemoryLimiter struct {
	limit  int
	window time.Duration
	now    func() time.Time

	mu      sync.Mutex
	entries map[string]windowState
}

func NewMemoryLimiter(limit int, window time.Duration) *MemoryLimiter {
	if window <= 0 {
		window = time.Minute
	}
	return &MemoryLimiter{
		limit:   limit,
		window:  window,
		now:     time.Now,
		entries: make(map[string]windowState),
	}
}

// WithClock replaces the limiter's time source.
func (l *MemoryLimiter) WithClock(now func() time.Time) *MemoryLimiter {
	l.now = now
	return l
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) Decision {
	now := l.now()
	if l.limit <= 0 {
		return Decision{Allowed: true, ResetAt: now}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	state, ok := l.entries[key]
	if !ok || !now.Before(state.windowEnd) {
		state = windowState{count: 1, windowEnd: now.Add(l.window)}
		l.entries[key] = state
		return Decision{Allowed: true, Limit: l.limit, Remaining: remaining(l.limit, 1), ResetAt: state.windowEnd}
	}
	if state.count >= l.limit {
		return Decision{Allowed: false, Limit: l.limit, Remaining: 0, ResetAt: state.windowEnd}
	}
	state.count++
	l.entries[key] = state
	return Decision{Allowed: true, Limit: l.limit, Remaining: remaining(l.limit, state.count), ResetAt: state.windowEnd}
}

// Sweep removes windows that closed before now and reports how many.
func (l *MemoryLimiter) Sweep(now time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for key, state := range l.entries {
		if !now.Before(state.windowEnd) {
			delete(l.entries, key)
			n++
		}
	}
	return n
}
