package ratelimit

import (
	"context"
	"time"
)

// Limiter admits up to a fixed number of requests per key per window.
type Limiter interface {
	Allow(ctx context.Context, key string) Decision
}

type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// RetryAfter is the wait until the current window closes, rounded up to a
// whole second and never below one.
func (d Decision) RetryAfter(now time.Time) time.Duration {
	wait := d.ResetAt.Sub(now)
	if wait <= 0 {
		return time.Second
	}
	return (wait + time.Second - 1).Truncate(time.Second)
}

func remaining(limit, count int) int {
	if count >= limit {
		return 0
	}
	return limit - count
}
