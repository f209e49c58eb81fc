package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

var fixedWindowScript = redis.NewScript(`
local count = redis.call("INCR", KEYS[1])
if count == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return count
`)

// RedisLimiter shares windows across replicas. Windows are aligned to
// multiples of the window length. Redis failures deny the request.
type RedisLimiter struct {
	client  *redis.Client
	logger  *slog.Logger
	prefix  string
	limit   int
	window  time.Duration
	timeout time.Duration
	now     func() time.Time
}

func NewRedisLimiter(client *redis.Client, prefix string, limit int, window time.Duration, logger *slog.Logger) *RedisLimiter {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = "writer:ratelimit"
	}
	if window <= 0 {
		window = time.Minute
	}
	return &RedisLimiter{
		client:  client,
		logger:  logger.With("component", "redis_rate_limiter"),
		prefix:  prefix,
		limit:   limit,
		window:  window,
		timeout: 250 * time.Millisecond,
		now:     time.Now,
	}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) Decision {
	now := l.now()
	if l.limit <= 0 {
		return Decision{Allowed: true, ResetAt: now}
	}
	key = strings.TrimSpace(key)
	if key == "" {
		key = "unknown"
	}

	windowMs := l.window.Milliseconds()
	slot := now.UTC().UnixMilli() / windowMs
	resetAt := time.UnixMilli((slot + 1) * windowMs)
	redisKey := fmt.Sprintf("%s:%s:%d", l.prefix, key, slot)

	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	count, err := fixedWindowScript.Run(ctx, l.client, []string{redisKey}, windowMs).Int64()
	if err != nil {
		l.logger.ErrorContext(ctx, "rate limit check failed", "error", err)
		return Decision{Allowed: false, Limit: l.limit, Remaining: 0, ResetAt: resetAt}
	}
	return Decision{
		Allowed:   count <= int64(l.limit),
		Limit:     l.limit,
		Remaining: remaining(l.limit, int(count)),
		ResetAt:   resetAt,
	}
}
