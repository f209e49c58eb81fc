package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/ErlanBelekov/writing-assistant/internal/metrics"
	"github.com/ErlanBelekov/writing-assistant/internal/ratelimit"
	"github.com/gin-gonic/gin"
)

const errRateLimited = "Rate limit exceeded"

// RateLimit admits requests per client IP through limiter. Every response
// carries X-RateLimit-Limit and X-RateLimit-Remaining; denials add
// Retry-After and stop the chain with 429.
func RateLimit(route string, limiter ratelimit.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := route + ":" + c.ClientIP()
		d := limiter.Allow(c.Request.Context(), key)

		if d.Limit > 0 {
			c.Header("X-RateLimit-Limit", strconv.Itoa(d.Limit))
			c.Header("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
		}
		if !d.Allowed {
			metrics.RateLimitedTotal.WithLabelValues(route).Inc()
			c.Header("Retry-After", strconv.Itoa(int(d.RetryAfter(time.Now()).Seconds())))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": errRateLimited})
			return
		}
		c.Next()
	}
}
