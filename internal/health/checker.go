package health

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Pinger is satisfied by *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts clients whose Ping does not return a bare error, such as
// *redis.Client.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// CheckResult is the public view of one dependency. Ping errors are logged,
// not returned, since readiness is served unauthenticated.
type CheckResult struct {
	Status    string `json:"status"`
	LatencyMS int64  `json:"latency_ms"`
}

// HealthResult is the top-level health response.
type HealthResult struct {
	Status string                 `json:"status"`
	Checks map[string]CheckResult `json:"checks,omitempty"`
}

type dependency struct {
	name   string
	pinger Pinger
}

// Checker verifies that all dependencies are reachable.
type Checker struct {
	deps    []dependency
	timeout time.Duration
	logger  *slog.Logger
	gauge   *prometheus.GaugeVec
}

type Option func(*Checker)

// WithDependency adds a named dependency to the readiness check.
func WithDependency(name string, p Pinger) Option {
	return func(c *Checker) {
		c.deps = append(c.deps, dependency{name: name, pinger: p})
	}
}

// WithTimeout bounds each ping. Defaults to 2s.
func WithTimeout(d time.Duration) Option {
	return func(c *Checker) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// NewChecker creates a health checker for postgres plus any extra
// dependencies and registers its Prometheus gauge.
func NewChecker(db Pinger, logger *slog.Logger, reg prometheus.Registerer, opts ...Option) *Checker {
	gauge := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "writer",
		Name:      "health_check_up",
		Help:      "Whether a dependency is reachable. 1 = up, 0 = down.",
	}, []string{"dependency"})
	reg.MustRegister(gauge)

	c := &Checker{
		deps:    []dependency{{name: "postgres", pinger: db}},
		timeout: 2 * time.Second,
		logger:  logger.With("component", "health"),
		gauge:   gauge,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Liveness returns a simple "up" response if the process is running.
func (c *Checker) Liveness(_ context.Context) HealthResult {
	return HealthResult{Status: "up"}
}

// Readiness pings every dependency in parallel. The service is ready only
// when all of them answer within the timeout.
func (c *Checker) Readiness(ctx context.Context) HealthResult {
	checkCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		result = HealthResult{
			Status: "up",
			Checks: make(map[string]CheckResult, len(c.deps)),
		}
	)

	for _, d := range c.deps {
		wg.Add(1)
		go func() {
			defer wg.Done()
			check := c.ping(checkCtx, d)

			mu.Lock()
			defer mu.Unlock()
			result.Checks[d.name] = check
			if check.Status != "up" {
				result.Status = "down"
			}
		}()
	}
	wg.Wait()

	return result
}

func (c *Checker) ping(ctx context.Context, d dependency) CheckResult {
	start := time.Now()
	err := d.pinger.Ping(ctx)
	check := CheckResult{Status: "up", LatencyMS: time.Since(start).Milliseconds()}

	if err != nil {
		c.logger.WarnContext(ctx, "health check failed", "dependency", d.name, "error", err)
		check.Status = "down"
		c.gauge.WithLabelValues(d.name).Set(0)
		return check
	}
	c.gauge.WithLabelValues(d.name).Set(1)
	return check
}
