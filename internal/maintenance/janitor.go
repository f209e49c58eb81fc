package maintenance

import (
	"context"
	"log/slog"
	"time"

	"github.com/ErlanBelekov/writing-assistant/internal/metrics"
	"github.com/robfig/cron/v3"
)

// Sweeper drops entries that expired before now and reports how many.
type Sweeper interface {
	Sweep(now time.Time) int
}

type store struct {
	name    string
	sweeper Sweeper
}

// Janitor periodically sweeps in-process stores (rate-limit windows,
// revoked token ids) so they do not grow without bound.
type Janitor struct {
	stores   []store
	interval time.Duration
	logger   *slog.Logger
	now      func() time.Time
}

func NewJanitor(interval time.Duration, logger *slog.Logger) *Janitor {
	return &Janitor{
		interval: interval,
		logger:   logger.With("component", "janitor"),
		now:      time.Now,
	}
}

// Add registers a store under a metrics label.
func (j *Janitor) Add(name string, s Sweeper) {
	j.stores = append(j.stores, store{name: name, sweeper: s})
}

// Len reports the number of registered stores.
func (j *Janitor) Len() int {
	return len(j.stores)
}

// Start blocks until ctx is done, sweeping every interval.
func (j *Janitor) Start(ctx context.Context) {
	c := cron.New()
	c.Schedule(cron.Every(j.interval), cron.FuncJob(j.SweepOnce))
	c.Start()

	j.logger.Info("janitor started", "interval", j.interval, "stores", len(j.stores))

	<-ctx.Done()
	<-c.Stop().Done()
	j.logger.Info("janitor shut down")
}

// SweepOnce runs one pass over every store.
func (j *Janitor) SweepOnce() {
	now := j.now()
	for _, s := range j.stores {
		n := s.sweeper.Sweep(now)
		if n == 0 {
			continue
		}
		metrics.JanitorSweptTotal.WithLabelValues(s.name).Add(float64(n))
		j.logger.Debug("swept expired entries", "store", s.name, "count", n)
	}
}
