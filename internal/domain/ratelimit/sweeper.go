package ratelimit

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultSweepInterval = time.Hour
	DefaultSweepHorizon  = 2 * time.Minute
)

// Sweeper periodically forgets idle users so the limiter does not grow without bound.
type Sweeper struct {
	limiter  *Limiter
	interval time.Duration
	horizon  time.Duration
	now      func() time.Time
	log      *zap.Logger
}

func NewSweeper(limiter *Limiter, interval, horizon time.Duration, log *zap.Logger) *Sweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	if horizon <= 0 {
		horizon = DefaultSweepHorizon
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Sweeper{
		limiter:  limiter,
		interval: interval,
		horizon:  horizon,
		now:      time.Now,
		log:      log,
	}
}

// Run blocks until ctx is cancelled, sweeping once per interval.
func (s *Sweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.log.Info("rate limiter sweeper started",
		zap.Duration("interval", s.interval),
		zap.Duration("horizon", s.horizon),
	)

	for {
		select {
		case <-ctx.Done():
			s.log.Info("rate limiter sweeper stopped")
			return nil
		case <-ticker.C:
			s.SweepOnce()
		}
	}
}

// SweepOnce runs a single pruning pass and returns the number of users removed.
func (s *Sweeper) SweepOnce() int {
	start := time.Now()
	removed := s.limiter.Prune(s.now(), s.horizon)
	s.log.Debug("rate limiter sweep completed",
		zap.Int("removed_users", removed),
		zap.Int("tracked_users", s.limiter.Users()),
		zap.Duration("took", time.Since(start)),
	)
	return removed
}
