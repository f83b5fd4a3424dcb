// Package jobs runs the background maintenance tasks.
package jobs

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Cleaner removes past unbooked slots.  *service.SlotService implements it.
type Cleaner interface {
	Cleanup(ctx context.Context) (int64, error)
}

// Purger drops cached availability.  *middleware.CachePurger implements it.
type Purger interface {
	Purge(ctx context.Context) (int, error)
}

// Retention runs Cleanup once at start and then every interval.
type Retention struct {
	cleaner  Cleaner
	cache    Purger
	interval time.Duration
	log      zerolog.Logger
}

// NewRetention runs cleaner every interval, 24h when interval is not positive.
func NewRetention(cleaner Cleaner, cache Purger, interval time.Duration, log zerolog.Logger) *Retention {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	return &Retention{
		cleaner:  cleaner,
		cache:    cache,
		interval: interval,
		log:      log.With().Str("component", "retention").Logger(),
	}
}

// Run blocks until ctx is cancelled.
func (r *Retention) Run(ctx context.Context) {
	r.log.Info().Dur("interval", r.interval).Msg("retention job started")
	r.runOnce(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			r.log.Info().Msg("retention job stopped")
			return
		case <-ticker.C:
			r.runOnce(ctx)
		}
	}
}

func (r *Retention) runOnce(ctx context.Context) {
	runCtx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	n, err := r.cleaner.Cleanup(runCtx)
	if err != nil {
		r.log.Error().Err(err).Msg("scheduled cleanup failed")
		return
	}
	if n > 0 && r.cache != nil {
		if _, err := r.cache.Purge(runCtx); err != nil {
			r.log.Warn().Err(err).Msg("availability cache purge failed")
		}
	}
}
