package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"freight-ai-assistant/internal/infra/metrics"
	"freight-ai-assistant/internal/infra/queue"
)

// RetentionWorker periodically trims the completed/failed job lists of every
// queue so Redis holds only a bounded processing history, and refreshes the
// waiting-depth gauge.
type RetentionWorker struct {
	interval time.Duration
	queues   []*queue.Queue
	log      *zerolog.Logger
}

func NewRetentionWorker(interval time.Duration, queues []*queue.Queue, logger *zerolog.Logger) *RetentionWorker {
	retLog := logger.With().Str("component", "RetentionWorker").Logger()
	return &RetentionWorker{
		interval: interval,
		queues:   queues,
		log:      &retLog,
	}
}

func (w *RetentionWorker) Run(ctx context.Context) error {
	w.log.Info().Msg("Starting retention worker")
	// Run once on startup, then on every tick
	w.sweep(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping retention worker")
			return ctx.Err()
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *RetentionWorker) sweep(ctx context.Context) {
	for _, q := range w.queues {
		if err := q.TrimFinished(ctx); err != nil {
			w.log.Error().Err(err).Str("queue", q.Name()).Msg("retention trim failed")
		}
		n, err := q.Waiting(ctx)
		if err != nil {
			w.log.Error().Err(err).Str("queue", q.Name()).Msg("waiting depth read failed")
			continue
		}
		metrics.SetQueueWaiting(q.Name(), float64(n))
	}
}
