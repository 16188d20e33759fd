package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"freight-ai-assistant/internal/domain"
	"freight-ai-assistant/internal/domain/model"
	"freight-ai-assistant/internal/infra/queue"

	"github.com/rs/zerolog"
)

// Handler processes one job and returns the structured result payload to be
// stored on the completed job record.
type Handler interface {
	Handle(ctx context.Context, job *model.Job) (result interface{}, err error)
}

// Pool runs a fixed number of workers against one queue. Workers block
// waiting for the next job and otherwise run independently; no job spans
// multiple workers, and a failing job never terminates the pool.
type Pool struct {
	q       *queue.Queue
	handler Handler
	n       int
	log     *zerolog.Logger

	wg   sync.WaitGroup
	quit chan struct{}
}

func NewPool(q *queue.Queue, handler Handler, workers int, log *zerolog.Logger) *Pool {
	if workers <= 0 {
		workers = 1
	}
	return &Pool{q: q, handler: handler, n: workers, log: log, quit: make(chan struct{})}
}

// Start launches the worker goroutines. Lifecycle is owned by the composing
// application; there is no ambient singleton pool.
func (p *Pool) Start(ctx context.Context) {
	for i := 0; i < p.n; i++ {
		p.wg.Add(1)
		go func(id int) {
			defer p.wg.Done()
			p.run(ctx, id)
		}(i)
	}
	p.log.Info().Str("queue", p.q.Name()).Int("workers", p.n).Msg("worker pool started")
}

// Stop signals the workers and waits for in-flight jobs to finish.
func (p *Pool) Stop() {
	close(p.quit)
	p.wg.Wait()
	p.log.Info().Str("queue", p.q.Name()).Msg("worker pool stopped")
}

func (p *Pool) run(ctx context.Context, id int) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-p.quit:
			return
		default:
		}

		job, err := p.q.Fetch(ctx, time.Second)
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrNotFound):
				// Nothing waiting; loop back into the blocking fetch.
			case errors.Is(err, queue.ErrRateLimited):
				p.sleep(ctx, time.Second)
			case ctx.Err() != nil:
				return
			default:
				p.log.Error().Int("worker", id).Str("queue", p.q.Name()).Err(err).Msg("fetch failed")
				p.sleep(ctx, time.Second)
			}
			continue
		}

		p.process(ctx, id, job)
	}
}

func (p *Pool) process(ctx context.Context, id int, job *model.Job) {
	start := time.Now()
	result, err := p.safeHandle(ctx, id, job)
	if err != nil {
		if failErr := p.q.Fail(ctx, job, err); failErr != nil {
			p.log.Error().Int("worker", id).Str("job_id", job.ID).Err(failErr).Msg("could not record job failure")
		}
		return
	}
	if err := p.q.Complete(ctx, job, result); err != nil {
		p.log.Error().Int("worker", id).Str("job_id", job.ID).Err(err).Msg("could not record job completion")
		return
	}
	p.log.Info().Int("worker", id).Str("queue", p.q.Name()).Str("job_id", job.ID).
		Dur("duration", time.Since(start)).Msg("job completed")
}

// safeHandle shields the pool from a panicking handler: the panic is recorded
// as a job failure instead of taking down the process.
func (p *Pool) safeHandle(ctx context.Context, id int, job *model.Job) (result interface{}, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			p.log.Error().Int("worker", id).Str("job_id", job.ID).Interface("panic", rec).Msg("panic recovered")
			err = fmt.Errorf("handler panic: %v", rec)
		}
	}()
	return p.handler.Handle(ctx, job)
}

func (p *Pool) sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-p.quit:
	case <-t.C:
	}
}
