// Package queue implements named Redis-backed job queues with retry/backoff,
// sliding-window rate limiting and bounded retention of finished jobs.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"freight-ai-assistant/internal/domain"
	"freight-ai-assistant/internal/domain/model"
	"freight-ai-assistant/internal/infra/metrics"
	red "freight-ai-assistant/internal/infra/redis"

	goredis "github.com/go-redis/redis/v8"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
)

// Well-known queue names.
const (
	DocumentQueue = "document-ingestion"
	InvoiceQueue  = "invoice-ingestion"
)

// ErrRateLimited tells the consumer to back off; the job stays queued.
var ErrRateLimited = errors.New("queue rate limit reached")

// Limiter is the slice of the rate limiter the queue needs.
type Limiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// RateLimit is a sliding-window cap on fetches per queue.
type RateLimit struct {
	Limit  int
	Window time.Duration
}

// Queue is one named job queue. Waiting jobs live on a list, retries on a
// delayed sorted set, and finished jobs on capped inspection lists.
type Queue struct {
	name      string
	cli       red.RedisClient
	policy    RetryPolicy
	limiter   Limiter
	rate      RateLimit
	retention int
	log       *zerolog.Logger
	now       func() time.Time
}

func New(name string, cli red.RedisClient, policy RetryPolicy, limiter Limiter, rate RateLimit, retention int, log *zerolog.Logger) *Queue {
	if retention <= 0 {
		retention = 100
	}
	return &Queue{
		name:      name,
		cli:       cli,
		policy:    policy,
		limiter:   limiter,
		rate:      rate,
		retention: retention,
		log:       log,
		now:       time.Now,
	}
}

func (q *Queue) Name() string { return q.name }

func (q *Queue) waitingKey() string   { return fmt.Sprintf("queue:%s:waiting", q.name) }
func (q *Queue) activeKey() string    { return fmt.Sprintf("queue:%s:active", q.name) }
func (q *Queue) delayedKey() string   { return fmt.Sprintf("queue:%s:delayed", q.name) }
func (q *Queue) completedKey() string { return fmt.Sprintf("queue:%s:completed", q.name) }
func (q *Queue) failedKey() string    { return fmt.Sprintf("queue:%s:failed", q.name) }

func jobKey(id string) string { return fmt.Sprintf("job:%s", id) }

// Enqueue creates a job record and pushes it onto the waiting list.
func (q *Queue) Enqueue(ctx context.Context, typ model.JobType, payload interface{}) (*model.Job, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	now := q.now()
	job := &model.Job{
		ID:          ulid.Make().String(),
		Queue:       q.name,
		Type:        typ,
		Payload:     raw,
		MaxAttempts: q.policy.MaxAttempts,
		Status:      model.JobStatusWaiting,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := q.saveJob(ctx, job); err != nil {
		return nil, err
	}
	if err := q.cli.LPush(ctx, q.waitingKey(), job.ID); err != nil {
		return nil, fmt.Errorf("enqueue: %w", err)
	}
	if n, err := q.cli.LLen(ctx, q.waitingKey()); err == nil {
		metrics.SetQueueWaiting(q.name, float64(n))
	}
	q.log.Debug().Str("queue", q.name).Str("job_id", job.ID).Str("type", string(typ)).Msg("job enqueued")
	return job, nil
}

// Fetch promotes due retries, honors the rate limit and then blocks up to
// timeout for the next waiting job, marking it active with the attempt
// counted. Returns domain.ErrNotFound when nothing arrived in time and
// ErrRateLimited when the window cap is reached.
func (q *Queue) Fetch(ctx context.Context, timeout time.Duration) (*model.Job, error) {
	if err := q.promoteDue(ctx); err != nil {
		return nil, err
	}

	if q.limiter != nil && q.rate.Limit > 0 {
		ok, err := q.limiter.Allow(ctx, red.QueueRateKey(q.name), q.rate.Limit, q.rate.Window)
		if err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
		if !ok {
			return nil, ErrRateLimited
		}
	}

	id, err := q.cli.BRPopLPush(ctx, q.waitingKey(), q.activeKey(), timeout)
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("fetch: %w", err)
	}

	job, err := q.Job(ctx, id)
	if err != nil {
		// Orphaned id with no record; drop it from the active list.
		_ = q.cli.LRem(ctx, q.activeKey(), 0, id)
		return nil, err
	}

	job.Status = model.JobStatusActive
	job.Attempts++
	job.UpdatedAt = q.now()
	if err := q.saveJob(ctx, job); err != nil {
		return nil, err
	}
	return job, nil
}

// Complete marks the job done with a structured result payload and moves it
// to the capped completed list.
func (q *Queue) Complete(ctx context.Context, job *model.Job, result interface{}) error {
	if result != nil {
		raw, err := json.Marshal(result)
		if err != nil {
			return fmt.Errorf("encode result: %w", err)
		}
		job.Result = raw
	}
	job.Status = model.JobStatusCompleted
	job.FinishedAt = q.now()
	job.UpdatedAt = job.FinishedAt
	if err := q.saveJob(ctx, job); err != nil {
		return err
	}
	if err := q.cli.LRem(ctx, q.activeKey(), 0, job.ID); err != nil {
		return err
	}
	if err := q.pushFinished(ctx, q.completedKey(), job.ID); err != nil {
		return err
	}
	metrics.IncJob(q.name, string(model.JobStatusCompleted))
	return nil
}

// Fail records the attempt's error. Retryable failures inside the attempt
// ceiling are rescheduled on the delayed set with exponential backoff;
// anything else is terminal.
func (q *Queue) Fail(ctx context.Context, job *model.Job, procErr error) error {
	job.LastError = procErr.Error()
	job.UpdatedAt = q.now()

	if err := q.cli.LRem(ctx, q.activeKey(), 0, job.ID); err != nil {
		return err
	}

	terminal := IsNonRetryable(procErr) || job.Attempts >= job.MaxAttempts
	if terminal {
		job.Status = model.JobStatusFailed
		job.FinishedAt = job.UpdatedAt
		if err := q.saveJob(ctx, job); err != nil {
			return err
		}
		if err := q.pushFinished(ctx, q.failedKey(), job.ID); err != nil {
			return err
		}
		metrics.IncJob(q.name, string(model.JobStatusFailed))
		q.log.Warn().Str("queue", q.name).Str("job_id", job.ID).Int("attempts", job.Attempts).
			Err(procErr).Msg("job failed terminally")
		return nil
	}

	job.Status = model.JobStatusWaiting
	if err := q.saveJob(ctx, job); err != nil {
		return err
	}
	readyAt := q.now().Add(q.policy.Delay(job.Attempts))
	if err := q.cli.ZAdd(ctx, q.delayedKey(), float64(readyAt.UnixNano()), job.ID); err != nil {
		return err
	}
	metrics.IncJobRetry(q.name)
	q.log.Info().Str("queue", q.name).Str("job_id", job.ID).Int("attempts", job.Attempts).
		Time("ready_at", readyAt).Err(procErr).Msg("job scheduled for retry")
	return nil
}

// Job loads a job record by id.
func (q *Queue) Job(ctx context.Context, id string) (*model.Job, error) {
	data, err := q.cli.Get(ctx, jobKey(id))
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("job get: %w", err)
	}
	var job model.Job
	if err := json.Unmarshal([]byte(data), &job); err != nil {
		return nil, fmt.Errorf("job decode: %w", err)
	}
	return &job, nil
}

// Waiting returns the current depth of the waiting list.
func (q *Queue) Waiting(ctx context.Context) (int64, error) {
	return q.cli.LLen(ctx, q.waitingKey())
}

// TrimFinished re-applies the retention cap on the inspection lists.
func (q *Queue) TrimFinished(ctx context.Context) error {
	if err := q.cli.LTrim(ctx, q.completedKey(), 0, int64(q.retention)-1); err != nil {
		return err
	}
	return q.cli.LTrim(ctx, q.failedKey(), 0, int64(q.retention)-1)
}

// promoteDue moves delayed jobs whose backoff elapsed back onto the waiting
// list.
func (q *Queue) promoteDue(ctx context.Context) error {
	max := strconv.FormatInt(q.now().UnixNano(), 10)
	ids, err := q.cli.ZRangeByScore(ctx, q.delayedKey(), "-inf", max, 16)
	if err != nil {
		return fmt.Errorf("promote: %w", err)
	}
	for _, id := range ids {
		if err := q.cli.ZRem(ctx, q.delayedKey(), id); err != nil {
			return err
		}
		if err := q.cli.LPush(ctx, q.waitingKey(), id); err != nil {
			return err
		}
	}
	return nil
}

func (q *Queue) saveJob(ctx context.Context, job *model.Job) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("encode job: %w", err)
	}
	return q.cli.Set(ctx, jobKey(job.ID), data, 0)
}

func (q *Queue) pushFinished(ctx context.Context, key, id string) error {
	if err := q.cli.LPush(ctx, key, id); err != nil {
		return err
	}
	return q.cli.LTrim(ctx, key, 0, int64(q.retention)-1)
}
