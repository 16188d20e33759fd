//go:build !integration

package queue

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"freight-ai-assistant/internal/domain"
	"freight-ai-assistant/internal/domain/model"
)

func newTestQueue(t *testing.T, retention int) (*Queue, *memRedis) {
	t.Helper()
	log := zerolog.Nop()
	cli := newMemRedis()
	q := New("test-queue", cli,
		RetryPolicy{MaxAttempts: 3, InitialDelay: 2 * time.Second, BackoffFactor: 2},
		&fakeLimiter{allow: true}, RateLimit{Limit: 100, Window: time.Minute},
		retention, &log)
	return q, cli
}

func TestEnqueueFetchComplete(t *testing.T) {
	ctx := context.Background()
	q, _ := newTestQueue(t, 10)

	job, err := q.Enqueue(ctx, model.JobTypeDocument, model.DocumentJobPayload{FileRef: "a.txt"})
	if err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	if job.Status != model.JobStatusWaiting || job.Attempts != 0 {
		t.Fatalf("fresh job state wrong: %+v", job)
	}

	got, err := q.Fetch(ctx, time.Second)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if got.ID != job.ID {
		t.Fatalf("fetched wrong job: %s != %s", got.ID, job.ID)
	}
	if got.Status != model.JobStatusActive || got.Attempts != 1 {
		t.Errorf("active job state wrong: status=%s attempts=%d", got.Status, got.Attempts)
	}

	if err := q.Complete(ctx, got, map[string]int{"chunks": 4}); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	final, err := q.Job(ctx, job.ID)
	if err != nil {
		t.Fatalf("Job: %v", err)
	}
	if final.Status != model.JobStatusCompleted {
		t.Errorf("status = %s, want completed", final.Status)
	}
	if len(final.Result) == 0 {
		t.Error("expected a stored result payload")
	}
}

func TestFetchEmptyReturnsNotFound(t *testing.T) {
	q, _ := newTestQueue(t, 10)

	_, err := q.Fetch(context.Background(), time.Millisecond)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestRetryWithBackoffThenExhaust(t *testing.T) {
	ctx := context.Background()
	q, _ := newTestQueue(t, 10)

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	q.now = func() time.Time { return now }

	job, err := q.Enqueue(ctx, model.JobTypeDocument, model.DocumentJobPayload{FileRef: "b.txt"})
	if err != nil {
		t.Fatalf("Enqueue: %v", err)
	}

	transient := errors.New("upstream timeout")
	for attempt := 1; attempt <= 3; attempt++ {
		got, err := q.Fetch(ctx, time.Second)
		if err != nil {
			t.Fatalf("Fetch attempt %d: %v", attempt, err)
		}
		if got.Attempts != attempt {
			t.Fatalf("attempt %d: counter = %d", attempt, got.Attempts)
		}
		if err := q.Fail(ctx, got, transient); err != nil {
			t.Fatalf("Fail attempt %d: %v", attempt, err)
		}

		if attempt < 3 {
			// Not yet due: the delayed job must not surface.
			if _, err := q.Fetch(ctx, time.Millisecond); !errors.Is(err, domain.ErrNotFound) {
				t.Fatalf("attempt %d: job surfaced before its backoff elapsed (err=%v)", attempt, err)
			}
			now = now.Add(time.Minute)
		}
	}

	final, err := q.Job(ctx, job.ID)
	if err != nil {
		t.Fatalf("Job: %v", err)
	}
	if final.Status != model.JobStatusFailed {
		t.Errorf("status = %s, want failed", final.Status)
	}
	if final.Attempts != 3 {
		t.Errorf("attempts = %d, want 3", final.Attempts)
	}
	if final.LastError != "upstream timeout" {
		t.Errorf("last_error = %q", final.LastError)
	}
}

func TestNonRetryableFailsImmediately(t *testing.T) {
	ctx := context.Background()
	q, _ := newTestQueue(t, 10)

	if _, err := q.Enqueue(ctx, model.JobTypeDocument, model.DocumentJobPayload{FileRef: "c.txt"}); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	got, err := q.Fetch(ctx, time.Second)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	if err := q.Fail(ctx, got, NonRetryable(domain.ErrEmptyDocument)); err != nil {
		t.Fatalf("Fail: %v", err)
	}
	final, err := q.Job(ctx, got.ID)
	if err != nil {
		t.Fatalf("Job: %v", err)
	}
	if final.Status != model.JobStatusFailed {
		t.Errorf("status = %s, want failed on first attempt", final.Status)
	}
	if final.Attempts != 1 {
		t.Errorf("attempts = %d, want 1", final.Attempts)
	}
}

func TestRateLimitedFetch(t *testing.T) {
	ctx := context.Background()
	log := zerolog.Nop()
	q := New("limited", newMemRedis(),
		RetryPolicy{MaxAttempts: 2, InitialDelay: time.Second, BackoffFactor: 2},
		&fakeLimiter{allow: false}, RateLimit{Limit: 1, Window: time.Minute}, 10, &log)

	if _, err := q.Enqueue(ctx, model.JobTypeInvoice, model.InvoiceJobPayload{FileRef: "d.txt"}); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	if _, err := q.Fetch(ctx, time.Second); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("err = %v, want ErrRateLimited", err)
	}

	// The job stays queued for a later fetch.
	n, err := q.Waiting(ctx)
	if err != nil {
		t.Fatalf("Waiting: %v", err)
	}
	if n != 1 {
		t.Errorf("waiting = %d, want 1", n)
	}
}

func TestRetentionCapsFinishedLists(t *testing.T) {
	ctx := context.Background()
	q, cli := newTestQueue(t, 3)

	for i := 0; i < 5; i++ {
		if _, err := q.Enqueue(ctx, model.JobTypeDocument, model.DocumentJobPayload{FileRef: "x"}); err != nil {
			t.Fatalf("Enqueue: %v", err)
		}
		job, err := q.Fetch(ctx, time.Second)
		if err != nil {
			t.Fatalf("Fetch: %v", err)
		}
		if err := q.Complete(ctx, job, nil); err != nil {
			t.Fatalf("Complete: %v", err)
		}
	}

	n, err := cli.LLen(ctx, "queue:test-queue:completed")
	if err != nil {
		t.Fatalf("LLen: %v", err)
	}
	if n != 3 {
		t.Errorf("completed list length = %d, want retention cap 3", n)
	}

	if err := q.TrimFinished(ctx); err != nil {
		t.Fatalf("TrimFinished: %v", err)
	}
}

func TestRetryPolicyDelayGrows(t *testing.T) {
	p := RetryPolicy{MaxAttempts: 5, InitialDelay: 2 * time.Second, BackoffFactor: 2}
	if d := p.Delay(1); d != 2*time.Second {
		t.Errorf("Delay(1) = %v", d)
	}
	if d := p.Delay(2); d != 4*time.Second {
		t.Errorf("Delay(2) = %v", d)
	}
	if d := p.Delay(3); d != 8*time.Second {
		t.Errorf("Delay(3) = %v", d)
	}
}
