// Package gojob bridges go-job's generic queue/worker contracts to this
// module's fetch-task domain and observability seam, the adapter layer
// SPEC_FULL.md's dependency table assigns to the download work-queue
// (download/queue.go, one queued job per transaction member needing a
// fetch, drained sequentially per spec.md §5's single-threaded model).
package gojob

import (
	"context"
	"fmt"
	"time"

	job "github.com/goliatone/go-job"
	"github.com/goliatone/go-job/queue"
	"github.com/goliatone/go-job/queue/worker"

	"github.com/mlow/low/core"
	"github.com/mlow/low/download"
)

// RetryPolicy bounds how many times a failed fetch job is requeued before
// it is dead-lettered. A mirror-level failure already retries across
// mirrors within one delivery (download/backoff.go); this is the outer,
// queue-level bound on top of that for a delivery that keeps failing.
type RetryPolicy struct {
	MaxAttempts     int
	MaxDelay        time.Duration
	DeadLetterOnMax bool
}

// NormalizeAttempt enforces bounded retry behavior for a nack operation,
// matching the teacher's ratelimit-policy-clamp shape (normalize bounds on
// the way out, never trust the caller's raw request).
func (p RetryPolicy) NormalizeAttempt(opts queue.NackOptions, attempt int) queue.NackOptions {
	out := opts
	if out.Delay < 0 {
		out.Delay = 0
	}
	if p.MaxDelay > 0 && out.Delay > p.MaxDelay {
		out.Delay = p.MaxDelay
	}
	if out.DeadLetter {
		out.Requeue = false
	}
	if p.MaxAttempts > 0 && attempt >= p.MaxAttempts {
		out.Requeue = false
		if p.DeadLetterOnMax || out.DeadLetter {
			out.DeadLetter = true
		}
	}
	if !out.Requeue && !out.DeadLetter {
		out.Requeue = true
	}
	return out
}

// RetryingDequeuer wraps a queue.Dequeuer with per-IdempotencyKey attempt
// counting, so a caller that wants bounded retries instead of
// download.Drain's unconditional dead-letter-on-failure can Nack through
// RetryPolicy.NormalizeAttempt.
type RetryingDequeuer struct {
	dequeuer queue.Dequeuer
	policy   RetryPolicy
	attempts map[string]int
}

func NewRetryingDequeuer(dequeuer queue.Dequeuer, policy RetryPolicy) *RetryingDequeuer {
	return &RetryingDequeuer{dequeuer: dequeuer, policy: policy, attempts: map[string]int{}}
}

// Dequeue pulls the next delivery and wraps it with this dequeuer's policy
// and the attempt count observed so far for its idempotency key.
func (d *RetryingDequeuer) Dequeue(ctx context.Context) (*RetryingDelivery, error) {
	if d == nil || d.dequeuer == nil {
		return nil, fmt.Errorf("gojob: dequeuer is not configured")
	}
	delivery, err := d.dequeuer.Dequeue(ctx)
	if err != nil {
		return nil, err
	}
	key := delivery.Message().IdempotencyKey
	d.attempts[key]++
	return &RetryingDelivery{delivery: delivery, policy: d.policy, attempt: d.attempts[key]}, nil
}

// RetryingDelivery is one policy-bound delivery returned by
// RetryingDequeuer.Dequeue.
type RetryingDelivery struct {
	delivery queue.Delivery
	policy   RetryPolicy
	attempt  int
}

// Message returns the fetch task this delivery carries.
func (d *RetryingDelivery) Message() download.FetchTask {
	return download.FetchTaskFromMessage(d.delivery.Message())
}

// Attempt returns how many times this idempotency key has been dequeued,
// including this delivery.
func (d *RetryingDelivery) Attempt() int {
	return d.attempt
}

func (d *RetryingDelivery) Ack(ctx context.Context) error {
	if d == nil || d.delivery == nil {
		return fmt.Errorf("gojob: delivery is not configured")
	}
	return d.delivery.Ack(ctx)
}

// Nack requeues or dead-letters this delivery per the policy bound to this
// attempt count.
func (d *RetryingDelivery) Nack(ctx context.Context, reason string) error {
	if d == nil || d.delivery == nil {
		return fmt.Errorf("gojob: delivery is not configured")
	}
	normalized := d.policy.NormalizeAttempt(queue.NackOptions{Requeue: true, Reason: reason}, d.attempt)
	return d.delivery.Nack(ctx, normalized)
}

// WorkerHook bridges go-job's worker.Event lifecycle to this module's
// observability seam (core.ProgressRecorder/core.Tracer), per spec.md §9's
// pass/operation-boundary tracing convention; core.Observe does the actual
// counter/histogram/trace work.
type WorkerHook struct {
	Recorder core.ProgressRecorder
	Tracer   core.Tracer
}

func (h WorkerHook) OnStart(ctx context.Context, event worker.Event) {}

func (h WorkerHook) OnSuccess(ctx context.Context, event worker.Event) {
	h.observe(ctx, event, nil)
}

func (h WorkerHook) OnFailure(ctx context.Context, event worker.Event) {
	h.observe(ctx, event, event.Err)
}

func (h WorkerHook) OnRetry(ctx context.Context, event worker.Event) {
	h.observe(ctx, event, event.Err)
}

func (h WorkerHook) observe(ctx context.Context, event worker.Event, err error) {
	message := event.Message
	if message == nil && event.Delivery != nil {
		message = event.Delivery.Message()
	}
	fields := map[string]string{}
	if message != nil {
		fields["idempotency_key"] = message.IdempotencyKey
	}
	core.Observe(ctx, h.Recorder, h.Tracer, event.StartedAt, download.JobIDFetchPackage, err, fields)
}

var _ worker.Hook = WorkerHook{}
