package gojob

import (
	"context"
	"errors"
	"testing"
	"time"

	job "github.com/goliatone/go-job"
	"github.com/goliatone/go-job/queue"
	"github.com/goliatone/go-job/queue/worker"

	"github.com/mlow/low/download"
)

func TestRetryingDequeuerTracksAttemptsPerIdempotencyKey(t *testing.T) {
	ctx := context.Background()
	msg := &job.ExecutionMessage{
		JobID:          download.JobIDFetchPackage,
		IdempotencyKey: "updates:Packages/bash-5.2-1.x86_64.rpm",
	}
	rawDelivery := &stubQueueDelivery{msg: msg}
	dequeuer := NewRetryingDequeuer(&stubQueueDequeuer{delivery: rawDelivery}, RetryPolicy{})

	first, err := dequeuer.Dequeue(ctx)
	if err != nil {
		t.Fatalf("dequeue: %v", err)
	}
	if first.Attempt() != 1 {
		t.Fatalf("expected attempt 1, got %d", first.Attempt())
	}

	second, err := dequeuer.Dequeue(ctx)
	if err != nil {
		t.Fatalf("dequeue: %v", err)
	}
	if second.Attempt() != 2 {
		t.Fatalf("expected attempt 2 for repeated idempotency key, got %d", second.Attempt())
	}
}

func TestRetryingDeliveryMessageRecoversFetchTask(t *testing.T) {
	ctx := context.Background()
	task := download.FetchTask{RepoID: "updates", RelPath: "Packages/bash-5.2-1.x86_64.rpm"}
	enqueuer := &stubQueueEnqueuer{}
	realQueue := download.NewQueue(enqueuer)
	if err := realQueue.Enqueue(ctx, task); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	rawDelivery := &stubQueueDelivery{msg: enqueuer.last}
	dequeuer := NewRetryingDequeuer(&stubQueueDequeuer{delivery: rawDelivery}, RetryPolicy{})
	delivery, err := dequeuer.Dequeue(ctx)
	if err != nil {
		t.Fatalf("dequeue: %v", err)
	}

	got := delivery.Message()
	if got.RepoID != task.RepoID || got.RelPath != task.RelPath {
		t.Fatalf("expected recovered task %+v, got %+v", task, got)
	}

	if err := delivery.Ack(ctx); err != nil {
		t.Fatalf("ack: %v", err)
	}
	if !rawDelivery.acked {
		t.Fatalf("expected ack on underlying delivery")
	}
}

func TestRetryingDeliveryNackBoundaries(t *testing.T) {
	ctx := context.Background()
	rawDelivery := &stubQueueDelivery{msg: &job.ExecutionMessage{
		JobID:          download.JobIDFetchPackage,
		IdempotencyKey: "updates:bash",
	}}
	policy := RetryPolicy{MaxAttempts: 3, MaxDelay: 10 * time.Second, DeadLetterOnMax: true}

	dequeuer := NewRetryingDequeuer(&stubQueueDequeuer{delivery: rawDelivery}, policy)

	first, err := dequeuer.Dequeue(ctx)
	if err != nil {
		t.Fatalf("dequeue: %v", err)
	}
	if err := first.Nack(ctx, "transient"); err != nil {
		t.Fatalf("nack attempt 1: %v", err)
	}
	if !rawDelivery.nackOpts.Requeue {
		t.Fatalf("expected requeue before max attempts")
	}

	dequeuer.attempts[rawDelivery.msg.IdempotencyKey] = 2
	third, err := dequeuer.Dequeue(ctx)
	if err != nil {
		t.Fatalf("dequeue: %v", err)
	}
	if third.Attempt() != 3 {
		t.Fatalf("expected attempt 3, got %d", third.Attempt())
	}
	if err := third.Nack(ctx, "still failing"); err != nil {
		t.Fatalf("nack max attempt: %v", err)
	}
	if rawDelivery.nackOpts.Requeue {
		t.Fatalf("expected no requeue once max attempts is reached")
	}
	if !rawDelivery.nackOpts.DeadLetter {
		t.Fatalf("expected dead letter on max attempts")
	}
}

func TestWorkerHookObservesSuccessAndFailure(t *testing.T) {
	recorder := &capturingRecorder{}
	tracer := &capturingTracer{}
	hook := WorkerHook{Recorder: recorder, Tracer: tracer}

	started := time.Now().UTC().Add(-time.Second)
	evt := worker.Event{
		Message:   &job.ExecutionMessage{JobID: download.JobIDFetchPackage, IdempotencyKey: "updates:bash"},
		Attempt:   2,
		Delay:     5 * time.Second,
		StartedAt: started,
		Duration:  250 * time.Millisecond,
	}

	hook.OnSuccess(context.Background(), evt)
	if recorder.counterCalls != 1 {
		t.Fatalf("expected one counter increment on success, got %d", recorder.counterCalls)
	}
	if tracer.lastStatus != "success" {
		t.Fatalf("expected trace status success, got %q", tracer.lastStatus)
	}

	evt.Err = errors.New("mirror exhausted")
	hook.OnFailure(context.Background(), evt)
	if tracer.lastStatus != "failure" {
		t.Fatalf("expected trace status failure, got %q", tracer.lastStatus)
	}
}

var _ worker.Hook = WorkerHook{}

type stubQueueEnqueuer struct {
	last *job.ExecutionMessage
}

func (s *stubQueueEnqueuer) Enqueue(_ context.Context, msg *job.ExecutionMessage) error {
	s.last = msg
	return nil
}

type stubQueueDequeuer struct {
	delivery queue.Delivery
}

func (s *stubQueueDequeuer) Dequeue(context.Context) (queue.Delivery, error) {
	return s.delivery, nil
}

type stubQueueDelivery struct {
	msg      *job.ExecutionMessage
	acked    bool
	nackOpts queue.NackOptions
}

func (s *stubQueueDelivery) Message() *job.ExecutionMessage {
	return s.msg
}

func (s *stubQueueDelivery) Ack(context.Context) error {
	s.acked = true
	return nil
}

func (s *stubQueueDelivery) Nack(_ context.Context, opts queue.NackOptions) error {
	s.nackOpts = opts
	return nil
}

type capturingRecorder struct {
	counterCalls int
}

func (r *capturingRecorder) IncCounter(ctx context.Context, name string, value int64, tags map[string]string) {
	r.counterCalls++
}

func (r *capturingRecorder) ObserveHistogram(ctx context.Context, name string, value float64, tags map[string]string) {
}

type capturingTracer struct {
	lastStatus string
}

func (t *capturingTracer) Trace(ctx context.Context, message string, fields map[string]any) {
	if status, ok := fields["status"].(string); ok {
		t.lastStatus = status
	}
}
