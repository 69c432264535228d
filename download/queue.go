package download

import (
	"context"
	"fmt"

	job "github.com/goliatone/go-job"
	"github.com/goliatone/go-job/queue"
)

// JobIDFetchPackage names the queued unit of work one Transaction member
// needing a fetch becomes, per spec.md §5's single-threaded model: the
// resolver produces install/update members first, then fetches for all of
// them are queued and drained one at a time, never concurrently.
const JobIDFetchPackage = "low.download.fetch_package"

// FetchTask is the payload of one JobIDFetchPackage job: everything
// Fetcher.DownloadIfMissing needs for a single transaction member.
type FetchTask struct {
	RepoID         string
	RelPath        string
	OutPath        string
	DisplayName    string
	ExpectedDigest string
	DigestKind     string
	ExpectedSize   int64
}

func (t FetchTask) toParameters() map[string]any {
	return map[string]any{
		"repo_id":         t.RepoID,
		"rel_path":        t.RelPath,
		"out_path":        t.OutPath,
		"display_name":    t.DisplayName,
		"expected_digest": t.ExpectedDigest,
		"digest_kind":     t.DigestKind,
		"expected_size":   t.ExpectedSize,
	}
}

// FetchTaskFromMessage recovers the FetchTask carried by a queued
// job.ExecutionMessage, for callers (adapters/gojob's retry wrapper) that
// dequeue through a lower-level queue.Dequeuer than Drain.
func FetchTaskFromMessage(msg *job.ExecutionMessage) FetchTask {
	if msg == nil {
		return FetchTask{}
	}
	return fetchTaskFromParameters(msg.Parameters)
}

func fetchTaskFromParameters(params map[string]any) FetchTask {
	var t FetchTask
	if v, ok := params["repo_id"].(string); ok {
		t.RepoID = v
	}
	if v, ok := params["rel_path"].(string); ok {
		t.RelPath = v
	}
	if v, ok := params["out_path"].(string); ok {
		t.OutPath = v
	}
	if v, ok := params["display_name"].(string); ok {
		t.DisplayName = v
	}
	if v, ok := params["expected_digest"].(string); ok {
		t.ExpectedDigest = v
	}
	if v, ok := params["digest_kind"].(string); ok {
		t.DigestKind = v
	}
	if v, ok := params["expected_size"].(int64); ok {
		t.ExpectedSize = v
	}
	return t
}

// Queue enqueues one FetchTask per transaction member needing a download,
// using the same job.ExecutionMessage/queue.Enqueuer contract
// adapters/gojob bridges elsewhere in this module, so a download queue and
// the rest of the job system share one wire format.
type Queue struct {
	enqueuer queue.Enqueuer
}

// NewQueue wraps an existing queue.Enqueuer (e.g. a go-job in-memory or
// persisted queue) for fetch tasks.
func NewQueue(enqueuer queue.Enqueuer) *Queue {
	return &Queue{enqueuer: enqueuer}
}

// Enqueue submits task, deduplicating by RepoID+RelPath so the same
// package queued twice (e.g. pulled in by both an install and a peer
// dependency scan before interning collapsed them) only downloads once.
func (q *Queue) Enqueue(ctx context.Context, task FetchTask) error {
	if q == nil || q.enqueuer == nil {
		return fmt.Errorf("download: queue is not configured")
	}
	msg := &job.ExecutionMessage{
		JobID:          JobIDFetchPackage,
		Parameters:     task.toParameters(),
		IdempotencyKey: task.RepoID + ":" + task.RelPath,
		DedupPolicy:    job.DeduplicationPolicy("skip"),
	}
	return q.enqueuer.Enqueue(ctx, msg)
}

// Drain implements spec.md §5's sequential draining: dequeue and run
// exactly count FetchTasks, one at a time, acking each on success and
// nacking (no requeue, dead-lettered) on failure. The caller passes count
// because it already knows it from the transaction's install/update
// membership; this avoids depending on an empty-queue sentinel this
// module's vendored go-job version may or may not export.
func Drain(ctx context.Context, dequeuer queue.Dequeuer, count int, fetcher func(ctx context.Context, task FetchTask) error) error {
	for i := 0; i < count; i++ {
		delivery, err := dequeuer.Dequeue(ctx)
		if err != nil {
			return err
		}

		task := fetchTaskFromParameters(delivery.Message().Parameters)
		if runErr := fetcher(ctx, task); runErr != nil {
			if nackErr := delivery.Nack(ctx, queue.NackOptions{Requeue: false, DeadLetter: true, Reason: runErr.Error()}); nackErr != nil {
				return nackErr
			}
			continue
		}
		if err := delivery.Ack(ctx); err != nil {
			return err
		}
	}
	return nil
}
