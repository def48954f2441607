package gojob

import (
	"context"
	"testing"
	"time"

	job "github.com/goliatone/go-job"
	"github.com/goliatone/go-job/queue"

	"github.com/daypulse/daypulse/core"
)

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

func TestMessageMappingRoundTrip(t *testing.T) {
	original := &core.JobExecutionMessage{
		JobID:          JobIDRunSync,
		Parameters:     map[string]any{"metric": "sleep", "lookback_days": 30},
		IdempotencyKey: "idem-1",
		DedupPolicy:    "drop",
	}

	converted := ToExecutionMessage(original)
	if converted == nil {
		t.Fatalf("expected converted message")
	}
	roundTrip := FromExecutionMessage(converted)
	if roundTrip.JobID != original.JobID {
		t.Fatalf("expected job id %q, got %q", original.JobID, roundTrip.JobID)
	}
	if roundTrip.IdempotencyKey != original.IdempotencyKey {
		t.Fatalf("expected idempotency key %q, got %q", original.IdempotencyKey, roundTrip.IdempotencyKey)
	}
	if roundTrip.DedupPolicy != original.DedupPolicy {
		t.Fatalf("expected dedup policy %q, got %q", original.DedupPolicy, roundTrip.DedupPolicy)
	}
	if roundTrip.Parameters["metric"] != "sleep" {
		t.Fatalf("expected parameters to survive mapping")
	}
}

func TestEnqueueAndDequeueAdapters(t *testing.T) {
	ctx := context.Background()
	enqueuer := &stubQueueEnqueuer{}
	enqueueAdapter := NewEnqueuerAdapter(enqueuer)

	msg := &core.JobExecutionMessage{
		JobID:          JobIDRunSync,
		Parameters:     map[string]any{"metric": "steps"},
		IdempotencyKey: "idem-steps",
	}
	if err := enqueueAdapter.Enqueue(ctx, msg); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if enqueuer.last == nil || enqueuer.last.JobID != JobIDRunSync {
		t.Fatalf("expected mapped queue message")
	}

	dequeuer := &stubQueueDequeuer{delivery: &stubQueueDelivery{msg: enqueuer.last}}
	dequeueAdapter := NewDequeuerAdapter(dequeuer, RetryPolicy{})
	delivery, err := dequeueAdapter.Dequeue(ctx)
	if err != nil {
		t.Fatalf("dequeue: %v", err)
	}
	got := delivery.Message()
	if got == nil || got.JobID != JobIDRunSync {
		t.Fatalf("expected mapped runtime message")
	}
	if err := delivery.Ack(ctx); err != nil {
		t.Fatalf("ack: %v", err)
	}
	if !dequeuer.delivery.(*stubQueueDelivery).acked {
		t.Fatalf("expected ack on underlying delivery")
	}
}

func TestNackRetryPolicyBoundaries(t *testing.T) {
	ctx := context.Background()
	rawDelivery := &stubQueueDelivery{
		msg: &job.ExecutionMessage{JobID: JobIDRunSync},
	}
	adapter := NewDeliveryAdapter(rawDelivery, RetryPolicy{
		MaxAttempts:     3,
		MaxDelay:        10 * time.Second,
		DeadLetterOnMax: true,
	})

	if err := adapter.NackForAttempt(ctx, core.JobNackOptions{
		Delay:   30 * time.Second,
		Requeue: true,
		Reason:  "transient",
	}, 1); err != nil {
		t.Fatalf("nack attempt 1: %v", err)
	}
	if rawDelivery.nackOpts.Delay != 10*time.Second {
		t.Fatalf("expected delay to be bounded, got %s", rawDelivery.nackOpts.Delay)
	}
	if !rawDelivery.nackOpts.Requeue {
		t.Fatalf("expected message to be requeued before max attempts")
	}

	if err := adapter.NackForAttempt(ctx, core.JobNackOptions{
		Delay:   time.Second,
		Requeue: true,
		Reason:  "still failing",
	}, 3); err != nil {
		t.Fatalf("nack max attempt: %v", err)
	}
	if rawDelivery.nackOpts.Requeue {
		t.Fatalf("expected no requeue once max attempts is reached")
	}
	if !rawDelivery.nackOpts.DeadLetter {
		t.Fatalf("expected dead letter once max attempts is reached")
	}
}

func TestMemoryQueue_EnqueueDequeueAck(t *testing.T) {
	ctx := context.Background()
	q := NewMemoryQueue(4)
	defer q.Close()

	msg := &job.ExecutionMessage{JobID: JobIDRunSync, Parameters: map[string]any{"metric": "sleep"}}
	if err := q.Enqueue(ctx, msg); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	delivery, err := q.Dequeue(ctx)
	if err != nil {
		t.Fatalf("dequeue: %v", err)
	}
	if delivery.Message().JobID != JobIDRunSync {
		t.Fatalf("unexpected message %+v", delivery.Message())
	}
	if err := delivery.Ack(ctx); err != nil {
		t.Fatalf("ack: %v", err)
	}
	if err := delivery.Ack(ctx); err == nil {
		t.Fatalf("expected double settle to fail")
	}
}

func TestMemoryQueue_RequeueRedelivers(t *testing.T) {
	ctx := context.Background()
	q := NewMemoryQueue(4)
	defer q.Close()

	if err := q.Enqueue(ctx, &job.ExecutionMessage{JobID: JobIDRunSync}); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	delivery, err := q.Dequeue(ctx)
	if err != nil {
		t.Fatalf("dequeue: %v", err)
	}
	if err := delivery.Nack(ctx, queue.NackOptions{Requeue: true}); err != nil {
		t.Fatalf("nack: %v", err)
	}

	redelivered, err := q.Dequeue(ctx)
	if err != nil {
		t.Fatalf("dequeue after requeue: %v", err)
	}
	if redelivered.Message().JobID != JobIDRunSync {
		t.Fatalf("expected requeued message back")
	}
}

func TestMemoryQueue_DeadLetterKeepsMessage(t *testing.T) {
	ctx := context.Background()
	q := NewMemoryQueue(4)
	defer q.Close()

	if err := q.Enqueue(ctx, &job.ExecutionMessage{JobID: JobIDRunSync, IdempotencyKey: "dead-1"}); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	delivery, err := q.Dequeue(ctx)
	if err != nil {
		t.Fatalf("dequeue: %v", err)
	}
	if err := delivery.Nack(ctx, queue.NackOptions{DeadLetter: true, Reason: "fatal"}); err != nil {
		t.Fatalf("nack: %v", err)
	}

	dead := q.DeadLetters()
	if len(dead) != 1 || dead[0].IdempotencyKey != "dead-1" {
		t.Fatalf("expected dead-lettered message, got %+v", dead)
	}
}

func TestMemoryQueue_CloseWithPendingDelayedRequeue(t *testing.T) {
	ctx := context.Background()
	q := NewMemoryQueue(4)

	if err := q.Enqueue(ctx, &job.ExecutionMessage{JobID: JobIDRunSync}); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	delivery, err := q.Dequeue(ctx)
	if err != nil {
		t.Fatalf("dequeue: %v", err)
	}
	if err := delivery.Nack(ctx, queue.NackOptions{Requeue: true, Delay: 20 * time.Millisecond}); err != nil {
		t.Fatalf("nack: %v", err)
	}

	q.Close()
	// The delayed redelivery fires after shutdown and must be discarded
	// without panicking or dead-lettering.
	time.Sleep(50 * time.Millisecond)

	if dead := q.DeadLetters(); len(dead) != 0 {
		t.Fatalf("expected no dead letters after shutdown, got %d", len(dead))
	}
	if _, err := q.Dequeue(ctx); err == nil {
		t.Fatalf("expected dequeue after close to fail")
	}
	if err := q.Enqueue(ctx, &job.ExecutionMessage{JobID: JobIDRunSync}); err == nil {
		t.Fatalf("expected enqueue after close to fail")
	}
}

func TestMemoryQueue_DropsDuplicateIdempotencyKeys(t *testing.T) {
	ctx := context.Background()
	q := NewMemoryQueue(4)
	defer q.Close()

	msg := &job.ExecutionMessage{JobID: JobIDRunSync, IdempotencyKey: "same", DedupPolicy: "drop"}
	if err := q.Enqueue(ctx, msg); err != nil {
		t.Fatalf("first enqueue: %v", err)
	}
	if err := q.Enqueue(ctx, msg); err != nil {
		t.Fatalf("duplicate enqueue: %v", err)
	}

	if _, err := q.Dequeue(ctx); err != nil {
		t.Fatalf("dequeue: %v", err)
	}
	waitCtx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	if _, err := q.Dequeue(waitCtx); err == nil {
		t.Fatalf("expected duplicate to be dropped")
	}
}
