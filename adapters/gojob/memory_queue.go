package gojob

import (
	"context"
	"fmt"
	"sync"
	"time"

	job "github.com/goliatone/go-job"
	"github.com/goliatone/go-job/queue"
)

const defaultMemoryQueueCapacity = 128

// MemoryQueue is an in-process queue for single-binary deployments and
// tests. It honors requeue delays and keeps dead-lettered messages for
// inspection.
type MemoryQueue struct {
	logger job.Logger

	mu         sync.Mutex
	messages   chan *job.ExecutionMessage
	done       chan struct{}
	seen       map[string]struct{}
	deadLetter []*job.ExecutionMessage
	closed     bool
}

type MemoryQueueOption func(*MemoryQueue)

func WithQueueLogger(logger job.Logger) MemoryQueueOption {
	return func(q *MemoryQueue) {
		q.logger = logger
	}
}

func NewMemoryQueue(capacity int, options ...MemoryQueueOption) *MemoryQueue {
	if capacity <= 0 {
		capacity = defaultMemoryQueueCapacity
	}
	queue := &MemoryQueue{
		messages: make(chan *job.ExecutionMessage, capacity),
		done:     make(chan struct{}),
		seen:     map[string]struct{}{},
	}
	for _, option := range options {
		if option != nil {
			option(queue)
		}
	}
	return queue
}

func (q *MemoryQueue) Enqueue(ctx context.Context, msg *job.ExecutionMessage) error {
	if q == nil {
		return fmt.Errorf("gojob: memory queue is not configured")
	}
	if msg == nil {
		return fmt.Errorf("gojob: execution message is required")
	}

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return fmt.Errorf("gojob: memory queue is closed")
	}
	if msg.IdempotencyKey != "" && msg.DedupPolicy == "drop" {
		if _, dup := q.seen[msg.IdempotencyKey]; dup {
			q.mu.Unlock()
			if q.logger != nil {
				q.logger.Info("dropping duplicate message", "idempotency_key", msg.IdempotencyKey)
			}
			return nil
		}
		q.seen[msg.IdempotencyKey] = struct{}{}
	}
	q.mu.Unlock()

	select {
	case q.messages <- msg:
		return nil
	case <-q.done:
		return fmt.Errorf("gojob: memory queue is closed")
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *MemoryQueue) Dequeue(ctx context.Context) (queue.Delivery, error) {
	if q == nil {
		return nil, fmt.Errorf("gojob: memory queue is not configured")
	}
	select {
	case msg := <-q.messages:
		return &memoryDelivery{queue: q, msg: msg}, nil
	case <-q.done:
		return nil, fmt.Errorf("gojob: memory queue is closed")
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// DeadLetters returns a snapshot of dead-lettered messages.
func (q *MemoryQueue) DeadLetters() []*job.ExecutionMessage {
	if q == nil {
		return nil
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]*job.ExecutionMessage, len(q.deadLetter))
	copy(out, q.deadLetter)
	return out
}

// Close stops enqueues and dequeues. The message channel is never closed so
// a delayed requeue firing after shutdown is a no-op rather than a panic.
func (q *MemoryQueue) Close() {
	if q == nil {
		return
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	close(q.done)
}

func (q *MemoryQueue) requeue(msg *job.ExecutionMessage, delay time.Duration) {
	if q == nil || msg == nil {
		return
	}
	deliver := func() {
		select {
		case <-q.done:
			return
		default:
		}
		select {
		case q.messages <- msg:
		case <-q.done:
		default:
			q.pushDeadLetter(msg)
		}
	}
	if delay <= 0 {
		deliver()
		return
	}
	time.AfterFunc(delay, deliver)
}

func (q *MemoryQueue) pushDeadLetter(msg *job.ExecutionMessage) {
	q.mu.Lock()
	q.deadLetter = append(q.deadLetter, msg)
	q.mu.Unlock()
	if q.logger != nil {
		q.logger.Error("message dead-lettered", "job_id", msg.JobID, "idempotency_key", msg.IdempotencyKey)
	}
}

type memoryDelivery struct {
	queue *MemoryQueue
	msg   *job.ExecutionMessage

	mu      sync.Mutex
	settled bool
}

func (d *memoryDelivery) Message() *job.ExecutionMessage {
	if d == nil {
		return nil
	}
	return d.msg
}

func (d *memoryDelivery) Ack(context.Context) error {
	return d.settle(func() {})
}

func (d *memoryDelivery) Nack(_ context.Context, opts queue.NackOptions) error {
	return d.settle(func() {
		switch {
		case opts.DeadLetter:
			d.queue.pushDeadLetter(d.msg)
		case opts.Requeue:
			d.queue.requeue(d.msg, opts.Delay)
		default:
			d.queue.pushDeadLetter(d.msg)
		}
	})
}

func (d *memoryDelivery) settle(apply func()) error {
	if d == nil || d.queue == nil {
		return fmt.Errorf("gojob: delivery is not configured")
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.settled {
		return fmt.Errorf("gojob: delivery already settled")
	}
	d.settled = true
	apply()
	return nil
}

var (
	_ queue.Enqueuer = (*MemoryQueue)(nil)
	_ queue.Dequeuer = (*MemoryQueue)(nil)
	_ queue.Delivery = (*memoryDelivery)(nil)
)
