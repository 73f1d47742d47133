package queue

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"docforge/internal/bootstrap/logging"
	"docforge/internal/errs"
	"docforge/internal/ports"
)

// MemoryQueue is an in-process ports.JobQueue for single-binary setups and
// tests. Publish blocks until the buffer has room, mirroring backpressure.
type MemoryQueue struct {
	messages chan ports.JobMessage

	mu     sync.Mutex
	closed bool
	done   chan struct{}
}

var _ ports.JobQueue = (*MemoryQueue)(nil)

func NewMemoryQueue(buffer int) *MemoryQueue {
	if buffer <= 0 {
		buffer = 64
	}
	return &MemoryQueue{
		messages: make(chan ports.JobMessage, buffer),
		done:     make(chan struct{}),
	}
}

func (q *MemoryQueue) Publish(ctx context.Context, msg ports.JobMessage) error {
	if ctx == nil {
		return errors.New("context is required")
	}

	select {
	case <-ctx.Done():
		return errs.Wrap(ctx.Err(), "check context")
	case <-q.done:
		return errors.New("queue is closed")
	case q.messages <- msg:
		return nil
	}
}

func (q *MemoryQueue) Subscribe(ctx context.Context, handler ports.JobHandler) (func() error, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	if handler == nil {
		return nil, errors.New("handler is required")
	}

	logCtx := logging.WithAttrs(ctx, slog.String("component", "queue.memory"))
	stop := make(chan struct{})

	go func() {
		for {
			select {
			case <-stop:
				return
			case <-q.done:
				return
			case msg := <-q.messages:
				if err := handler(logCtx, msg); err != nil {
					logging.Error(logCtx, "job message handling failed",
						slog.String("job_ref", msg.JobRef),
						slog.Any("err", errs.Loggable(err)))
				}
			}
		}
	}()

	var once sync.Once
	return func() error {
		once.Do(func() { close(stop) })
		return nil
	}, nil
}

func (q *MemoryQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.closed {
		q.closed = true
		close(q.done)
	}
}
