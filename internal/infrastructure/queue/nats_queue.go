package queue

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/nats-io/nats.go"

	"docforge/internal/bootstrap/logging"
	"docforge/internal/errs"
	"docforge/internal/ports"
)

const workerGroup = "docforge-workers"

// NATSQueue implements ports.JobQueue over a NATS subject. Subscribers join
// one queue group so each published job is drained by exactly one worker.
type NATSQueue struct {
	conn    *nats.Conn
	subject string
}

var _ ports.JobQueue = (*NATSQueue)(nil)

func NewNATSQueue(url string, subject string) (*NATSQueue, error) {
	if subject == "" {
		return nil, errors.New("queue subject is required")
	}

	conn, err := nats.Connect(url, nats.Name("docforge"))
	if err != nil {
		return nil, errs.Wrapf(err, "connect nats %q", url)
	}

	return &NATSQueue{conn: conn, subject: subject}, nil
}

func (q *NATSQueue) Publish(ctx context.Context, msg ports.JobMessage) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return errs.Wrap(err, "check context")
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return errs.Wrap(err, "marshal job message")
	}
	if err := q.conn.Publish(q.subject, data); err != nil {
		return errs.Wrap(err, "publish job message")
	}
	return nil
}

func (q *NATSQueue) Subscribe(ctx context.Context, handler ports.JobHandler) (func() error, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	if handler == nil {
		return nil, errors.New("handler is required")
	}

	logCtx := logging.WithAttrs(ctx, slog.String("component", "queue.nats"))

	sub, err := q.conn.QueueSubscribe(q.subject, workerGroup, func(raw *nats.Msg) {
		var msg ports.JobMessage
		if err := json.Unmarshal(raw.Data, &msg); err != nil {
			logging.Error(logCtx, "drop undecodable job message", slog.Any("err", errs.Loggable(err)))
			return
		}

		// A failing job must not starve the queue: log and move on.
		if err := handler(logCtx, msg); err != nil {
			logging.Error(logCtx, "job message handling failed",
				slog.String("job_ref", msg.JobRef),
				slog.String("message_id", msg.MessageID),
				slog.Any("err", errs.Loggable(err)))
		}
	})
	if err != nil {
		return nil, errs.Wrap(err, "subscribe job subject")
	}

	return sub.Unsubscribe, nil
}

func (q *NATSQueue) Close() {
	q.conn.Close()
}
