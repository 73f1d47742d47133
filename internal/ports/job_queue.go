package ports

import "context"

// JobMessage is the unit published per created or retried job in queued mode.
// Delivery is at-least-once; the processing side is idempotent for completed
// jobs, so duplicates are harmless.
type JobMessage struct {
	MessageID string
	JobRef    string
	TenantID  *string
}

// JobHandler processes one queue message. Errors are the subscriber's to log;
// they must not stop the drain loop.
type JobHandler func(ctx context.Context, msg JobMessage) error

// JobQueue is the async dispatch boundary. Adapters exist for NATS and for an
// in-process channel queue used in tests and single-binary setups.
type JobQueue interface {
	Publish(ctx context.Context, msg JobMessage) error
	// Subscribe registers the single long-lived drain handler and returns an
	// unsubscribe function.
	Subscribe(ctx context.Context, handler JobHandler) (func() error, error)
}
