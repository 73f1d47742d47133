package pipeline

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"docforge/internal/bootstrap/logging"
	domain "docforge/internal/domain/pipeline"
	"docforge/internal/errs"
	"docforge/internal/ports"
)

// dispatchJob applies the configured dispatch mode to a freshly created or
// retried job. Exactly one path runs per event: inline processing, a queue
// publish, or nothing (manual).
func (s *Service) dispatchJob(ctx context.Context, jobRef string, tenantID *string) (domain.DispatchMode, error) {
	mode := s.dispatchMode()

	switch mode {
	case domain.DispatchImmediate:
		if _, err := s.ProcessJob(ctx, jobRef); err != nil {
			return mode, err
		}
		return mode, nil

	case domain.DispatchQueued:
		if s.queue == nil {
			return mode, errors.New("job queue is required for queued dispatch")
		}
		err := s.queue.Publish(ctx, ports.JobMessage{
			MessageID: uuid.NewString(),
			JobRef:    jobRef,
			TenantID:  tenantID,
		})
		if err != nil {
			return mode, errs.Wrap(err, "publish job")
		}
		return mode, nil

	default:
		// Manual: the job stays PENDING until an operator processes it.
		return mode, nil
	}
}

// StartWorker subscribes the single long-lived queue drain loop. Handler
// errors are logged by the queue adapter, never re-thrown, so one bad job
// cannot starve the queue. Returns the unsubscribe function.
func (s *Service) StartWorker(ctx context.Context) (func() error, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	if s.queue == nil {
		return nil, errors.New("job queue is required")
	}

	logCtx := logging.WithAttrs(ctx, slog.String("component", "pipeline.worker"))

	return s.queue.Subscribe(logCtx, func(msgCtx context.Context, msg ports.JobMessage) error {
		logging.Info(msgCtx, "processing queued job",
			slog.String("job_ref", msg.JobRef),
			slog.String("message_id", msg.MessageID))

		if _, err := s.ProcessJob(msgCtx, msg.JobRef); err != nil {
			return errs.Wrapf(err, "process queued job %s", msg.JobRef)
		}
		return nil
	})
}
