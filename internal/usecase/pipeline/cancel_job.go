package pipeline

import (
	"context"
	"errors"

	domain "docforge/internal/domain/pipeline"
	"docforge/internal/errs"
	"docforge/internal/ports"
)

// CancelJob withdraws a PENDING or RUNNING job; terminal jobs are rejected
// with a descriptive domain error. Cancellation marks intent only: an
// in-flight generator call is not interrupted, and the processing commit
// rechecks status so a cancelled job is never overwritten afterwards.
func (s *Service) CancelJob(ctx context.Context, jobRef string, actor string) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return errs.Wrap(err, "check context")
	}
	if s.repo == nil {
		return errors.New("pipeline repository is required")
	}
	if s.uow == nil {
		return errors.New("pipeline unit of work is required")
	}

	jobID, err := parseJobRef(jobRef)
	if err != nil {
		return err
	}

	job, err := s.repo.GetJob(ctx, jobID)
	if err != nil {
		return err
	}
	if err := domain.CanCancel(domain.JobStatus(job.Status)); err != nil {
		return err
	}

	now := nowUTCString()
	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		if txErr := s.repo.MarkJobCancelled(txCtx, jobID, now); txErr != nil {
			return txErr
		}
		return s.repo.AppendJobEvent(txCtx, ports.JobEventCreate{
			JobID:     jobID,
			Actor:     normalizeActor(actor),
			Body:      "job cancelled",
			CreatedAt: now,
		})
	}); err != nil {
		return err
	}

	s.setCacheBestEffort(ctx, cacheJobStatusKey(jobRef), string(domain.StatusCancelled))
	s.notifyTransition(JobTransition{
		JobRef:   jobRef,
		TenantID: derefString(job.TenantID),
		Status:   string(domain.StatusCancelled),
		At:       now,
	})
	return nil
}
