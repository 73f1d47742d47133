package pipeline

import (
	"context"
	"errors"

	domain "docforge/internal/domain/pipeline"
	"docforge/internal/errs"
	"docforge/internal/ports"
)

// ApproveJob is the operator override: it force-marks a job COMPLETED with a
// completion timestamp, independent of whether generation ran, and touches
// neither the result draft nor the findings. Allowed from PENDING, RUNNING
// and FAILED (clearing the stored error); a COMPLETED job is a no-op and a
// CANCELLED job is rejected; retry is the path back from cancellation.
func (s *Service) ApproveJob(ctx context.Context, jobRef string, actor string) error {
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
	if domain.JobStatus(job.Status) == domain.StatusCompleted {
		return nil
	}
	if err := domain.CanApprove(domain.JobStatus(job.Status)); err != nil {
		return err
	}

	now := nowUTCString()
	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		if txErr := s.repo.MarkJobApproved(txCtx, jobID, now); txErr != nil {
			return txErr
		}
		return s.repo.AppendJobEvent(txCtx, ports.JobEventCreate{
			JobID:     jobID,
			Actor:     normalizeActor(actor),
			Body:      "job approved by operator",
			CreatedAt: now,
		})
	}); err != nil {
		return err
	}

	s.setCacheBestEffort(ctx, cacheJobStatusKey(jobRef), string(domain.StatusCompleted))
	s.notifyTransition(JobTransition{
		JobRef:   jobRef,
		TenantID: derefString(job.TenantID),
		Status:   string(domain.StatusCompleted),
		At:       now,
	})
	return nil
}
