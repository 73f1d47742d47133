package pipeline

import (
	"context"
	"errors"

	domain "docforge/internal/domain/pipeline"
	"docforge/internal/errs"
	"docforge/internal/ports"
)

// RetryJob re-arms a FAILED or CANCELLED (or still PENDING) job. The reset
// (status back to PENDING, draft/completion/error cleared, findings deleted)
// runs in one transaction, so no observer can see a PENDING job with stale
// results. Retrying a RUNNING job is rejected. After the reset the same
// dispatch decision as job creation applies.
func (s *Service) RetryJob(ctx context.Context, jobRef string, actor string) (CreateJobResult, error) {
	if ctx == nil {
		return CreateJobResult{}, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return CreateJobResult{}, errs.Wrap(err, "check context")
	}
	if s.repo == nil {
		return CreateJobResult{}, errors.New("pipeline repository is required")
	}
	if s.uow == nil {
		return CreateJobResult{}, errors.New("pipeline unit of work is required")
	}

	jobID, err := parseJobRef(jobRef)
	if err != nil {
		return CreateJobResult{}, err
	}

	job, err := s.repo.GetJob(ctx, jobID)
	if err != nil {
		return CreateJobResult{}, err
	}
	if err := domain.CanRetry(domain.JobStatus(job.Status)); err != nil {
		return CreateJobResult{}, err
	}

	now := nowUTCString()
	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		if txErr := s.repo.ResetJobForRetry(txCtx, jobID, now); txErr != nil {
			return txErr
		}
		if txErr := s.repo.DeleteJobFindings(txCtx, jobID); txErr != nil {
			return txErr
		}
		return s.repo.AppendJobEvent(txCtx, ports.JobEventCreate{
			JobID:     jobID,
			Actor:     normalizeActor(actor),
			Body:      "job reset for retry",
			CreatedAt: now,
		})
	}); err != nil {
		return CreateJobResult{}, err
	}

	s.setCacheBestEffort(ctx, cacheJobStatusKey(jobRef), string(domain.StatusPending))
	s.notifyTransition(JobTransition{
		JobRef:   jobRef,
		TenantID: derefString(job.TenantID),
		Status:   string(domain.StatusPending),
		At:       now,
	})

	mode, dispatchErr := s.dispatchJob(ctx, jobRef, job.TenantID)
	result := CreateJobResult{
		JobRef:     jobRef,
		Status:     string(domain.StatusPending),
		Dispatched: string(mode),
	}
	if dispatchErr != nil {
		return result, dispatchErr
	}
	return result, nil
}
