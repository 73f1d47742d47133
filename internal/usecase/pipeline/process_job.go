package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"docforge/internal/bootstrap/logging"
	domain "docforge/internal/domain/pipeline"
	"docforge/internal/errs"
	"docforge/internal/ports"
)

// ProcessJob runs one generation attempt to a terminal state.
//
// A job that already COMPLETED short-circuits: the stored result is returned
// without a second generator call or finding rewrite, which makes queue
// redelivery and double invocation harmless. Otherwise the job flips to
// RUNNING (clearing any prior error), the draft generator is invoked, the
// draft-scan rules run over the result, and the completion commit (status,
// result draft, completion timestamp and the full finding replacement) is
// applied in one transaction. That commit re-reads the job first and skips
// the write when a concurrent cancel won the race.
//
// A generator or persistence failure marks the job FAILED with the captured
// message, then re-propagates so the dispatching layer can alert.
func (s *Service) ProcessJob(ctx context.Context, jobRef string) (JobDetail, error) {
	if ctx == nil {
		return JobDetail{}, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return JobDetail{}, errs.Wrap(err, "check context")
	}
	if s.repo == nil {
		return JobDetail{}, errors.New("pipeline repository is required")
	}
	if s.uow == nil {
		return JobDetail{}, errors.New("pipeline unit of work is required")
	}
	if s.generator == nil {
		return JobDetail{}, errors.New("draft generator is required")
	}

	jobID, err := parseJobRef(jobRef)
	if err != nil {
		return JobDetail{}, err
	}

	job, err := s.repo.GetJob(ctx, jobID)
	if err != nil {
		return JobDetail{}, err
	}

	switch domain.JobStatus(job.Status) {
	case domain.StatusCompleted:
		return s.jobDetail(ctx, jobID)
	case domain.StatusCancelled:
		return JobDetail{}, domain.ErrProcessCancelledJob
	}

	now := nowUTCString()
	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.MarkJobRunning(txCtx, jobID, now); err != nil {
			return err
		}
		return s.repo.AppendJobEvent(txCtx, ports.JobEventCreate{
			JobID:     jobID,
			Actor:     pipelineActor,
			Body:      "draft generation started",
			CreatedAt: now,
		})
	}); err != nil {
		return JobDetail{}, err
	}

	s.setCacheBestEffort(ctx, cacheJobStatusKey(jobRef), string(domain.StatusRunning))
	s.notifyTransition(JobTransition{
		JobRef:   jobRef,
		TenantID: derefString(job.TenantID),
		Status:   string(domain.StatusRunning),
		At:       now,
	})

	draftCtx, err := s.assembleDraftContext(ctx, job)
	if err != nil {
		return JobDetail{}, s.failJob(ctx, job, jobRef, err)
	}

	draft, err := s.generator.Generate(ctx, draftCtx)
	if err != nil {
		return JobDetail{}, s.failJob(ctx, job, jobRef, err)
	}

	findings := domain.ScanDraft(draft)

	committed := false
	completedAt := nowUTCString()
	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		// Recheck under the transaction: a concurrent cancel must not be
		// overwritten by a late-arriving completion.
		current, txErr := s.repo.GetJob(txCtx, jobID)
		if txErr != nil {
			return txErr
		}
		if domain.JobStatus(current.Status) != domain.StatusRunning {
			return nil
		}

		if txErr := s.repo.MarkJobCompleted(txCtx, jobID, draft, completedAt); txErr != nil {
			return txErr
		}
		if txErr := s.repo.ReplaceJobFindings(txCtx, jobID, findingRows(jobID, findings, completedAt)); txErr != nil {
			return txErr
		}
		if txErr := s.repo.AppendJobEvent(txCtx, ports.JobEventCreate{
			JobID:     jobID,
			Actor:     pipelineActor,
			Body:      "draft generation completed",
			CreatedAt: completedAt,
		}); txErr != nil {
			return txErr
		}

		committed = true
		return nil
	}); err != nil {
		return JobDetail{}, s.failJob(ctx, job, jobRef, err)
	}

	if !committed {
		logging.Warn(ctx, "completion skipped, job left its running state during generation",
			slog.String("job_ref", jobRef))
		return s.jobDetail(ctx, jobID)
	}

	s.setCacheBestEffort(ctx, cacheJobStatusKey(jobRef), string(domain.StatusCompleted))
	s.notifyTransition(JobTransition{
		JobRef:   jobRef,
		TenantID: derefString(job.TenantID),
		Status:   string(domain.StatusCompleted),
		At:       completedAt,
	})

	return s.jobDetail(ctx, jobID)
}

// failJob records the failure on the job and returns the original error for
// re-propagation. Findings from any earlier run are left untouched.
func (s *Service) failJob(ctx context.Context, job ports.GenerationJob, jobRef string, cause error) error {
	now := nowUTCString()

	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		if txErr := s.repo.MarkJobFailed(txCtx, job.JobID, cause.Error(), now); txErr != nil {
			return txErr
		}
		return s.repo.AppendJobEvent(txCtx, ports.JobEventCreate{
			JobID:     job.JobID,
			Actor:     pipelineActor,
			Body:      "draft generation failed: " + cause.Error(),
			CreatedAt: now,
		})
	}); err != nil {
		logging.Error(ctx, "recording job failure failed",
			slog.String("job_ref", jobRef),
			slog.Any("err", errs.Loggable(err)))
	}

	s.setCacheBestEffort(ctx, cacheJobStatusKey(jobRef), string(domain.StatusFailed))
	s.notifyTransition(JobTransition{
		JobRef:   jobRef,
		TenantID: derefString(job.TenantID),
		Status:   string(domain.StatusFailed),
		At:       now,
	})

	return cause
}

// assembleDraftContext gathers intent, tenant, parsed payload, connector and
// target document context for the generator call.
func (s *Service) assembleDraftContext(ctx context.Context, job ports.GenerationJob) (ports.DraftContext, error) {
	draftCtx := ports.DraftContext{
		Intent:     job.Intent,
		Tenant:     derefString(job.TenantID),
		RawPayload: job.PayloadJSON,
	}

	var payload map[string]any
	if err := json.Unmarshal([]byte(job.PayloadJSON), &payload); err == nil {
		draftCtx.Payload = payload
	}

	if job.ConnectorID != nil {
		connector, err := s.repo.GetConnector(ctx, *job.ConnectorID)
		if err != nil {
			return ports.DraftContext{}, err
		}
		draftCtx.ConnectorName = connector.Name
		draftCtx.ConnectorSource = domain.ConnectorConfigName(connector.ConfigJSON)
	}

	if job.DocumentID != nil {
		document, err := s.repo.GetDocument(ctx, *job.DocumentID)
		if err != nil {
			return ports.DraftContext{}, err
		}
		draftCtx.DocumentTitle = document.Title
	}

	return draftCtx, nil
}

func findingRows(jobID uint64, findings []domain.Finding, createdAt string) []ports.QualityFinding {
	rows := make([]ports.QualityFinding, 0, len(findings))
	for _, finding := range findings {
		row := ports.QualityFinding{
			JobID:     &jobID,
			Category:  finding.Category,
			Severity:  finding.Severity,
			Message:   finding.Message,
			CreatedAt: createdAt,
		}
		if finding.Location != "" {
			row.Location = strPtr(finding.Location)
		}
		rows = append(rows, row)
	}
	return rows
}
