package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"docforge/internal/bootstrap/logging"
	domain "docforge/internal/domain/pipeline"
	"docforge/internal/errs"
	"docforge/internal/ports"
)

// CreateJob records a new generation job in PENDING, opportunistically
// creates an OPEN suggestion when the input carries a title or target
// document, and applies the dispatch policy. Suggestion creation is
// fire-and-forget: its failure is logged, never surfaced, because job
// creation is the guaranteed outcome. In immediate mode a processing
// failure is returned alongside the created job ref.
func (s *Service) CreateJob(ctx context.Context, input CreateJobInput) (CreateJobResult, error) {
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

	intent, err := domain.NormalizeIntent(input.Intent)
	if err != nil {
		return CreateJobResult{}, err
	}

	// Referenced collaborators must exist; a dangling id is a distinct
	// not-found error, not an empty result.
	var documentTitle string
	if input.DocumentID != nil {
		document, err := s.repo.GetDocument(ctx, *input.DocumentID)
		if err != nil {
			return CreateJobResult{}, err
		}
		documentTitle = document.Title
	}
	if input.ConnectorID != nil {
		if _, err := s.repo.GetConnector(ctx, *input.ConnectorID); err != nil {
			return CreateJobResult{}, err
		}
	}

	payloadJSON := strings.TrimSpace(input.Payload)
	if payloadJSON == "" {
		payloadJSON = "{}"
	}

	now := nowUTCString()
	actor := normalizeActor(input.Actor)

	var created ports.GenerationJob
	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		var txErr error
		created, txErr = s.repo.CreateJob(txCtx, ports.GenerationJob{
			TenantID:    input.TenantID,
			Intent:      intent,
			PayloadJSON: payloadJSON,
			DocumentID:  input.DocumentID,
			ConnectorID: input.ConnectorID,
			Status:      string(domain.StatusPending),
			CreatedAt:   now,
			UpdatedAt:   now,
		})
		if txErr != nil {
			return txErr
		}

		return s.repo.AppendJobEvent(txCtx, ports.JobEventCreate{
			JobID:     created.JobID,
			Actor:     actor,
			Body:      fmt.Sprintf("job created with intent %s", intent),
			CreatedAt: now,
		})
	}); err != nil {
		return CreateJobResult{}, err
	}

	jobRef := formatJobRef(created.JobID)
	s.setCacheBestEffort(ctx, cacheJobStatusKey(jobRef), string(domain.StatusPending))
	s.notifyTransition(JobTransition{
		JobRef:   jobRef,
		TenantID: derefString(input.TenantID),
		Status:   string(domain.StatusPending),
		At:       now,
	})

	s.createSuggestionBestEffort(ctx, created, strings.TrimSpace(input.Title), documentTitle)

	mode, dispatchErr := s.dispatchJob(ctx, jobRef, input.TenantID)
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

// createSuggestionBestEffort opportunistically opens an UpdateSuggestion for
// jobs that name a title or target a document. Failures are log-only.
func (s *Service) createSuggestionBestEffort(ctx context.Context, job ports.GenerationJob, title string, documentTitle string) {
	if title == "" && job.DocumentID == nil {
		return
	}

	if title == "" {
		title = fmt.Sprintf("Review generated draft for %q", documentTitle)
	}

	now := nowUTCString()
	_, err := s.repo.CreateSuggestion(ctx, ports.UpdateSuggestion{
		JobID:      job.JobID,
		DocumentID: job.DocumentID,
		Title:      title,
		Summary:    fmt.Sprintf("Proposed by generation job %s (%s)", formatJobRef(job.JobID), job.Intent),
		Status:     domain.SuggestionOpen,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		logging.Warn(ctx, "suggestion auto-creation failed",
			slog.String("job_ref", formatJobRef(job.JobID)),
			slog.Any("err", errs.Loggable(err)))
	}
}

func (s *Service) setCacheBestEffort(ctx context.Context, key string, value string) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Set(ctx, key, value, 0)
}
