package pipeline

import (
	"context"
	"errors"

	"docforge/internal/errs"
	"docforge/internal/ports"
)

// ListJobs returns jobs scoped strictly to the tenant (nil tenant = global
// jobs only), most recent first, with their findings and suggestions
// embedded for display.
func (s *Service) ListJobs(ctx context.Context, tenantID *string, status string) ([]JobListItem, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, errs.Wrap(err, "check context")
	}
	if s.repo == nil {
		return nil, errors.New("pipeline repository is required")
	}

	jobs, err := s.repo.ListJobs(ctx, ports.JobFilter{TenantID: tenantID, Status: status})
	if err != nil {
		return nil, err
	}

	suggestions, err := s.repo.ListSuggestions(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	suggestionsByJob := make(map[uint64][]SuggestionItem, len(suggestions))
	for _, suggestion := range suggestions {
		suggestionsByJob[suggestion.JobID] = append(suggestionsByJob[suggestion.JobID], mapSuggestionItem(suggestion))
	}

	items := make([]JobListItem, 0, len(jobs))
	for _, job := range jobs {
		findings, err := s.repo.ListJobFindings(ctx, job.JobID)
		if err != nil {
			return nil, err
		}

		items = append(items, JobListItem{
			JobRef:      formatJobRef(job.JobID),
			TenantID:    derefString(job.TenantID),
			Intent:      job.Intent,
			Status:      job.Status,
			CreatedAt:   job.CreatedAt,
			UpdatedAt:   job.UpdatedAt,
			CompletedAt: derefString(job.CompletedAt),
			Error:       derefString(job.Error),
			Findings:    mapFindingItems(findings),
			Suggestions: suggestionsByJob[job.JobID],
		})
	}
	return items, nil
}

// GetJob returns full job detail with findings, suggestions and the event
// timeline.
func (s *Service) GetJob(ctx context.Context, jobRef string) (JobDetail, error) {
	if ctx == nil {
		return JobDetail{}, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return JobDetail{}, errs.Wrap(err, "check context")
	}
	if s.repo == nil {
		return JobDetail{}, errors.New("pipeline repository is required")
	}

	jobID, err := parseJobRef(jobRef)
	if err != nil {
		return JobDetail{}, err
	}

	return s.jobDetail(ctx, jobID)
}

func (s *Service) jobDetail(ctx context.Context, jobID uint64) (JobDetail, error) {
	job, err := s.repo.GetJob(ctx, jobID)
	if err != nil {
		return JobDetail{}, err
	}

	findings, err := s.repo.ListJobFindings(ctx, jobID)
	if err != nil {
		return JobDetail{}, err
	}

	suggestions, err := s.repo.ListSuggestions(ctx, job.TenantID)
	if err != nil {
		return JobDetail{}, err
	}
	ownSuggestions := make([]SuggestionItem, 0, 1)
	for _, suggestion := range suggestions {
		if suggestion.JobID == jobID {
			ownSuggestions = append(ownSuggestions, mapSuggestionItem(suggestion))
		}
	}

	events, err := s.repo.ListJobEvents(ctx, jobID)
	if err != nil {
		return JobDetail{}, err
	}
	eventItems := make([]EventItem, 0, len(events))
	for _, event := range events {
		eventItems = append(eventItems, EventItem{
			EventID:   event.EventID,
			Actor:     event.Actor,
			CreatedAt: event.CreatedAt,
			Body:      event.Body,
		})
	}

	return JobDetail{
		JobRef:      formatJobRef(job.JobID),
		TenantID:    derefString(job.TenantID),
		Intent:      job.Intent,
		Payload:     job.PayloadJSON,
		DocumentID:  derefUint64(job.DocumentID),
		ConnectorID: derefUint64(job.ConnectorID),
		Status:      job.Status,
		ResultDraft: derefString(job.ResultDraft),
		Error:       derefString(job.Error),
		CreatedAt:   job.CreatedAt,
		UpdatedAt:   job.UpdatedAt,
		CompletedAt: derefString(job.CompletedAt),
		Findings:    mapFindingItems(findings),
		Suggestions: ownSuggestions,
		Events:      eventItems,
	}, nil
}

func mapFindingItems(findings []ports.QualityFinding) []FindingItem {
	items := make([]FindingItem, 0, len(findings))
	for _, finding := range findings {
		item := FindingItem{
			FindingID:  finding.FindingID,
			DocumentID: derefUint64(finding.DocumentID),
			Category:   finding.Category,
			Severity:   finding.Severity,
			Message:    finding.Message,
			Location:   derefString(finding.Location),
			Resolution: derefString(finding.Resolution),
			ResolvedAt: derefString(finding.ResolvedAt),
		}
		if finding.JobID != nil {
			item.JobRef = formatJobRef(*finding.JobID)
		}
		items = append(items, item)
	}
	return items
}

func mapSuggestionItem(suggestion ports.UpdateSuggestion) SuggestionItem {
	return SuggestionItem{
		SuggestionID: suggestion.SuggestionID,
		JobRef:       formatJobRef(suggestion.JobID),
		DocumentID:   derefUint64(suggestion.DocumentID),
		Title:        suggestion.Title,
		Summary:      suggestion.Summary,
		DiffPreview:  derefString(suggestion.DiffPreview),
		Status:       suggestion.Status,
		Resolution:   derefString(suggestion.Resolution),
		ResolvedAt:   derefString(suggestion.ResolvedAt),
		UpdatedAt:    suggestion.UpdatedAt,
	}
}
