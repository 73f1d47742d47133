package pipeline

import (
	"context"
	"errors"
	"strings"

	domain "docforge/internal/domain/pipeline"
	"docforge/internal/errs"
)

// ListSuggestions returns suggestions scoped by the owning job's tenant,
// most recently updated first. A nil tenant lists every suggestion.
func (s *Service) ListSuggestions(ctx context.Context, tenantID *string) ([]SuggestionItem, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, errs.Wrap(err, "check context")
	}
	if s.repo == nil {
		return nil, errors.New("pipeline repository is required")
	}

	suggestions, err := s.repo.ListSuggestions(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	items := make([]SuggestionItem, 0, len(suggestions))
	for _, suggestion := range suggestions {
		items = append(items, mapSuggestionItem(suggestion))
	}
	return items, nil
}

// UpdateSuggestion applies a reviewer decision. The status is normalized
// (unknown values fall back to OPEN); a terminal status records the
// resolution and a resolved timestamp together, and reopening clears both;
// the timestamp and the resolution always move as a pair.
func (s *Service) UpdateSuggestion(ctx context.Context, input UpdateSuggestionInput) (SuggestionItem, error) {
	if ctx == nil {
		return SuggestionItem{}, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return SuggestionItem{}, errs.Wrap(err, "check context")
	}
	if s.repo == nil {
		return SuggestionItem{}, errors.New("pipeline repository is required")
	}

	if _, err := s.repo.GetSuggestion(ctx, input.SuggestionID); err != nil {
		return SuggestionItem{}, err
	}

	status := domain.NormalizeSuggestionStatus(input.Status)
	now := nowUTCString()

	var resolution *string
	var resolvedAt *string
	if domain.SuggestionResolved(status) {
		resolvedAt = strPtr(now)
		if trimmed := strings.TrimSpace(input.Resolution); trimmed != "" {
			resolution = strPtr(trimmed)
		}
	}

	if err := s.repo.UpdateSuggestionStatus(ctx, input.SuggestionID, status, resolution, resolvedAt, now); err != nil {
		return SuggestionItem{}, err
	}

	updated, err := s.repo.GetSuggestion(ctx, input.SuggestionID)
	if err != nil {
		return SuggestionItem{}, err
	}
	return mapSuggestionItem(updated), nil
}
