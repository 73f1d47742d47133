package pipeline

import (
	"context"
	"errors"
	"strings"

	domain "docforge/internal/domain/pipeline"
	"docforge/internal/errs"
	"docforge/internal/ports"
)

// RunDocumentQualityCheck scans an existing document's de-tagged text with
// the document-scan rules and replaces the document's prior job-less finding
// batch in one transaction. Returns the fresh findings.
func (s *Service) RunDocumentQualityCheck(ctx context.Context, documentID uint64) ([]FindingItem, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, errs.Wrap(err, "check context")
	}
	if s.repo == nil {
		return nil, errors.New("pipeline repository is required")
	}
	if s.uow == nil {
		return nil, errors.New("pipeline unit of work is required")
	}

	document, err := s.repo.GetDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}

	findings := domain.ScanDocument(domain.StripTags(document.Content))

	now := nowUTCString()
	rows := documentFindingRows(documentID, findings, now)
	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		return s.repo.ReplaceDocumentFindings(txCtx, documentID, rows)
	}); err != nil {
		return nil, err
	}

	stored, err := s.repo.ListDocumentFindings(ctx, documentID)
	if err != nil {
		return nil, err
	}
	return mapFindingItems(stored), nil
}

// ListDocumentFindings returns the current job-less finding batch for a
// document.
func (s *Service) ListDocumentFindings(ctx context.Context, documentID uint64) ([]FindingItem, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, errs.Wrap(err, "check context")
	}
	if s.repo == nil {
		return nil, errors.New("pipeline repository is required")
	}

	findings, err := s.repo.ListDocumentFindings(ctx, documentID)
	if err != nil {
		return nil, err
	}
	return mapFindingItems(findings), nil
}

// UpdateFindingResolution resolves or reopens a finding. A non-empty
// resolution sets the resolution text and the resolved timestamp together;
// an empty one clears both. The pair never moves separately.
func (s *Service) UpdateFindingResolution(ctx context.Context, findingID uint64, resolution string) (FindingItem, error) {
	if ctx == nil {
		return FindingItem{}, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return FindingItem{}, errs.Wrap(err, "check context")
	}
	if s.repo == nil {
		return FindingItem{}, errors.New("pipeline repository is required")
	}

	if _, err := s.repo.GetFinding(ctx, findingID); err != nil {
		return FindingItem{}, err
	}

	var resolutionPtr *string
	var resolvedAtPtr *string
	if trimmed := strings.TrimSpace(resolution); trimmed != "" {
		resolutionPtr = strPtr(trimmed)
		resolvedAtPtr = strPtr(nowUTCString())
	}

	if err := s.repo.SetFindingResolution(ctx, findingID, resolutionPtr, resolvedAtPtr); err != nil {
		return FindingItem{}, err
	}

	updated, err := s.repo.GetFinding(ctx, findingID)
	if err != nil {
		return FindingItem{}, err
	}

	items := mapFindingItems([]ports.QualityFinding{updated})
	return items[0], nil
}

func documentFindingRows(documentID uint64, findings []domain.Finding, createdAt string) []ports.QualityFinding {
	rows := make([]ports.QualityFinding, 0, len(findings))
	for _, finding := range findings {
		row := ports.QualityFinding{
			DocumentID: &documentID,
			Category:   finding.Category,
			Severity:   finding.Severity,
			Message:    finding.Message,
			CreatedAt:  createdAt,
		}
		if finding.Location != "" {
			row.Location = strPtr(finding.Location)
		}
		rows = append(rows, row)
	}
	return rows
}
