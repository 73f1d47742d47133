package pipeline

import (
	"context"
	"errors"
	"strings"

	"docforge/internal/errs"
	"docforge/internal/ports"
)

// AddDocument registers a document so jobs and quality checks can target it.
// The document model here is deliberately minimal; the surrounding platform
// owns the full document domain.
func (s *Service) AddDocument(ctx context.Context, tenantID *string, title string, content string) (DocumentItem, error) {
	if ctx == nil {
		return DocumentItem{}, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return DocumentItem{}, errs.Wrap(err, "check context")
	}
	if s.repo == nil {
		return DocumentItem{}, errors.New("pipeline repository is required")
	}

	title = strings.TrimSpace(title)
	if title == "" {
		return DocumentItem{}, errors.New("document title is required")
	}

	now := nowUTCString()
	created, err := s.repo.CreateDocument(ctx, ports.Document{
		TenantID:  tenantID,
		Title:     title,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return DocumentItem{}, err
	}

	return DocumentItem{
		DocumentID: created.DocumentID,
		TenantID:   derefString(created.TenantID),
		Title:      created.Title,
		UpdatedAt:  created.UpdatedAt,
	}, nil
}

// ListDocuments returns the tenant's documents (nil tenant = global scope).
func (s *Service) ListDocuments(ctx context.Context, tenantID *string) ([]DocumentItem, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, errs.Wrap(err, "check context")
	}
	if s.repo == nil {
		return nil, errors.New("pipeline repository is required")
	}

	documents, err := s.repo.ListDocuments(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	items := make([]DocumentItem, 0, len(documents))
	for _, document := range documents {
		items = append(items, DocumentItem{
			DocumentID: document.DocumentID,
			TenantID:   derefString(document.TenantID),
			Title:      document.Title,
			UpdatedAt:  document.UpdatedAt,
		})
	}
	return items, nil
}
