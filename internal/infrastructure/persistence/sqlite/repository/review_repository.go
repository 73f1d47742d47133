package repository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"docforge/internal/errs"
	"docforge/internal/infrastructure/persistence/sqlite/model"
	"docforge/internal/ports"
)

func (r *PipelineRepository) ListJobFindings(ctx context.Context, jobID uint64) ([]ports.QualityFinding, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var rows []model.QualityFinding
	if err := db.
		Where("job_id = ?", jobID).
		Order("finding_id asc").
		Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query job findings")
	}
	return mapFindings(rows), nil
}

func (r *PipelineRepository) ListDocumentFindings(ctx context.Context, documentID uint64) ([]ports.QualityFinding, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var rows []model.QualityFinding
	if err := db.
		Where("document_id = ? AND job_id IS NULL", documentID).
		Order("finding_id asc").
		Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query document findings")
	}
	return mapFindings(rows), nil
}

func (r *PipelineRepository) GetFinding(ctx context.Context, findingID uint64) (ports.QualityFinding, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.QualityFinding{}, err
	}

	var row model.QualityFinding
	if err := db.Where("finding_id = ?", findingID).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.QualityFinding{}, ports.ErrFindingNotFound
		}
		return ports.QualityFinding{}, errs.Wrap(err, "query finding")
	}
	return mapFinding(row), nil
}

func (r *PipelineRepository) ReplaceJobFindings(ctx context.Context, jobID uint64, findings []ports.QualityFinding) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	if err := db.Where("job_id = ?", jobID).Delete(&model.QualityFinding{}).Error; err != nil {
		return errs.Wrap(err, "delete prior job findings")
	}
	return insertFindings(db, findings)
}

func (r *PipelineRepository) DeleteJobFindings(ctx context.Context, jobID uint64) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	if err := db.Where("job_id = ?", jobID).Delete(&model.QualityFinding{}).Error; err != nil {
		return errs.Wrap(err, "delete job findings")
	}
	return nil
}

func (r *PipelineRepository) ReplaceDocumentFindings(ctx context.Context, documentID uint64, findings []ports.QualityFinding) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	if err := db.
		Where("document_id = ? AND job_id IS NULL", documentID).
		Delete(&model.QualityFinding{}).Error; err != nil {
		return errs.Wrap(err, "delete prior document findings")
	}
	return insertFindings(db, findings)
}

func (r *PipelineRepository) SetFindingResolution(ctx context.Context, findingID uint64, resolution *string, resolvedAt *string) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	result := db.Model(&model.QualityFinding{}).
		Where("finding_id = ?", findingID).
		Updates(map[string]any{
			"resolution":  resolution,
			"resolved_at": resolvedAt,
		})
	if result.Error != nil {
		return errs.Wrap(result.Error, "update finding resolution")
	}
	if result.RowsAffected == 0 {
		return ports.ErrFindingNotFound
	}
	return nil
}

func (r *PipelineRepository) CreateSuggestion(ctx context.Context, suggestion ports.UpdateSuggestion) (ports.UpdateSuggestion, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.UpdateSuggestion{}, err
	}

	row := model.UpdateSuggestion{
		JobID:       suggestion.JobID,
		DocumentID:  suggestion.DocumentID,
		Title:       suggestion.Title,
		Summary:     suggestion.Summary,
		DiffPreview: suggestion.DiffPreview,
		Status:      suggestion.Status,
		Resolution:  suggestion.Resolution,
		ResolvedAt:  suggestion.ResolvedAt,
		CreatedAt:   suggestion.CreatedAt,
		UpdatedAt:   suggestion.UpdatedAt,
	}
	if err := db.Create(&row).Error; err != nil {
		return ports.UpdateSuggestion{}, errs.Wrap(err, "insert update suggestion")
	}
	return mapSuggestion(row), nil
}

func (r *PipelineRepository) GetSuggestion(ctx context.Context, suggestionID uint64) (ports.UpdateSuggestion, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.UpdateSuggestion{}, err
	}

	var row model.UpdateSuggestion
	if err := db.Where("suggestion_id = ?", suggestionID).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.UpdateSuggestion{}, ports.ErrSuggestionNotFound
		}
		return ports.UpdateSuggestion{}, errs.Wrap(err, "query update suggestion")
	}
	return mapSuggestion(row), nil
}

func (r *PipelineRepository) ListSuggestions(ctx context.Context, tenantID *string) ([]ports.UpdateSuggestion, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := db.Model(&model.UpdateSuggestion{})
	if tenantID != nil && strings.TrimSpace(*tenantID) != "" {
		sub := db.Model(&model.GenerationJob{}).
			Select("job_id").
			Where("tenant_id = ?", *tenantID)
		query = query.Where("job_id IN (?)", sub)
	}

	var rows []model.UpdateSuggestion
	if err := query.Order("updated_at desc, suggestion_id desc").Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query update suggestions")
	}

	items := make([]ports.UpdateSuggestion, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapSuggestion(row))
	}
	return items, nil
}

func (r *PipelineRepository) UpdateSuggestionStatus(ctx context.Context, suggestionID uint64, status string, resolution *string, resolvedAt *string, updatedAt string) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	result := db.Model(&model.UpdateSuggestion{}).
		Where("suggestion_id = ?", suggestionID).
		Updates(map[string]any{
			"status":      status,
			"resolution":  resolution,
			"resolved_at": resolvedAt,
			"updated_at":  updatedAt,
		})
	if result.Error != nil {
		return errs.Wrap(result.Error, "update suggestion status")
	}
	if result.RowsAffected == 0 {
		return ports.ErrSuggestionNotFound
	}
	return nil
}

func (r *PipelineRepository) CreateDocument(ctx context.Context, document ports.Document) (ports.Document, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.Document{}, err
	}

	row := model.Document{
		TenantID:  document.TenantID,
		Title:     document.Title,
		Content:   document.Content,
		CreatedAt: document.CreatedAt,
		UpdatedAt: document.UpdatedAt,
	}
	if err := db.Create(&row).Error; err != nil {
		return ports.Document{}, errs.Wrap(err, "insert document")
	}
	return mapDocument(row), nil
}

func (r *PipelineRepository) GetDocument(ctx context.Context, documentID uint64) (ports.Document, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.Document{}, err
	}

	var row model.Document
	if err := db.Where("document_id = ?", documentID).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.Document{}, ports.ErrDocumentNotFound
		}
		return ports.Document{}, errs.Wrap(err, "query document")
	}
	return mapDocument(row), nil
}

func (r *PipelineRepository) ListDocuments(ctx context.Context, tenantID *string) ([]ports.Document, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := db.Model(&model.Document{})
	if tenantID != nil && strings.TrimSpace(*tenantID) != "" {
		query = query.Where("tenant_id = ?", *tenantID)
	} else {
		query = query.Where("tenant_id IS NULL")
	}

	var rows []model.Document
	if err := query.Order("document_id asc").Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query documents")
	}

	items := make([]ports.Document, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapDocument(row))
	}
	return items, nil
}

func insertFindings(db *gorm.DB, findings []ports.QualityFinding) error {
	if len(findings) == 0 {
		return nil
	}

	rows := make([]model.QualityFinding, 0, len(findings))
	for _, finding := range findings {
		rows = append(rows, model.QualityFinding{
			JobID:      finding.JobID,
			DocumentID: finding.DocumentID,
			Category:   finding.Category,
			Severity:   finding.Severity,
			Message:    finding.Message,
			Location:   finding.Location,
			Resolution: finding.Resolution,
			ResolvedAt: finding.ResolvedAt,
			CreatedAt:  finding.CreatedAt,
		})
	}
	if err := db.Create(&rows).Error; err != nil {
		return errs.Wrap(err, "insert findings")
	}
	return nil
}

func mapFindings(rows []model.QualityFinding) []ports.QualityFinding {
	items := make([]ports.QualityFinding, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapFinding(row))
	}
	return items
}

func mapFinding(row model.QualityFinding) ports.QualityFinding {
	return ports.QualityFinding{
		FindingID:  row.FindingID,
		JobID:      row.JobID,
		DocumentID: row.DocumentID,
		Category:   row.Category,
		Severity:   row.Severity,
		Message:    row.Message,
		Location:   row.Location,
		Resolution: row.Resolution,
		ResolvedAt: row.ResolvedAt,
		CreatedAt:  row.CreatedAt,
	}
}

func mapSuggestion(row model.UpdateSuggestion) ports.UpdateSuggestion {
	return ports.UpdateSuggestion{
		SuggestionID: row.SuggestionID,
		JobID:        row.JobID,
		DocumentID:   row.DocumentID,
		Title:        row.Title,
		Summary:      row.Summary,
		DiffPreview:  row.DiffPreview,
		Status:       row.Status,
		Resolution:   row.Resolution,
		ResolvedAt:   row.ResolvedAt,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
}

func mapDocument(row model.Document) ports.Document {
	return ports.Document{
		DocumentID: row.DocumentID,
		TenantID:   row.TenantID,
		Title:      row.Title,
		Content:    row.Content,
		CreatedAt:  row.CreatedAt,
		UpdatedAt:  row.UpdatedAt,
	}
}
