package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"docforge/internal/errs"
	"docforge/internal/infrastructure/persistence/sqlite/model"
	"docforge/internal/ports"
)

type PipelineRepository struct {
	db *gorm.DB
}

var _ ports.PipelineRepository = (*PipelineRepository)(nil)

func NewPipelineRepository(db *gorm.DB) *PipelineRepository {
	return &PipelineRepository{db: db}
}

func (r *PipelineRepository) dbFromContext(ctx context.Context) (*gorm.DB, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}

	tx := ports.TxFromContext(ctx)
	if tx == nil {
		return r.db.WithContext(ctx), nil
	}

	gormTx, ok := tx.(*gorm.DB)
	if !ok || gormTx == nil {
		return nil, fmt.Errorf("invalid tx in context: %T", tx)
	}
	return gormTx.WithContext(ctx), nil
}

func (r *PipelineRepository) ListConnectors(ctx context.Context, tenantID *string) ([]ports.Connector, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := db.Model(&model.Connector{})
	if tenantID != nil && strings.TrimSpace(*tenantID) != "" {
		query = query.Where("tenant_id = ? OR tenant_id IS NULL", *tenantID)
	} else {
		query = query.Where("tenant_id IS NULL")
	}

	var rows []model.Connector
	if err := query.Order("is_active desc, updated_at desc").Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query connectors")
	}

	items := make([]ports.Connector, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapConnector(row))
	}
	return items, nil
}

func (r *PipelineRepository) GetConnector(ctx context.Context, connectorID uint64) (ports.Connector, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.Connector{}, err
	}

	var row model.Connector
	if err := db.Where("connector_id = ?", connectorID).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.Connector{}, ports.ErrConnectorNotFound
		}
		return ports.Connector{}, errs.Wrap(err, "query connector")
	}
	return mapConnector(row), nil
}

func (r *PipelineRepository) CreateConnector(ctx context.Context, connector ports.Connector) (ports.Connector, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.Connector{}, err
	}

	row := model.Connector{
		TenantID:   connector.TenantID,
		Name:       connector.Name,
		Type:       connector.Type,
		ConfigJSON: connector.ConfigJSON,
		IsActive:   connector.IsActive,
		CreatedAt:  connector.CreatedAt,
		UpdatedAt:  connector.UpdatedAt,
	}
	if err := db.Create(&row).Error; err != nil {
		return ports.Connector{}, errs.Wrap(err, "insert connector")
	}
	return mapConnector(row), nil
}

func (r *PipelineRepository) SetConnectorActive(ctx context.Context, connectorID uint64, isActive bool, updatedAt string) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	result := db.Model(&model.Connector{}).
		Where("connector_id = ?", connectorID).
		Updates(map[string]any{
			"is_active":  isActive,
			"updated_at": updatedAt,
		})
	if result.Error != nil {
		return errs.Wrap(result.Error, "update connector active flag")
	}
	if result.RowsAffected == 0 {
		return ports.ErrConnectorNotFound
	}
	return nil
}

func (r *PipelineRepository) CreateJob(ctx context.Context, job ports.GenerationJob) (ports.GenerationJob, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.GenerationJob{}, err
	}

	row := model.GenerationJob{
		TenantID:    job.TenantID,
		Intent:      job.Intent,
		PayloadJSON: job.PayloadJSON,
		DocumentID:  job.DocumentID,
		ConnectorID: job.ConnectorID,
		Status:      job.Status,
		ResultDraft: job.ResultDraft,
		Error:       job.Error,
		CreatedAt:   job.CreatedAt,
		UpdatedAt:   job.UpdatedAt,
		CompletedAt: job.CompletedAt,
	}
	if err := db.Create(&row).Error; err != nil {
		return ports.GenerationJob{}, errs.Wrap(err, "insert generation job")
	}
	return mapJob(row), nil
}

func (r *PipelineRepository) GetJob(ctx context.Context, jobID uint64) (ports.GenerationJob, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.GenerationJob{}, err
	}

	var row model.GenerationJob
	if err := db.Where("job_id = ?", jobID).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.GenerationJob{}, ports.ErrJobNotFound
		}
		return ports.GenerationJob{}, errs.Wrap(err, "query generation job")
	}
	return mapJob(row), nil
}

func (r *PipelineRepository) ListJobs(ctx context.Context, filter ports.JobFilter) ([]ports.GenerationJob, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := db.Model(&model.GenerationJob{})
	if filter.TenantID != nil && strings.TrimSpace(*filter.TenantID) != "" {
		query = query.Where("tenant_id = ?", *filter.TenantID)
	} else {
		query = query.Where("tenant_id IS NULL")
	}
	if status := strings.TrimSpace(filter.Status); status != "" {
		query = query.Where("status = ?", status)
	}

	var rows []model.GenerationJob
	if err := query.Order("job_id desc").Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query generation jobs")
	}

	items := make([]ports.GenerationJob, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapJob(row))
	}
	return items, nil
}

func (r *PipelineRepository) MarkJobRunning(ctx context.Context, jobID uint64, updatedAt string) error {
	return r.updateJob(ctx, jobID, map[string]any{
		"status":     "RUNNING",
		"error":      nil,
		"updated_at": updatedAt,
	}, "mark job running")
}

func (r *PipelineRepository) MarkJobCompleted(ctx context.Context, jobID uint64, resultDraft string, completedAt string) error {
	return r.updateJob(ctx, jobID, map[string]any{
		"status":       "COMPLETED",
		"result_draft": resultDraft,
		"error":        nil,
		"completed_at": completedAt,
		"updated_at":   completedAt,
	}, "mark job completed")
}

func (r *PipelineRepository) MarkJobFailed(ctx context.Context, jobID uint64, errorMessage string, updatedAt string) error {
	return r.updateJob(ctx, jobID, map[string]any{
		"status":       "FAILED",
		"error":        errorMessage,
		"result_draft": nil,
		"completed_at": nil,
		"updated_at":   updatedAt,
	}, "mark job failed")
}

func (r *PipelineRepository) MarkJobCancelled(ctx context.Context, jobID uint64, completedAt string) error {
	return r.updateJob(ctx, jobID, map[string]any{
		"status":       "CANCELLED",
		"completed_at": completedAt,
		"updated_at":   completedAt,
	}, "mark job cancelled")
}

func (r *PipelineRepository) MarkJobApproved(ctx context.Context, jobID uint64, completedAt string) error {
	return r.updateJob(ctx, jobID, map[string]any{
		"status":       "COMPLETED",
		"error":        nil,
		"completed_at": completedAt,
		"updated_at":   completedAt,
	}, "mark job approved")
}

func (r *PipelineRepository) ResetJobForRetry(ctx context.Context, jobID uint64, updatedAt string) error {
	return r.updateJob(ctx, jobID, map[string]any{
		"status":       "PENDING",
		"result_draft": nil,
		"error":        nil,
		"completed_at": nil,
		"updated_at":   updatedAt,
	}, "reset job for retry")
}

func (r *PipelineRepository) updateJob(ctx context.Context, jobID uint64, fields map[string]any, action string) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	result := db.Model(&model.GenerationJob{}).Where("job_id = ?", jobID).Updates(fields)
	if result.Error != nil {
		return errs.Wrap(result.Error, action)
	}
	if result.RowsAffected == 0 {
		return ports.ErrJobNotFound
	}
	return nil
}

func (r *PipelineRepository) AppendJobEvent(ctx context.Context, input ports.JobEventCreate) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	row := model.JobEvent{
		JobID:     input.JobID,
		Actor:     input.Actor,
		Body:      input.Body,
		CreatedAt: input.CreatedAt,
	}
	if err := db.Create(&row).Error; err != nil {
		return errs.Wrap(err, "insert job event")
	}
	return nil
}

func (r *PipelineRepository) ListJobEvents(ctx context.Context, jobID uint64) ([]ports.JobEvent, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var rows []model.JobEvent
	if err := db.
		Where("job_id = ?", jobID).
		Order("event_id asc").
		Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query job events")
	}

	items := make([]ports.JobEvent, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.JobEvent{
			EventID:   row.EventID,
			JobID:     row.JobID,
			Actor:     row.Actor,
			Body:      row.Body,
			CreatedAt: row.CreatedAt,
		})
	}
	return items, nil
}

func mapConnector(row model.Connector) ports.Connector {
	return ports.Connector{
		ConnectorID: row.ConnectorID,
		TenantID:    row.TenantID,
		Name:        row.Name,
		Type:        row.Type,
		ConfigJSON:  row.ConfigJSON,
		IsActive:    row.IsActive,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}

func mapJob(row model.GenerationJob) ports.GenerationJob {
	return ports.GenerationJob{
		JobID:       row.JobID,
		TenantID:    row.TenantID,
		Intent:      row.Intent,
		PayloadJSON: row.PayloadJSON,
		DocumentID:  row.DocumentID,
		ConnectorID: row.ConnectorID,
		Status:      row.Status,
		ResultDraft: row.ResultDraft,
		Error:       row.Error,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
		CompletedAt: row.CompletedAt,
	}
}
