package model

type GenerationJob struct {
	JobID       uint64  `gorm:"column:job_id;primaryKey;autoIncrement"`
	TenantID    *string `gorm:"column:tenant_id;type:text;index"`
	Intent      string  `gorm:"column:intent;type:text;not null"`
	PayloadJSON string  `gorm:"column:payload_json;type:text;not null"`
	DocumentID  *uint64 `gorm:"column:document_id;index"`
	ConnectorID *uint64 `gorm:"column:connector_id;index"`
	Status      string  `gorm:"column:status;type:text;not null;index"`
	ResultDraft *string `gorm:"column:result_draft;type:text"`
	Error       *string `gorm:"column:error;type:text"`
	CreatedAt   string  `gorm:"column:created_at;type:text;not null"`
	UpdatedAt   string  `gorm:"column:updated_at;type:text;not null"`
	CompletedAt *string `gorm:"column:completed_at;type:text"`
}

func (GenerationJob) TableName() string {
	return "generation_jobs"
}
