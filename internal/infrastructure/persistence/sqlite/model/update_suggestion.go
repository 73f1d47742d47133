package model

type UpdateSuggestion struct {
	SuggestionID uint64  `gorm:"column:suggestion_id;primaryKey;autoIncrement"`
	JobID        uint64  `gorm:"column:job_id;not null;index"`
	DocumentID   *uint64 `gorm:"column:document_id;index"`
	Title        string  `gorm:"column:title;type:text;not null"`
	Summary      string  `gorm:"column:summary;type:text;not null"`
	DiffPreview  *string `gorm:"column:diff_preview;type:text"`
	Status       string  `gorm:"column:status;type:text;not null"`
	Resolution   *string `gorm:"column:resolution;type:text"`
	ResolvedAt   *string `gorm:"column:resolved_at;type:text"`
	CreatedAt    string  `gorm:"column:created_at;type:text;not null"`
	UpdatedAt    string  `gorm:"column:updated_at;type:text;not null;index"`
}

func (UpdateSuggestion) TableName() string {
	return "update_suggestions"
}
