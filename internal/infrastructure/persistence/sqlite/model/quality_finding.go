package model

type QualityFinding struct {
	FindingID  uint64  `gorm:"column:finding_id;primaryKey;autoIncrement"`
	JobID      *uint64 `gorm:"column:job_id;index"`
	DocumentID *uint64 `gorm:"column:document_id;index"`
	Category   string  `gorm:"column:category;type:text;not null"`
	Severity   string  `gorm:"column:severity;type:text;not null"`
	Message    string  `gorm:"column:message;type:text;not null"`
	Location   *string `gorm:"column:location;type:text"`
	Resolution *string `gorm:"column:resolution;type:text"`
	ResolvedAt *string `gorm:"column:resolved_at;type:text"`
	CreatedAt  string  `gorm:"column:created_at;type:text;not null"`
}

func (QualityFinding) TableName() string {
	return "quality_findings"
}
