package model

type JobEvent struct {
	EventID   uint64 `gorm:"column:event_id;primaryKey;autoIncrement"`
	JobID     uint64 `gorm:"column:job_id;not null;index"`
	Actor     string `gorm:"column:actor;type:text;not null"`
	Body      string `gorm:"column:body;type:text;not null"`
	CreatedAt string `gorm:"column:created_at;type:text;not null"`
}

func (JobEvent) TableName() string {
	return "job_events"
}
