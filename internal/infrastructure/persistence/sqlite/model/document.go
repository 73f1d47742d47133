package model

type Document struct {
	DocumentID uint64  `gorm:"column:document_id;primaryKey;autoIncrement"`
	TenantID   *string `gorm:"column:tenant_id;type:text;index"`
	Title      string  `gorm:"column:title;type:text;not null"`
	Content    string  `gorm:"column:content;type:text;not null"`
	CreatedAt  string  `gorm:"column:created_at;type:text;not null"`
	UpdatedAt  string  `gorm:"column:updated_at;type:text;not null"`
}

func (Document) TableName() string {
	return "documents"
}
