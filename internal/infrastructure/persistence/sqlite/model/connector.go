package model

type Connector struct {
	ConnectorID uint64  `gorm:"column:connector_id;primaryKey;autoIncrement"`
	TenantID    *string `gorm:"column:tenant_id;type:text;index"`
	Name        string  `gorm:"column:name;type:text;not null"`
	Type        string  `gorm:"column:type;type:text;not null"`
	ConfigJSON  string  `gorm:"column:config_json;type:text;not null"`
	IsActive    bool    `gorm:"column:is_active;not null;default:1"`
	CreatedAt   string  `gorm:"column:created_at;type:text;not null"`
	UpdatedAt   string  `gorm:"column:updated_at;type:text;not null"`
}

func (Connector) TableName() string {
	return "connectors"
}
