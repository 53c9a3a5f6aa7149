package entity

// AuditLog is the single durable artifact the engine produces: one row per
// RangeKey per request, append-only from the engine's perspective.
type AuditLog struct {
	ID                  string `gorm:"column:id;type:uuid;primaryKey"`
	DevEmail            string `gorm:"column:dev_email;type:text;not null"`
	TableName           string `gorm:"column:table_name;type:text;not null"`
	ColumnName          string `gorm:"column:column_name;type:text;not null"`
	ModuleName          string `gorm:"column:module_name;type:text;not null"`
	StartValue          int64  `gorm:"column:start_value;type:bigint;not null"`
	EndValue            int64  `gorm:"column:end_value;type:bigint;not null"`
	PlaceholderMapping  string `gorm:"column:placeholder_mapping;type:jsonb;not null"`
	SourceXmlElements   string `gorm:"column:source_xml_elements;type:text;not null"`
	ResolvedXmlElements string `gorm:"column:resolved_xml_elements;type:text;not null"`
	CreatedAt           int64  `gorm:"column:created_at;type:bigint;not null;autoCreateTime:milli"`
}

func (AuditLog) TableName() string {
	return "lsk_resolution_audit_log"
}
