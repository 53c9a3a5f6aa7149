/*
|------------------------------------------------------------------------------------
| REPOSITORY ARCHITECTURAL STANDARDS & QUERY OPTIMIZATION MANIFESTO
|------------------------------------------------------------------------------------
|
| The Query Repository is dedicated to data retrieval. It follows the R-side of
| CQRS, focusing on performance, filtering, and non-mutating operations.
|
| [1. SELECTIVE RETRIEVAL (NO SELECT *)]
| - Always specify required fields in .Select(). Avoid 'SELECT *'.
|
| [2. NULLABLE VS ERROR]
| - Absence of rows is NOT an error for Query methods: return an empty slice.
|
|------------------------------------------------------------------------------------
*/
package query

import (
	"context"

	database "voyago/lsk-engine/internal/infrastructure/db"
	"voyago/lsk-engine/internal/modules/lsk/entity"
	"voyago/lsk-engine/internal/modules/lsk/repository"
)

type auditRepository struct {
	DB database.Database
}

var _ repository.AuditQueryRepository = (*auditRepository)(nil)

func NewAuditRepository(db database.Database) repository.AuditQueryRepository {
	return &auditRepository{DB: db}
}

func (r *auditRepository) History(ctx context.Context, key entity.RangeKey) ([]entity.AuditLog, error) {
	var logs []entity.AuditLog
	err := r.DB.WithContext(ctx).
		Model(&entity.AuditLog{}).
		Select(
			"id",
			"dev_email",
			"table_name",
			"column_name",
			"module_name",
			"start_value",
			"end_value",
			"placeholder_mapping",
			"source_xml_elements",
			"resolved_xml_elements",
			"created_at",
		).
		Where("table_name = ? AND column_name = ? AND module_name = ?", key.Table, key.Column, key.Module).
		Order("start_value ASC").
		Find(&logs).
		Error

	if err != nil {
		return nil, database.MapDBError(err)
	}
	return logs, nil
}
