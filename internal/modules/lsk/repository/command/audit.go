package command

import (
	"context"
	"strconv"

	database "voyago/lsk-engine/internal/infrastructure/db"
	"voyago/lsk-engine/internal/modules/lsk/entity"
	"voyago/lsk-engine/internal/modules/lsk/repository"
)

// auditRepository provides the concrete implementation of
// AuditCommandRepository. The table is append-only: there is deliberately no
// Update or Delete, and Insert verifies the single-row-affected invariant
// itself rather than trusting BaseRepository's generic Create, since a
// mismatch here is a distinct, reportable failure kind.
type auditRepository struct {
	DB    database.Database
	Cache database.CacheDatabase
}

var _ repository.AuditCommandRepository = (*auditRepository)(nil)

func NewAuditRepository(db database.Database, cache database.CacheDatabase) repository.AuditCommandRepository {
	return &auditRepository{DB: db, Cache: cache}
}

func (r *auditRepository) Insert(ctx context.Context, log *entity.AuditLog) error {
	result := r.DB.WithContext(ctx).Create(log)
	if result.Error != nil {
		return database.MapDBError(result.Error)
	}
	if result.RowsAffected != 1 {
		return entity.ErrAuditWriteFailed
	}

	// Refresh the latency hint. Redis has no part in the enclosing Postgres
	// transaction, so a later rollback can leave this ahead of what's
	// actually committed; NextStartingValue treats any mismatch as a hint
	// worth logging, never as ground truth.
	if r.Cache != nil {
		key := entity.RangeKey{Table: log.TableName, Column: log.ColumnName, Module: log.ModuleName}
		r.Cache.GetClient().Set(ctx, cacheKey(key), strconv.FormatInt(log.EndValue, 10), cacheTTL)
	}

	return nil
}
