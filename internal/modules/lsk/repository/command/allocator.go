/*
|------------------------------------------------------------------------------------
| REPOSITORY ARCHITECTURAL STANDARDS & PERSISTENCE MANIFESTO
|------------------------------------------------------------------------------------
|
| The Repository layer is responsible for low-level data persistence. It acts as
| a bridge between the Domain Entities and the Physical Database.
|
| [1. ERROR MAPPING & TRANSLATION]
| - Repositories MUST NOT return raw database errors.
| - All errors must be passed through an ErrorMapper to be translated into
|   standardized apperror.AppError.
|
| [2. ATOMICITY COMPLIANCE]
| - This repository never opens its own transaction: it always runs on
|   whatever connection the caller's ctx carries, so the advisory lock it
|   takes stays held for the lifetime of the enclosing Atomic() block.
|
|------------------------------------------------------------------------------------
*/
package command

import (
	"context"
	"fmt"
	"strconv"
	"time"

	database "voyago/lsk-engine/internal/infrastructure/db"
	"voyago/lsk-engine/internal/infrastructure/logger"
	"voyago/lsk-engine/internal/modules/lsk/entity"
	"voyago/lsk-engine/internal/modules/lsk/repository"
)

// cacheTTL bounds how long a stale maxend hint can linger once nothing is
// allocating against a RangeKey anymore.
const cacheTTL = 24 * time.Hour

// allocatorRepository is the concrete implementation of
// repository.AllocatorRepository.
type allocatorRepository struct {
	DB    database.Database
	Cache database.CacheDatabase
	Log   logger.Logger

	// LockTimeoutSeconds bounds how long a single NextStartingValue call may
	// wait to acquire its advisory lock, via Postgres' lock_timeout set with
	// SET LOCAL (it stays in force until the transaction ends). Zero means no
	// limit.
	LockTimeoutSeconds int
}

var _ repository.AllocatorRepository = (*allocatorRepository)(nil)

func NewAllocatorRepository(db database.Database, cache database.CacheDatabase, log logger.Logger, lockTimeoutSeconds int) repository.AllocatorRepository {
	return &allocatorRepository{DB: db, Cache: cache, Log: log, LockTimeoutSeconds: lockTimeoutSeconds}
}

func cacheKey(key entity.RangeKey) string {
	return fmt.Sprintf("lsk:maxend:%s:%s:%s", key.Table, key.Column, key.Module)
}

func (r *allocatorRepository) NextStartingValue(ctx context.Context, key entity.RangeKey) (int64, error) {
	k1, k2 := key.AdvisoryLockKeys()

	db := r.DB.WithContext(ctx)

	if r.LockTimeoutSeconds > 0 {
		stmt := fmt.Sprintf("SET LOCAL lock_timeout = '%ds'", r.LockTimeoutSeconds)
		if err := db.Exec(stmt).Error; err != nil {
			return 0, database.MapDBError(err)
		}
	}

	// Acquire the transaction-scoped advisory lock first. It is released
	// automatically when the enclosing transaction commits or rolls back,
	// which is why this repository never begins its own transaction.
	if err := db.Exec("SELECT pg_advisory_xact_lock(?, ?)", k1, k2).Error; err != nil {
		return 0, database.MapDBError(err)
	}

	hint, hintOk := r.readCacheHint(ctx, key)

	var max *int64
	err := db.Raw(
		"SELECT MAX(end_value) FROM lsk_resolution_audit_log WHERE table_name = ? AND column_name = ? AND module_name = ?",
		key.Table, key.Column, key.Module,
	).Scan(&max).Error
	if err != nil {
		return 0, database.MapDBError(err)
	}

	if max == nil {
		return 1, nil
	}

	// The cache is never authoritative: it only exists to flag drift worth
	// investigating (e.g. a previous write that updated the row but failed
	// to refresh the hint). The locked read above always wins.
	if hintOk && hint != *max {
		r.logDrift(key, hint, *max)
	}

	return *max + 1, nil
}

func (r *allocatorRepository) readCacheHint(ctx context.Context, key entity.RangeKey) (int64, bool) {
	if r.Cache == nil {
		return 0, false
	}
	val, err := r.Cache.GetClient().Get(ctx, cacheKey(key)).Result()
	if err != nil {
		return 0, false
	}
	parsed, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false
	}
	return parsed, true
}

func (r *allocatorRepository) logDrift(key entity.RangeKey, hint, actual int64) {
	if r.Log == nil {
		return
	}
	r.Log.WithFields(map[string]any{
		"table":  key.Table,
		"column": key.Column,
		"module": key.Module,
		"hint":   hint,
		"actual": actual,
	}).Warn("lsk maxend cache hint diverged from locked read")
}
