package repository

import (
	"context"
	"voyago/lsk-engine/internal/modules/lsk/entity"
)

// -------- Repository Command --------

// AllocatorRepository is the Range Allocator: a thin, stateless,
// database-facing module with exactly one operation.
type AllocatorRepository interface {
	// NextStartingValue acquires the transaction-scoped advisory lock for
	// key and returns MAX(end_value)+1 over committed audit rows matching
	// key, treating a NULL MAX as 0. It does not reserve or update anything;
	// the caller is expected to write the audit row before the enclosing
	// transaction commits.
	NextStartingValue(ctx context.Context, key entity.RangeKey) (int64, error)
}

// AuditCommandRepository writes audit rows. The store is append-only from
// the engine's perspective: no updates, no deletes.
type AuditCommandRepository interface {
	Insert(ctx context.Context, log *entity.AuditLog) error
}

// -------- Repository Query --------

// AuditQueryRepository is the supplemental read path backing the audit
// trail reconstruction surface.
type AuditQueryRepository interface {
	History(ctx context.Context, key entity.RangeKey) ([]entity.AuditLog, error)
}
