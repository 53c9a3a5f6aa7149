package entity

import "voyago/lsk-engine/internal/pkg/apperror"

// [ENTITY STANDARD: DOMAIN SPECIFIC ERROR]
//
// HTTP mapping note: InvalidArgument/InvalidPlaceholder/UnresolvedReference
// are caller errors and must resolve to 400; AllocationFailed/AuditWriteFailed
// are server errors and must resolve to 500. KindPersistance's fallback is
// 400 and KindInternal's fallback is 500, so caller errors are built with
// NewPersistance and server errors with NewInternal.
const (
	CodeInvalidArgument     = "LSK_INVALID_ARGUMENT"
	CodeInvalidPlaceholder  = "LSK_INVALID_PLACEHOLDER"
	CodeUnresolvedReference = "LSK_UNRESOLVED_REFERENCE"
	CodeAllocationFailed    = "LSK_ALLOCATION_FAILED"
	CodeAuditWriteFailed    = "LSK_AUDIT_WRITE_FAILED"
	CodeInternal            = "LSK_INTERNAL"
)

var (
	ErrInvalidArgument = apperror.NewPersistance(
		CodeInvalidArgument,
		"moduleName, xmlContent and devEmail must all be non-empty",
	)

	ErrUnresolvedReference = apperror.NewPersistance(
		CodeUnresolvedReference,
		"a reference has no corresponding placeholder in the same document",
	)

	ErrAuditWriteFailed = apperror.NewInternal(
		CodeAuditWriteFailed,
		"audit row write affected an unexpected number of rows",
	)
)

// ErrInvalidPlaceholder wraps the scanner/parse error that triggered it so
// callers can inspect the original cause via errors.Unwrap.
func ErrInvalidPlaceholder(cause error) *apperror.AppError {
	return apperror.NewPersistance(
		CodeInvalidPlaceholder,
		"a placeholder had an empty segment or a reference body is not a valid placeholder",
		cause,
	)
}

// ErrAllocationFailed wraps the underlying database error encountered while
// acquiring the advisory lock or reading MAX(end_value).
func ErrAllocationFailed(cause error) *apperror.AppError {
	return apperror.NewInternal(
		CodeAllocationFailed,
		"failed to allocate a range for a placeholder key",
		cause,
	)
}
