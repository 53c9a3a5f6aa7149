package usecase_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"

	"voyago/lsk-engine/internal/infrastructure/logger"
	"voyago/lsk-engine/internal/infrastructure/telemetry/tracer"
	"voyago/lsk-engine/internal/modules/lsk/entity"
	"voyago/lsk-engine/internal/modules/lsk/usecase"
	"voyago/lsk-engine/internal/pkg/apperror"
	"voyago/lsk-engine/test/helper"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// MOCKS
// ============================================================================

// MockTransactionManager is a mock implementation of baserepo.TransactionManager
// that always runs its callback inline, as a real single-connection Atomic would.
type MockTransactionManager struct {
	mock.Mock
}

func (m *MockTransactionManager) Atomic(ctx context.Context, fn func(ctx context.Context) error) error {
	m.Called(ctx)
	return fn(ctx)
}

// MockAllocatorRepository is a mock implementation of repository.AllocatorRepository.
// It returns the same starting value for a RangeKey on every call: whatever
// Seed was configured for that key (defaulting to 1, as if the audit table
// were empty).
type MockAllocatorRepository struct {
	mock.Mock
	Seed    map[entity.RangeKey]int64
	counter map[entity.RangeKey]int64
	calls   int32
}

func (m *MockAllocatorRepository) NextStartingValue(ctx context.Context, key entity.RangeKey) (int64, error) {
	atomic.AddInt32(&m.calls, 1)
	args := m.Called(ctx, key)
	if err := args.Error(1); err != nil {
		return 0, err
	}
	if m.counter == nil {
		m.counter = make(map[entity.RangeKey]int64)
	}
	if v, ok := m.counter[key]; ok {
		return v, nil
	}
	start := int64(1)
	if m.Seed != nil {
		if s, ok := m.Seed[key]; ok {
			start = s
		}
	}
	m.counter[key] = start
	return start, nil
}

// MockAuditCommandRepository is a mock implementation of repository.AuditCommandRepository.
type MockAuditCommandRepository struct {
	mock.Mock
	Inserted []*entity.AuditLog
}

func (m *MockAuditCommandRepository) Insert(ctx context.Context, log *entity.AuditLog) error {
	args := m.Called(ctx, log)
	if err := args.Error(0); err != nil {
		return err
	}
	m.Inserted = append(m.Inserted, log)
	return nil
}

// ============================================================================
// TEST HELPERS
// ============================================================================

func setupTest(t *testing.T) (*MockTransactionManager, *MockAllocatorRepository, *MockAuditCommandRepository, usecase.ResolveUseCase) {
	t.Helper()

	mockTx := new(MockTransactionManager)
	mockAllocator := new(MockAllocatorRepository)
	mockAudit := new(MockAuditCommandRepository)

	mockTx.On("Atomic", mock.Anything).Return(nil)
	mockAllocator.On("NextStartingValue", mock.Anything, mock.Anything).Return(int64(0), nil)
	mockAudit.On("Insert", mock.Anything, mock.Anything).Return(nil)

	uc := usecase.NewResolveUseCase(
		logger.NewNoOpLogger(),
		tracer.NewNoOpTracer(),
		mockTx,
		usecase.ResolveRepositories{
			Allocator: mockAllocator,
			AuditCmd:  mockAudit,
		},
	)

	return mockTx, mockAllocator, mockAudit, uc
}

// ============================================================================
// TEST CASES
// ============================================================================

// S1 — single PK.
func TestResolve_SinglePlaceholder(t *testing.T) {
	_, _, audit, uc := setupTest(t)

	doc := helper.NewXmlDocBuilder().WithPlaceholder("D", "a", "T", "C", "x").Build()

	resp, err := uc.Execute(context.Background(), &usecase.ResolveRequest{
		ModuleName: "M", XmlContent: doc, DevEmail: "dev@example.com",
	})

	require.NoError(t, err)
	assert.Equal(t, `<D a="T:C:M:1"/>`, resp.ResolvedXml)
	require.Len(t, resp.Ranges, 1)
	assert.Equal(t, "T", resp.Ranges[0].Table)
	assert.Equal(t, int64(1), resp.Ranges[0].StartValue)
	assert.Equal(t, int64(1), resp.Ranges[0].EndValue)

	require.Len(t, audit.Inserted, 1)
	row := audit.Inserted[0]
	assert.Equal(t, int64(1), row.StartValue)
	assert.Equal(t, int64(1), row.EndValue)

	var mapping map[string]string
	require.NoError(t, json.Unmarshal([]byte(row.PlaceholderMapping), &mapping))
	assert.Equal(t, "T:C:M:1", mapping["T:C:x"])
}

// S2 — repeated PK, single occurrence allocation.
func TestResolve_RepeatedPlaceholderSingleAllocation(t *testing.T) {
	_, allocator, _, uc := setupTest(t)

	doc := helper.NewXmlDocBuilder().
		WithPlaceholder("A", "k", "T", "C", "x").
		WithPlaceholder("B", "k", "T", "C", "x").
		Build()

	resp, err := uc.Execute(context.Background(), &usecase.ResolveRequest{
		ModuleName: "M", XmlContent: doc, DevEmail: "dev@example.com",
	})

	require.NoError(t, err)
	assert.Equal(t, `<A k="T:C:M:1"/><B k="T:C:M:1"/>`, resp.ResolvedXml)
	require.Len(t, resp.Ranges, 1)
	assert.Equal(t, int64(1), resp.Ranges[0].StartValue)
	assert.Equal(t, int64(1), resp.Ranges[0].EndValue)
	allocator.AssertNumberOfCalls(t, "NextStartingValue", 1)
}

// S3 — two PKs one key.
func TestResolve_TwoPlaceholdersOneKey(t *testing.T) {
	_, _, _, uc := setupTest(t)

	doc := helper.NewXmlDocBuilder().
		WithPlaceholder("A", "k", "T", "C", "x").
		WithPlaceholder("A", "k", "T", "C", "y").
		Build()

	resp, err := uc.Execute(context.Background(), &usecase.ResolveRequest{
		ModuleName: "M", XmlContent: doc, DevEmail: "dev@example.com",
	})

	require.NoError(t, err)
	assert.Equal(t, `<A k="T:C:M:1"/><A k="T:C:M:2"/>`, resp.ResolvedXml)
	require.Len(t, resp.Ranges, 1)
	assert.Equal(t, int64(1), resp.Ranges[0].StartValue)
	assert.Equal(t, int64(2), resp.Ranges[0].EndValue)
	assert.Len(t, resp.Ranges[0].Mapping, 2)
}

// S4 — FK.
func TestResolve_ReferenceResolution(t *testing.T) {
	_, _, _, uc := setupTest(t)

	doc := helper.NewXmlDocBuilder().
		WithPlaceholder("P", "k", "T", "C", "x").
		WithReference("Q", "r", "T", "C", "x").
		Build()

	resp, err := uc.Execute(context.Background(), &usecase.ResolveRequest{
		ModuleName: "M", XmlContent: doc, DevEmail: "dev@example.com",
	})

	require.NoError(t, err)
	assert.Equal(t, `<P k="T:C:M:1"/><Q r="T:C:M:1"/>`, resp.ResolvedXml)
	assert.NotContains(t, resp.ResolvedXml, "REF:{")
}

// S5 — unresolved FK.
func TestResolve_UnresolvedReference(t *testing.T) {
	mockTx, _, audit, uc := setupTest(t)

	doc := helper.NewXmlDocBuilder().WithReference("Q", "r", "T", "C", "missing").Build()

	resp, err := uc.Execute(context.Background(), &usecase.ResolveRequest{
		ModuleName: "M", XmlContent: doc, DevEmail: "dev@example.com",
	})

	require.Nil(t, resp)
	assert.ErrorIs(t, err, entity.ErrUnresolvedReference)
	mockTx.AssertNotCalled(t, "Atomic", mock.Anything)
	assert.Empty(t, audit.Inserted)
}

// S6 — prior history: the allocator already reflects a committed range, so
// the next request continues from where it left off.
func TestResolve_ContinuesFromPriorHistory(t *testing.T) {
	_, allocator, audit, uc := setupTest(t)
	key := entity.RangeKey{Table: "T", Column: "C", Module: "M"}
	allocator.Seed = map[entity.RangeKey]int64{key: 8}

	doc := helper.NewXmlDocBuilder().WithPlaceholder("A", "k", "T", "C", "x").Build()

	resp, err := uc.Execute(context.Background(), &usecase.ResolveRequest{
		ModuleName: "M", XmlContent: doc, DevEmail: "dev@example.com",
	})

	require.NoError(t, err)
	assert.Equal(t, int64(8), resp.Ranges[0].StartValue)
	assert.Equal(t, int64(8), resp.Ranges[0].EndValue)
	require.Len(t, audit.Inserted, 1)
	assert.Equal(t, int64(8), audit.Inserted[0].StartValue)
}

// Substitution must not let one placeholder's logical ID collide with
// another's as a plain substring (e.g. "1" is a prefix of "10"): only the
// quote-delimited exact match may be replaced.
func TestResolve_SubstitutionDoesNotCollideOnPlaceholderPrefix(t *testing.T) {
	_, _, _, uc := setupTest(t)

	doc := helper.NewXmlDocBuilder().
		WithPlaceholder("A", "k", "T", "C", "1").
		WithPlaceholder("B", "k", "T", "C", "10").
		Build()

	resp, err := uc.Execute(context.Background(), &usecase.ResolveRequest{
		ModuleName: "M", XmlContent: doc, DevEmail: "dev@example.com",
	})

	require.NoError(t, err)
	assert.Equal(t, `<A k="T:C:M:1"/><B k="T:C:M:2"/>`, resp.ResolvedXml)
}

// Idempotent no-op: a document without placeholders or references must not
// touch the transaction manager at all.
func TestResolve_NoOpWhenNoPlaceholders(t *testing.T) {
	mockTx, allocator, audit, uc := setupTest(t)

	doc := `<Item name="widget"/>`

	resp, err := uc.Execute(context.Background(), &usecase.ResolveRequest{
		ModuleName: "M", XmlContent: doc, DevEmail: "dev@example.com",
	})

	require.NoError(t, err)
	assert.Equal(t, doc, resp.ResolvedXml)
	assert.Empty(t, resp.Ranges)
	mockTx.AssertNotCalled(t, "Atomic", mock.Anything)
	allocator.AssertNotCalled(t, "NextStartingValue", mock.Anything, mock.Anything)
	assert.Empty(t, audit.Inserted)
}

func TestResolve_InvalidArgument_EmptyModuleName(t *testing.T) {
	_, _, _, uc := setupTest(t)

	resp, err := uc.Execute(context.Background(), &usecase.ResolveRequest{
		ModuleName: "", XmlContent: `<D a="T:C:x"/>`, DevEmail: "dev@example.com",
	})

	assert.Nil(t, resp)
	assert.ErrorIs(t, err, entity.ErrInvalidArgument)
}

func TestResolve_InvalidArgument_EmptyDevEmail(t *testing.T) {
	_, _, _, uc := setupTest(t)

	resp, err := uc.Execute(context.Background(), &usecase.ResolveRequest{
		ModuleName: "M", XmlContent: `<D a="T:C:x"/>`, DevEmail: "",
	})

	assert.Nil(t, resp)
	assert.ErrorIs(t, err, entity.ErrInvalidArgument)
}

func TestResolve_InvalidPlaceholder_EmptySegment(t *testing.T) {
	_, _, _, uc := setupTest(t)

	resp, err := uc.Execute(context.Background(), &usecase.ResolveRequest{
		ModuleName: "M", XmlContent: `<D a="T::x"/>`, DevEmail: "dev@example.com",
	})

	assert.Nil(t, resp)
	assert.Equal(t, entity.CodeInvalidPlaceholder, errCode(t, err))
}

func TestResolve_AllocationFailed_PropagatesAndRollsBack(t *testing.T) {
	mockTx, allocator, audit, uc := setupTest(t)
	allocator.ExpectedCalls = nil
	allocator.On("NextStartingValue", mock.Anything, mock.Anything).Return(int64(0), errors.New("connection refused"))

	doc := helper.NewXmlDocBuilder().WithPlaceholder("A", "k", "T", "C", "x").Build()

	resp, err := uc.Execute(context.Background(), &usecase.ResolveRequest{
		ModuleName: "M", XmlContent: doc, DevEmail: "dev@example.com",
	})

	assert.Nil(t, resp)
	assert.Equal(t, entity.CodeAllocationFailed, errCode(t, err))
	assert.Empty(t, audit.Inserted)
	mockTx.AssertNumberOfCalls(t, "Atomic", 1)
}

func TestResolve_AuditWriteFailed_Propagates(t *testing.T) {
	_, _, audit, uc := setupTest(t)
	audit.ExpectedCalls = nil
	audit.On("Insert", mock.Anything, mock.Anything).Return(entity.ErrAuditWriteFailed)

	doc := helper.NewXmlDocBuilder().WithPlaceholder("A", "k", "T", "C", "x").Build()

	resp, err := uc.Execute(context.Background(), &usecase.ResolveRequest{
		ModuleName: "M", XmlContent: doc, DevEmail: "dev@example.com",
	})

	assert.Nil(t, resp)
	assert.ErrorIs(t, err, entity.ErrAuditWriteFailed)
}

// errCode extracts the apperror Code from an error returned by the usecase.
func errCode(t *testing.T, err error) string {
	t.Helper()
	appErr, ok := err.(*apperror.AppError)
	require.True(t, ok, "expected *apperror.AppError, got %T", err)
	return appErr.Code
}
