//go:build integration
// +build integration

package lsk_test

import (
	"context"
	"testing"

	"voyago/lsk-engine/internal/infrastructure/logger"
	"voyago/lsk-engine/internal/infrastructure/telemetry/tracer"
	"voyago/lsk-engine/internal/modules/lsk/entity"
	"voyago/lsk-engine/internal/modules/lsk/repository/command"
	"voyago/lsk-engine/internal/modules/lsk/repository/query"
	"voyago/lsk-engine/internal/modules/lsk/usecase"
	"voyago/lsk-engine/test/helper"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const auditTable = "lsk_resolution_audit_log"

// TestResolve_Integration_SinglePlaceholder exercises the full allocate +
// audit-write path against a real database, following the split-vs-folded
// transaction guidance in the engine design: allocation and audit share one
// Atomic() call so the advisory lock stays held across both.
func TestResolve_Integration_SinglePlaceholder(t *testing.T) {
	db := helper.SetupTestDB(t)
	defer helper.CleanupTestDB(t, db)

	helper.TruncateTables(t, db.GetDB(), auditTable)

	log := logger.NewNoOpLogger()
	trc := tracer.NewNoOpTracer()

	allocatorRepo := command.NewAllocatorRepository(db, nil, log, 0)
	auditCmdRepo := command.NewAuditRepository(db, nil)
	auditQryRepo := query.NewAuditRepository(db)

	uc := usecase.NewResolveUseCase(log, trc, db, usecase.ResolveRepositories{
		Allocator: allocatorRepo,
		AuditCmd:  auditCmdRepo,
	})

	doc := helper.NewXmlDocBuilder().WithPlaceholder("D", "a", "T", "C", "x").Build()

	resp, err := uc.Execute(context.Background(), &usecase.ResolveRequest{
		ModuleName: "integration", XmlContent: doc, DevEmail: "dev@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, `<D a="T:C:integration:1"/>`, resp.ResolvedXml)

	history, err := auditQryRepo.History(context.Background(), entity.RangeKey{Table: "T", Column: "C", Module: "integration"})
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, int64(1), history[0].StartValue)
	assert.Equal(t, int64(1), history[0].EndValue)
}

// TestResolve_Integration_ContinuesFromPriorAuditRow asserts S6: a second
// request against a RangeKey with existing audit history continues the
// counter from MAX(end_value)+1 rather than restarting at 1.
func TestResolve_Integration_ContinuesFromPriorAuditRow(t *testing.T) {
	db := helper.SetupTestDB(t)
	defer helper.CleanupTestDB(t, db)

	helper.TruncateTables(t, db.GetDB(), auditTable)

	log := logger.NewNoOpLogger()
	trc := tracer.NewNoOpTracer()

	allocatorRepo := command.NewAllocatorRepository(db, nil, log, 0)
	auditCmdRepo := command.NewAuditRepository(db, nil)

	uc := usecase.NewResolveUseCase(log, trc, db, usecase.ResolveRepositories{
		Allocator: allocatorRepo,
		AuditCmd:  auditCmdRepo,
	})

	ctx := context.Background()

	first := helper.NewXmlDocBuilder().
		WithPlaceholder("A", "k", "T", "C", "x").
		WithPlaceholder("A", "k", "T", "C", "y").
		WithPlaceholder("A", "k", "T", "C", "z").
		WithPlaceholder("A", "k", "T", "C", "w").
		WithPlaceholder("A", "k", "T", "C", "v").
		WithPlaceholder("A", "k", "T", "C", "u").
		WithPlaceholder("A", "k", "T", "C", "s").
		Build()
	_, err := uc.Execute(ctx, &usecase.ResolveRequest{ModuleName: "hist", XmlContent: first, DevEmail: "dev@example.com"})
	require.NoError(t, err)

	second := helper.NewXmlDocBuilder().WithPlaceholder("B", "k", "T", "C", "only").Build()
	resp, err := uc.Execute(ctx, &usecase.ResolveRequest{ModuleName: "hist", XmlContent: second, DevEmail: "dev@example.com"})
	require.NoError(t, err)
	assert.Equal(t, `<B k="T:C:hist:8"/>`, resp.ResolvedXml)
}

// TestResolve_Integration_UnresolvedReference_NoAuditRow asserts S5: a
// failed resolve must not leave any audit row behind.
func TestResolve_Integration_UnresolvedReference_NoAuditRow(t *testing.T) {
	db := helper.SetupTestDB(t)
	defer helper.CleanupTestDB(t, db)

	helper.TruncateTables(t, db.GetDB(), auditTable)

	log := logger.NewNoOpLogger()
	trc := tracer.NewNoOpTracer()

	allocatorRepo := command.NewAllocatorRepository(db, nil, log, 0)
	auditCmdRepo := command.NewAuditRepository(db, nil)
	auditQryRepo := query.NewAuditRepository(db)

	uc := usecase.NewResolveUseCase(log, trc, db, usecase.ResolveRepositories{
		Allocator: allocatorRepo,
		AuditCmd:  auditCmdRepo,
	})

	doc := helper.NewXmlDocBuilder().WithReference("Q", "r", "T", "C", "missing").Build()
	resp, err := uc.Execute(context.Background(), &usecase.ResolveRequest{
		ModuleName: "noaudit", XmlContent: doc, DevEmail: "dev@example.com",
	})
	assert.Nil(t, resp)
	assert.ErrorIs(t, err, entity.ErrUnresolvedReference)

	history, err := auditQryRepo.History(context.Background(), entity.RangeKey{Table: "T", Column: "C", Module: "noaudit"})
	require.NoError(t, err)
	assert.Empty(t, history)
}
