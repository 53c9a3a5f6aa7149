//go:build e2e
// +build e2e

package lsk_test

import (
	"testing"

	"voyago/lsk-engine/internal/infrastructure/config"
	database "voyago/lsk-engine/internal/infrastructure/db"
	server "voyago/lsk-engine/internal/infrastructure/http"
	"voyago/lsk-engine/internal/infrastructure/logger"
	"voyago/lsk-engine/internal/infrastructure/telemetry/tracer"
	"voyago/lsk-engine/internal/infrastructure/validator"
	"voyago/lsk-engine/internal/modules/lsk"
	"voyago/lsk-engine/internal/modules/lsk/usecase"
	"voyago/lsk-engine/test/helper"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const auditTable = "lsk_resolution_audit_log"

// setupTestServer initializes a test Fiber app with the LSK module wired
// against a real test database.
func setupTestServer(t *testing.T) (*helper.HTTPTestHelper, database.Database) {
	t.Helper()

	db := helper.SetupTestDB(t)

	cfg := &config.Config{
		App: config.AppConfig{
			Name: "lsk-engine-test",
			Env:  "test",
		},
		Lsk: config.LskConfig{
			DefaultModule: "default",
		},
	}
	log := logger.NewNoOpLogger()
	trc := tracer.NewNoOpTracer()
	val := validator.NewPlaygroundValidator()

	app := server.NewServer(cfg, log).App

	lsk.RegisterHttpModule(lsk.HttpModuleConfig{
		Config: cfg,
		Server: app,
		DB:     db,
		Log:    log,
		Val:    val,
		Tracer: trc,
	})

	return helper.NewHTTPTestHelper(app, t), db
}

// TestResolve_E2E_SinglePlaceholder drives the HTTP entry point end to end:
// POST /lsk/resolve rewrites the submitted document and the audit trail is
// then readable via GET /lsk/audit/:table/:column/:module.
func TestResolve_E2E_SinglePlaceholder(t *testing.T) {
	httpHelper, db := setupTestServer(t)
	defer helper.CleanupTestDB(t, db)

	helper.TruncateTables(t, db.GetDB(), auditTable)

	requestBody := map[string]interface{}{
		"module_name": "e2e",
		"xml_content": `<D a="T:C:x"/>`,
	}

	resp := httpHelper.POSTWithHeaders("/lsk/resolve", requestBody, map[string]string{"X-Dev-Email": "dev@example.com"})
	var envelope struct {
		Success bool                   `json:"success"`
		Data    usecase.ResolveResponse `json:"data"`
	}
	httpHelper.AssertJSONResponse(resp, fiber.StatusOK, &envelope)

	assert.True(t, envelope.Success)
	assert.Equal(t, `<D a="T:C:e2e:1"/>`, envelope.Data.ResolvedXml)
	require.Len(t, envelope.Data.Ranges, 1)
	assert.Equal(t, int64(1), envelope.Data.Ranges[0].StartValue)

	historyResp := httpHelper.GET("/lsk/audit/T/C/e2e")
	var historyEnvelope struct {
		Success bool                          `json:"success"`
		Data    []usecase.AuditEntryResponse `json:"data"`
	}
	httpHelper.AssertJSONResponse(historyResp, fiber.StatusOK, &historyEnvelope)
	require.Len(t, historyEnvelope.Data, 1)
	assert.Equal(t, int64(1), historyEnvelope.Data[0].StartValue)
}

// TestResolve_E2E_MissingDevEmailHeader_BadRequest asserts that the HTTP
// collaborator rejects a request lacking the dev-identity header before ever
// reaching the engine.
func TestResolve_E2E_MissingDevEmailHeader_BadRequest(t *testing.T) {
	httpHelper, db := setupTestServer(t)
	defer helper.CleanupTestDB(t, db)

	requestBody := map[string]interface{}{
		"module_name": "e2e",
		"xml_content": `<D a="T:C:x"/>`,
	}

	resp := httpHelper.POST("/lsk/resolve", requestBody)
	httpHelper.AssertErrorResponse(resp, fiber.StatusBadRequest)
}
