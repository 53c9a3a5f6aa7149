package usecase

import (
	"context"

	"voyago/lsk-engine/internal/infrastructure/logger"
	"voyago/lsk-engine/internal/infrastructure/telemetry/tracer"
	"voyago/lsk-engine/internal/modules/lsk/entity"
	"voyago/lsk-engine/internal/modules/lsk/repository"
	"voyago/lsk-engine/internal/pkg/utils"
)

const auditHistoryUseCaseName = "usecase:lsk.audit_history"

type auditHistoryUseCase struct {
	Log    logger.Logger
	Tracer tracer.Tracer
	Repo   repository.AuditQueryRepository
}

var _ AuditHistoryUseCase = (*auditHistoryUseCase)(nil)

func NewAuditHistoryUseCase(log logger.Logger, trc tracer.Tracer, repo repository.AuditQueryRepository) AuditHistoryUseCase {
	return &auditHistoryUseCase{
		Log:    log.WithField("action", auditHistoryUseCaseName),
		Tracer: trc,
		Repo:   repo,
	}
}

func (uc *auditHistoryUseCase) Execute(ctx context.Context, req *AuditHistoryRequest) ([]AuditEntryResponse, error) {
	span, ctx := uc.Tracer.StartSpan(ctx, auditHistoryUseCaseName)
	defer span.Finish()

	log := uc.Log.WithContext(ctx).WithField("method", "Exec")
	log.WithFields(map[string]any{
		"business_key": map[string]any{
			"table": req.Table, "column": req.Column, "module": req.Module,
		},
	}).Info("usecase started")

	key := entity.RangeKey{Table: req.Table, Column: req.Column, Module: req.Module}
	logs, err := uc.Repo.History(ctx, key)
	if err != nil {
		utils.RecordSpanError(span, err)
		return nil, err
	}

	response := make([]AuditEntryResponse, 0, len(logs))
	for _, l := range logs {
		response = append(response, AuditEntryResponse{
			ID:                  l.ID,
			DevEmail:            l.DevEmail,
			TableName:           l.TableName,
			ColumnName:          l.ColumnName,
			ModuleName:          l.ModuleName,
			StartValue:          l.StartValue,
			EndValue:            l.EndValue,
			PlaceholderMapping:  l.PlaceholderMapping,
			SourceXmlElements:   l.SourceXmlElements,
			ResolvedXmlElements: l.ResolvedXmlElements,
			CreatedAt:           l.CreatedAt,
		})
	}

	log.Info("usecase completed")
	return response, nil
}
