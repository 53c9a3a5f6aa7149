/*
|------------------------------------------------------------------------------------
| HTTP HANDLER ARCHITECTURAL STANDARDS & OBSERVABILITY MANIFESTO
|------------------------------------------------------------------------------------
|
| The Handler layer serves as the system's "Front Gate". It is responsible for
| request orchestration, DTO enforcement, and response normalization.
|
| [1. THE SINGLE LOG RULE]
| - Every handler execution MUST emit exactly ONE "Anchor Log" (request received).
|
| [2. ZERO POST-ENTRY LOGGING]
| - Once the request is handed over to the UseCase, the Handler MUST NOT emit
|   any further logs (success or failure).
|
| [3. LEAN ORCHESTRATION]
| - Validation: Enforce payload integrity using DTO tags before execution.
| - Bubbling: All errors returned by the UseCase are bubbled up directly to
|   the Global Error Handler to maintain log hygiene.
|
|------------------------------------------------------------------------------------
*/
package http

import (
	"voyago/lsk-engine/internal/infrastructure/config"
	"voyago/lsk-engine/internal/infrastructure/logger"
	"voyago/lsk-engine/internal/infrastructure/validator"
	"voyago/lsk-engine/internal/modules/lsk/usecase"
	"voyago/lsk-engine/internal/pkg/apperror"
	"voyago/lsk-engine/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

const (
	handlerName = "http:handler.lsk"

	devEmailHeader = "X-Dev-Email"
)

type HandlerUseCases struct {
	ResolveUseCase      usecase.ResolveUseCase
	AuditHistoryUseCase usecase.AuditHistoryUseCase
}

type Handler struct {
	Cfg *config.Config
	Log logger.Logger
	Val validator.Validator
	Uc  HandlerUseCases
}

func NewHandler(cfg *config.Config, log logger.Logger, validator validator.Validator, useCases HandlerUseCases) *Handler {
	return &Handler{
		Cfg: cfg,
		Log: log,
		Val: validator,
		Uc:  useCases,
	}
}

func (h *Handler) Resolve(c *fiber.Ctx) error {
	ctx := c.UserContext()
	log := h.Log.WithContext(ctx).WithField("method", "Resolve")

	request := new(usecase.ResolveRequest)
	if err := c.BodyParser(request); err != nil {
		return apperror.ErrCodeMalformedRequest.WithError(err)
	}
	request.DevEmail = c.Get(devEmailHeader)
	if request.ModuleName == "" {
		request.ModuleName = h.Cfg.Lsk.DefaultModule
	}

	if err := h.Val.Validate(request); err != nil {
		return apperror.ErrCodeInvalidRequest.WithError(err).AddValidationErrors(h.Val.ToDetails(err))
	}
	if request.DevEmail == "" {
		return apperror.ErrCodeInvalidRequest.WithDetail("header", devEmailHeader)
	}

	log.WithFields(map[string]any{
		"business_key": map[string]any{
			"module_name": request.ModuleName,
			"dev_email":   request.DevEmail,
		},
	}).Info("request received")

	resolved, err := h.Uc.ResolveUseCase.Execute(ctx, request)
	if err != nil {
		return err
	}

	return response.NewHttp(c).OK(response.Http{
		Message: "document resolved successfully",
		Data:    resolved,
	})
}

func (h *Handler) AuditHistory(c *fiber.Ctx) error {
	ctx := c.UserContext()
	log := h.Log.WithContext(ctx).WithField("method", "AuditHistory")

	request := &usecase.AuditHistoryRequest{
		Table:  c.Params("table"),
		Column: c.Params("column"),
		Module: c.Params("module"),
	}

	if err := h.Val.Validate(request); err != nil {
		return apperror.ErrCodeInvalidRequest.WithError(err).AddValidationErrors(h.Val.ToDetails(err))
	}

	log.WithFields(map[string]any{
		"business_key": map[string]any{
			"table": request.Table, "column": request.Column, "module": request.Module,
		},
	}).Info("request received")

	history, err := h.Uc.AuditHistoryUseCase.Execute(ctx, request)
	if err != nil {
		return err
	}

	return response.NewHttp(c).OK(response.Http{
		Message: "audit history retrieved successfully",
		Data:    history,
	})
}
