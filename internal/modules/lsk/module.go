package lsk

import (
	"voyago/lsk-engine/internal/infrastructure/config"
	database "voyago/lsk-engine/internal/infrastructure/db"
	"voyago/lsk-engine/internal/infrastructure/logger"
	"voyago/lsk-engine/internal/infrastructure/telemetry/tracer"
	"voyago/lsk-engine/internal/infrastructure/validator"
	"voyago/lsk-engine/internal/modules/lsk/delivery/http"
	"voyago/lsk-engine/internal/modules/lsk/repository/command"
	"voyago/lsk-engine/internal/modules/lsk/repository/query"
	"voyago/lsk-engine/internal/modules/lsk/usecase"

	"github.com/gofiber/fiber/v2"
)

type HttpModuleConfig struct {
	Config *config.Config
	Server *fiber.App
	DB     database.Database
	Log    logger.Logger
	Val    validator.Validator
	Tracer tracer.Tracer

	// Cache is an optional latency hint store for range allocation. It is
	// never required for correctness: a nil Cache simply means every
	// NextStartingValue call falls straight through to the locked read.
	Cache database.CacheDatabase
}

func RegisterHttpModule(cfg HttpModuleConfig) {
	ucLogger := cfg.Log.WithField("component", "usecase")
	hdlrLogger := cfg.Log.WithField("component", "handler")
	repoLogger := cfg.Log.WithField("component", "repository")

	// setup repositories
	allocatorRepository := command.NewAllocatorRepository(cfg.DB, cfg.Cache, repoLogger, cfg.Config.Lsk.LockTimeout)
	auditCmdRepository := command.NewAuditRepository(cfg.DB, cfg.Cache)
	auditQryRepository := query.NewAuditRepository(cfg.DB)

	// setup use cases
	resolveUseCase := usecase.NewResolveUseCase(
		ucLogger,
		cfg.Tracer,
		cfg.DB,
		usecase.ResolveRepositories{
			Allocator: allocatorRepository,
			AuditCmd:  auditCmdRepository,
		},
	)
	auditHistoryUseCase := usecase.NewAuditHistoryUseCase(ucLogger, cfg.Tracer, auditQryRepository)

	// setup handler
	h := http.NewHandler(
		cfg.Config,
		hdlrLogger,
		cfg.Val,
		http.HandlerUseCases{
			ResolveUseCase:      resolveUseCase,
			AuditHistoryUseCase: auditHistoryUseCase,
		},
	)

	routeConfig := http.RouteConfig{
		Server:  cfg.Server,
		Config:  cfg.Config,
		Handler: h,
	}
	routeConfig.Setup()
}
