package app

import (
	"fmt"
	"time"
	"voyago/lsk-engine/internal/infrastructure/config"
	database "voyago/lsk-engine/internal/infrastructure/db"
	"voyago/lsk-engine/internal/infrastructure/logger"
	"voyago/lsk-engine/internal/infrastructure/middleware"
	"voyago/lsk-engine/internal/infrastructure/telemetry/metrics"
	"voyago/lsk-engine/internal/infrastructure/telemetry/tracer"
	"voyago/lsk-engine/internal/infrastructure/validator"
	"voyago/lsk-engine/internal/modules/lsk"

	"github.com/gofiber/fiber/v2"
)

var domains = [1]string{
	"lsk",
}

type BootstrapApiConfig struct {
	App     *fiber.App
	Val     validator.Validator
	Log     logger.Logger
	Tracer  tracer.Tracer
	Metrics metrics.Metrics

	configs map[string]*config.Config
	loggers map[string]logger.Logger
	dbs     map[string]database.Database
	caches  map[string]database.CacheDatabase
}

func (b *BootstrapApiConfig) Run() {
	b.setupMiddleware()
	b.setupInfrastructureModules()
	b.setupModules()
	b.setupHealthRoute()
}

func (b *BootstrapApiConfig) Stop() {
	for _, domain := range domains {
		log, okLog := b.loggers[domain]
		db, okDb := b.dbs[domain]

		if !okLog || log == nil {
			log = b.Log // Fallback to global logger
		}

		if !okDb || db == nil {
			log.WithFields(map[string]any{
				"domain":    domain,
				"component": "database",
			}).Warn("Database connection not found during shutdown")
			continue
		}

		if err := db.Close(); err != nil {
			log.WithFields(map[string]any{
				"domain":       domain,
				"component":    "database",
				"error_detail": err.Error(),
			}).Error("Failed to close database connection")
		} else {
			log.WithFields(map[string]any{
				"domain":    domain,
				"component": "database",
			}).Info("Database connection closed gracefully")
		}

		if cache, ok := b.caches[domain]; ok && cache != nil {
			if err := cache.Close(); err != nil {
				log.WithFields(map[string]any{
					"domain":       domain,
					"component":    "cache",
					"error_detail": err.Error(),
				}).Warn("Failed to close cache connection")
			}
		}
	}
}

func (b *BootstrapApiConfig) setupMiddleware() {
	t := middleware.NewTelemetrist(b.Log, b.Tracer, b.Metrics)

	b.App.Use(middleware.RequestID())
	b.App.Use(t.HandleMetrics())
	b.App.Use(t.HandleTrace())
	b.App.Use(t.HandleLog())
}

func (b *BootstrapApiConfig) setupInfrastructureModules() {
	domainCount := len(domains)
	b.configs = make(map[string]*config.Config, domainCount)
	b.loggers = make(map[string]logger.Logger, domainCount)
	b.dbs = make(map[string]database.Database, domainCount)
	b.caches = make(map[string]database.CacheDatabase, domainCount)

	for _, domain := range domains {
		path := fmt.Sprintf("config/%s/config.yaml", domain)
		domainCfg := config.LoadDomainConfig(path)

		// 1. Logger
		domainLogger := logger.
			New(domainCfg, b.Tracer).
			WithFields(map[string]any{
				"service": domainCfg.App.Name,
				"version": domainCfg.App.Version,
				"env":     domainCfg.App.Env,
				"port":    domainCfg.Http.Port,
				"domain":  domain,
			})

		// 2. Database
		db := database.NewDatabase(&domainCfg.Database, domainLogger, b.Tracer)

		// 3. Cache (latency hint store, never required for correctness)
		cache := database.NewRedisCache(&domainCfg.Redis, domainLogger)

		b.configs[domain] = domainCfg
		b.loggers[domain] = domainLogger
		b.dbs[domain] = db
		b.caches[domain] = cache
	}
}

func (b *BootstrapApiConfig) setupModules() {
	var m string

	// --- LSK Resolution Module ---
	m = "lsk"
	if cfg, ok := b.configs[m]; ok {
		lsk.RegisterHttpModule(lsk.HttpModuleConfig{
			Config: cfg,
			Server: b.App,
			DB:     b.dbs[m],
			Log:    b.loggers[m],
			Val:    b.Val,
			Tracer: b.Tracer,
			Cache:  b.caches[m],
		})
	}
}

func (b *BootstrapApiConfig) setupHealthRoute() {
	h := func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "UP",
			"time":   time.Now().Format(time.RFC3339),
		})
	}

	b.App.Get("/", h)
	b.App.Get("/health", h)
}
