package http

import (
	"voyago/lsk-engine/internal/infrastructure/config"

	"github.com/gofiber/fiber/v2"
)

type RouteConfig struct {
	Config  *config.Config
	Server  *fiber.App
	Handler *Handler
}

const (
	routeGroup = "/lsk"
)

func (r *RouteConfig) Setup() {
	lsk := r.Server.Group(routeGroup)
	lsk.Post("/resolve", r.Handler.Resolve)
	lsk.Get("/audit/:table/:column/:module", r.Handler.AuditHistory)
}
