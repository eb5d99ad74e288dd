package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/queuewise/queue-intel/internal/api/http/handlers"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health   *handlers.HealthHandler
	Routing  *handlers.RoutingHandler
	Forecast *handlers.ForecastHandler
	Anomaly  *handlers.AnomalyHandler
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	v1 := app.Group("/v1")

	v1.Post("/routing/decision", cfg.Routing.Decide)
	v1.Get("/organizations/:orgId/routing/config", cfg.Routing.GetConfig)
	v1.Put("/organizations/:orgId/routing/config", cfg.Routing.SaveConfig)
	v1.Get("/agents/:agentId/skills", cfg.Routing.ListSkills)
	v1.Put("/agents/:agentId/skills", cfg.Routing.SaveSkill)

	v1.Get("/organizations/:orgId/branches/:branchId/forecast", cfg.Forecast.GetForecast)
	v1.Get("/organizations/:orgId/branches/:branchId/staffing", cfg.Forecast.GetStaffing)

	v1.Post("/anomalies/sweep", cfg.Anomaly.Sweep)
	v1.Get("/organizations/:orgId/anomalies", cfg.Anomaly.List)
	v1.Post("/anomalies/:id/resolve", cfg.Anomaly.Resolve)
}
