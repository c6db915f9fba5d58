package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-analytics/internal/api/http/handlers"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health    *handlers.HealthHandler
	Tickets   *handlers.TicketsHandler
	Actions   *handlers.ActionsHandler
	Analytics *handlers.AnalyticsHandler
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Get("/tickets", cfg.Tickets.ListTickets)
	app.Get("/actions", cfg.Actions.ListActions)

	analytics := app.Group("/analytics")
	analytics.Get("/reopenings", cfg.Analytics.CountReopenings)
	analytics.Get("/reopenings/by-ticket", cfg.Analytics.ReopeningsByTicket)
	analytics.Get("/closures", cfg.Analytics.CountClosures)
	analytics.Get("/closures/by-ticket", cfg.Analytics.ClosuresByTicket)
	analytics.Get("/closures/resolution", cfg.Analytics.ResolutionStats)
	analytics.Get("/intakes", cfg.Analytics.CountIntakes)
	analytics.Get("/intakes/distribution", cfg.Analytics.IntakeDistribution)
}
