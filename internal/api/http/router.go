package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/lizardlabs/ticketbot/internal/api/http/handlers"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health       *handlers.HealthHandler
	Interactions *handlers.InteractionsHandler
	Verify       fiber.Handler
}

// RegisterRoutes wires HTTP routes. The interactions endpoint sits behind the
// ed25519 signature check; health probes do not.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/interactions", cfg.Verify, cfg.Interactions.Handle)
}
