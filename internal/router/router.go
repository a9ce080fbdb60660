package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/arisylafeta/aadf-procurement/internal/config"
	"github.com/arisylafeta/aadf-procurement/internal/handler"
	"github.com/arisylafeta/aadf-procurement/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	SubmissionHandler  *handler.SubmissionHandler
	ProcurementHandler *handler.ProcurementHandler
	RatingHandler      *handler.RatingHandler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	app.Get("/metrics", observability.MetricsHandler())

	if deps.SubmissionHandler != nil {
		submissions := api.Group("/submissions")
		deps.SubmissionHandler.Register(submissions)

		if deps.RatingHandler != nil {
			deps.RatingHandler.Register(submissions)
		}
	}

	if deps.ProcurementHandler != nil {
		procurements := api.Group("/procurements")
		deps.ProcurementHandler.Register(procurements)
	}
}
