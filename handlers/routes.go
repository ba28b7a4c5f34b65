// handlers/routes.go
package handlers

import (
	"challenge-streak-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupChallengeRoutes(app *fiber.App, catalog *services.CatalogService, enrollment *services.EnrollmentService, reports *services.ReportService) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Read-only surface
	app.Get("/challenges", catalog.ListChallenges)
	app.Get("/groups/:chat_id/stats", reports.GroupStatsEndpoint)
	app.Get("/participants/:participant_id", reports.GetParticipantEndpoint)

	// Signal injection — the gateway forwards payment confirmations and
	// report submissions here when they arrive out-of-band of Telegram.
	app.Post("/enrollments", enrollment.EnrollEndpoint)
	app.Post("/reports", reports.SubmitReportEndpoint)
}
