package routers

import (
	"media-stamp/internal/delivery/http/handlers"
	consts "media-stamp/pkg/constants"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/swagger"
)

// CORSConfig allows the comma-separated origins. An empty list rejects every
// cross-origin request; cors.New would otherwise fall back to "*".
func CORSConfig(allowOrigins string) cors.Config {
	if allowOrigins == "" {
		return cors.Config{AllowOriginsFunc: func(string) bool { return false }}
	}
	return cors.Config{AllowOrigins: allowOrigins}
}

// SetupSwaggerRoute serves the UI and doc.json registered by media-stamp/docs.
func SetupSwaggerRoute(app *fiber.App) {
	app.Get("/swagger/*", swagger.HandlerDefault)
}

func SetupHealthRoute(app *fiber.App) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": consts.StatusOK})
	})
}

func SetupImageRoutes(app *fiber.App, imageHandler *handlers.ImageHandler) {
	api := app.Group("/api/v1")
	api.Post("/images/process", imageHandler.ProcessImages)
}

func SetupVideoRoutes(app *fiber.App, videoHandler *handlers.VideoHandler) {
	api := app.Group("/api/v1")
	api.Post("/videos/inspect", videoHandler.Inspect)
	api.Post("/videos/rewrite", videoHandler.Rewrite)
	api.Post("/videos/camouflage", videoHandler.Camouflage)
}

func SetupJobRoutes(app *fiber.App, jobHandler *handlers.JobHandler) {
	api := app.Group("/api/v1")
	api.Post("/jobs", jobHandler.CreateJob)
	api.Get("/jobs", jobHandler.ListJobs)
	api.Get("/jobs/:id", jobHandler.GetJob)
}

func SetupCleanupRoutes(app *fiber.App, cleanupHandler *handlers.CleanupHandler) {
	api := app.Group("/api/v1")
	api.Post("/cleanup", cleanupHandler.Cleanup)
}
