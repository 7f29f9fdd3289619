package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	handler "github.com/krishkalaria12/snap-vault/handlers"
	"github.com/krishkalaria12/snap-vault/middleware"
)

// bodyLimit leaves headroom over the 5 MiB upload cap for multipart framing.
const bodyLimit = 8 * 1024 * 1024

// NewApp builds the fiber app with the error handler and body limit the routes expect.
func NewApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "snap-vault",
		BodyLimit:    bodyLimit,
		ErrorHandler: handler.ErrorHandler,
	})
	app.Use(recover.New())
	return app
}

func SetupRoutes(app *fiber.App, h *handler.Handler, sessions middleware.SessionParser, loginURL string) {
	app.Get("/", handler.Home)
	app.Get("/healthz", handler.Health)

	api := app.Group("/api", logger.New())
	requireAuth := middleware.AuthMiddleware(sessions, loginURL)

	// Auth
	auth := api.Group("/auth")
	auth.Post("/register", h.Register)
	auth.Post("/login", h.Login)
	auth.Post("/logout", h.Logout)
	auth.Post("/password/reset", h.RequestPasswordReset)
	auth.Post("/password/update", h.UpdatePassword)
	api.Post("/signout", h.Signout)

	// Images
	images := api.Group("/images", requireAuth)
	images.Get("/", h.ListImages)
	images.Post("/", h.UploadImage)
	images.Get("/:id", h.GetImage)
	images.Delete("/:id", h.DeleteImage)
	images.Post("/:id/analyze", h.AnalyzeImage)

	api.Get("/dashboard", requireAuth, h.Dashboard)

	// Profile
	profile := api.Group("/profile", requireAuth)
	profile.Get("/", h.GetProfile)
	profile.Put("/", h.UpdateProfile)
}
