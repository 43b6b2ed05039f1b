// handlers/app.go
package handlers

import (
	"pong-leaderboard/config"
	"pong-leaderboard/middleware"
	"pong-leaderboard/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// NewApp builds the Fiber app with middleware and every route mounted.
func NewApp(cfg *config.Config, gameService *services.GameService) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "Ping Pong Game API",
		DisableStartupMessage: true,
		BodyLimit:             64 * 1024,
	})

	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.AccessLog())
	app.Use(middleware.CORS(cfg.AllowedOrigins))

	SetupHealthRoutes(app)
	SetupGameRoutes(app, gameService)

	return app
}
