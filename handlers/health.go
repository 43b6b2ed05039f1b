// handlers/health.go
package handlers

import "github.com/gofiber/fiber/v2"

const APIVersion = "1.0.0"

func SetupHealthRoutes(app *fiber.App) {
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"message": "Ping Pong Game API", "version": APIVersion})
	})

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "healthy"})
	})
}
