package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"

	database "youthgroup_backend/internals/databases"
)

func BaseRoutes(app *fiber.App, deps *Deps) {
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("Youth group API is up 🚀")
	})

	app.Get("/health", func(c *fiber.Ctx) error {
		dbStatus := "Connected"
		serverStatus := "OK"
		httpStatus := fiber.StatusOK

		if err := database.Ping(deps.DB); err != nil {
			dbStatus = "Database connection error"
			serverStatus = "DOWN"
			httpStatus = fiber.StatusServiceUnavailable
		}

		mongoStatus := "Connected"
		if deps.Mongo == nil {
			mongoStatus = "Disabled"
		}
		redisStatus := "Connected"
		if deps.Redis == nil {
			redisStatus = "Disabled"
		}

		return c.Status(httpStatus).JSON(fiber.Map{
			"status":         serverStatus,
			"database":       dbStatus,
			"mongodb":        mongoStatus,
			"redis":          redisStatus,
			"server_time":    time.Now().Format(time.RFC3339),
			"uptime_seconds": int(time.Since(startTime).Seconds()),
		})
	})
}
