package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"taskroom/internal/middleware"
	"taskroom/internal/services"
)

// Services bundles the services the HTTP layer depends on.
type Services struct {
	Auth     *services.AuthService
	Users    *services.UserService
	Projects *services.ProjectService
	Columns  *services.ColumnService
	Tasks    *services.TaskService
}

// routeRegistrar is implemented by every resource handler.
type routeRegistrar interface {
	RegisterRoutes(router fiber.Router, auth *middleware.Authenticator)
}

// NewApp builds the Fiber app with middleware, the health check and all
// resource routes under /api/v1.
func NewApp(svc Services) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "TaskRoom",
		ErrorHandler: ErrorHandler,
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${status} - ${method} ${path} ${latency}\n",
	}))
	app.Use(cors.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	auth := middleware.NewAuthenticator(svc.Auth, svc.Auth)
	apiV1 := app.Group("/api/v1")
	for _, h := range []routeRegistrar{
		NewAuthHandler(svc.Auth),
		NewUserHandler(svc.Users),
		NewProjectHandler(svc.Projects),
		NewColumnHandler(svc.Columns),
		NewTaskHandler(svc.Tasks),
	} {
		h.RegisterRoutes(apiV1, auth)
	}

	return app
}
