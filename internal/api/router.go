package api

import (
	"github.com/gofiber/contrib/otelfiber/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewApp(serviceName string, registrationHandler *RegistrationHandler, healthHandler *HealthHandler) *fiber.App {
	app := fiber.New(fiber.Config{AppName: serviceName})
	app.Use(recover.New())
	app.Use(otelfiber.Middleware())
	app.Use(PrometheusMiddleware())

	SetupRoutes(app, registrationHandler, healthHandler)

	return app
}

func SetupRoutes(app *fiber.App, registrationHandler *RegistrationHandler, healthHandler *HealthHandler) {
	app.Get("/health", healthHandler.Live)
	app.Get("/health/ready", healthHandler.Ready)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	app.Post("/register/", registrationHandler.Register)
}
