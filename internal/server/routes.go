package server

import (
	"scholarscan/internal/core/analysis"
	"scholarscan/internal/health"
	"scholarscan/internal/platform/gateway"
	"scholarscan/internal/platform/redis"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Dependencies struct {
	Tracker analysis.Tracker
	Gateway *gateway.Client
	// Redis is nil when snapshots are disabled.
	Redis *redis.Service
}

func RegisterRoutes(app *fiber.App, d Dependencies) *health.HealthHandler {
	components := map[string]health.CheckFunc{
		"gateway": d.Gateway.Ping,
	}
	if d.Redis != nil {
		components["redis"] = d.Redis.HealthCheck
	}

	// Health endpoints
	healthHandler := health.NewHealthHandler(components)
	app.Get("/v1/health", health.HealthLimiter(), healthHandler.HandleHealth)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/v1")

	analysisHandler := analysis.NewHandler(d.Tracker)
	api.Post("/analysis", analysisHandler.HandleStart)
	api.Get("/analysis", analysisHandler.HandleGet)
	api.Delete("/analysis", analysisHandler.HandleReset)

	return healthHandler
}
