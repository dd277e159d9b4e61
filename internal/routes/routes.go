package routes

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/incident-desk/internal/config"
	"github.com/ahmetcoskunkizilkaya/incident-desk/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/incident-desk/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	healthHandler *handlers.HealthHandler,
	reportHandler *handlers.ReportHandler,
	streamHandler *handlers.StreamHandler,
	seedHandler *handlers.SeedHandler,
) {
	api := app.Group("/api")

	api.Get("/health", healthHandler.Check)

	// Live stream is long-lived; keep it out of the request limiter.
	api.Get("/reports/stream", streamHandler.Stream)

	// General API rate limiter: 120 req/min per IP
	limited := api.Group("", limiter.New(limiter.Config{
		Max:               120,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	// Public: dashboard reads and resident submissions
	limited.Get("/reports", reportHandler.List)
	limited.Get("/reports/details", reportHandler.Details)
	limited.Post("/reports", middleware.ReporterIdentity(cfg), reportHandler.Create)

	// Officer-only mutations (JWT + officer role)
	officer := []fiber.Handler{middleware.JWTProtected(cfg), middleware.OfficerRequired(cfg)}
	limited.Put("/reports", append(officer, reportHandler.Update)...)
	limited.Patch("/reports/status", append(officer, reportHandler.UpdateStatus)...)
	limited.Delete("/reports", append(officer, reportHandler.Delete)...)

	// Seeding is expensive; stricter limit: 5 req/min per IP
	limited.Get("/seed", limiter.New(limiter.Config{
		Max:               5,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}), middleware.JWTProtected(cfg), middleware.OfficerRequired(cfg), seedHandler.Seed)
}
