package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// RouterConfig carries the HTTP server settings the router needs.
type RouterConfig struct {
	CORSOrigins       string
	RateLimitRequests int
	RateLimitWindow   time.Duration
}

// Router builds the Fiber application with all routes and middleware.
func Router(handler *Handler, config RouterConfig) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName: "Advisor Engine v1.0.0",
	})

	app.Use(logger.New())
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: config.CORSOrigins,
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Content-Type,Authorization",
	}))
	if config.RateLimitRequests > 0 {
		app.Use(RateLimiter(config.RateLimitRequests, config.RateLimitWindow))
	}

	app.Get("/health", handler.Health)

	v1 := app.Group("/api/v1")
	v1.Get("/health", handler.Health)

	v1.Post("/chat", handler.Chat)
	v1.Post("/advise", handler.Advise)

	v1.Post("/profile", handler.CreateProfile)
	v1.Get("/profile", handler.GetProfile)
	v1.Put("/profile/preferences", handler.UpdatePreferences)

	v1.Get("/portfolio/summary", handler.PortfolioSummary)
	v1.Get("/portfolio/holdings", handler.ListHoldings)
	v1.Post("/portfolio/holdings", handler.AddHolding)
	v1.Get("/portfolio/transactions", handler.ListTransactions)

	v1.Get("/journal", handler.ListJournal)
	v1.Post("/journal", handler.AddJournalEntry)

	v1.Get("/market/summary", handler.MarketSummary)
	v1.Get("/market/indices", handler.MarketIndices)
	v1.Get("/market/history/:symbol", handler.MarketHistory)

	return app
}
