package router

import (
	"github.com/gofiber/fiber/v3"
	recoverer "github.com/gofiber/fiber/v3/middleware/recover"

	"github.com/yt-analytics/yt-analytics-go/internal/handler"
	"github.com/yt-analytics/yt-analytics-go/internal/middleware"
)

// Handlers holds all handler instances needed by the router.
type Handlers struct {
	Health   *handler.HealthHandler
	Search   *handler.SearchHandler
	Trending *handler.TrendingHandler
	Channel  *handler.ChannelHandler
}

// Setup configures the middleware stack and all API routes on the given Fiber app.
func Setup(app *fiber.App, h *Handlers, corsOrigins string) {
	// Middleware stack (order matters)
	app.Use(recoverer.New())
	app.Use(middleware.NewRequestID())
	app.Use(middleware.NewRequestLogger())
	app.Use(handler.MetricsMiddleware())
	app.Use(middleware.NewCORS(corsOrigins))

	// Probes and metrics sit outside the rate limited API group
	app.Get("/health/live", h.Health.Live)
	app.Get("/health/ready", h.Health.Ready)
	app.Get("/metrics", handler.MetricsHandler())

	searchLimit := middleware.NewSearchRateLimiter().Handler()
	lookupLimit := middleware.NewLookupRateLimiter().Handler()
	readLimit := middleware.NewReadRateLimiter().Handler()

	api := app.Group("/api")

	// Search routes
	api.Get("/search/channels", searchLimit, h.Search.Channels)
	api.Get("/search/summary", lookupLimit, h.Search.Summary)

	// Trending routes
	api.Get("/trending", lookupLimit, h.Trending.Trending)
	api.Get("/regions", readLimit, h.Trending.Regions)

	// Channel routes
	api.Get("/top-channels", readLimit, h.Channel.TopChannels)
	api.Get("/channels/:channelId", lookupLimit, h.Channel.GetByChannelID)
}
