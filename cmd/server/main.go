package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/yt-analytics/yt-analytics-go/internal/config"
	"github.com/yt-analytics/yt-analytics-go/internal/db"
	"github.com/yt-analytics/yt-analytics-go/internal/discovery"
	"github.com/yt-analytics/yt-analytics-go/internal/handler"
	"github.com/yt-analytics/yt-analytics-go/internal/metrics"
	"github.com/yt-analytics/yt-analytics-go/internal/middleware"
	"github.com/yt-analytics/yt-analytics-go/internal/repository"
	"github.com/yt-analytics/yt-analytics-go/internal/router"
	"github.com/yt-analytics/yt-analytics-go/internal/service"
	"github.com/yt-analytics/yt-analytics-go/internal/youtube"
)

func main() {
	cfg := config.Load()
	middleware.InitLogger(cfg.LogLevel, "yt-analytics")
	log := middleware.Logger

	if cfg.YouTubeAPIKey == "" {
		log.Warn().Msg("YOUTUBE_API_KEY is not set, upstream calls will be rejected")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()

	if err := db.EnsureSchema(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("failed to apply schema")
	}
	metrics.Register(pool)

	cache := service.NewCacheService(cfg.RedisURL, log)
	defer cache.Close()

	yt := youtube.NewClient(youtube.Options{
		BaseURL: cfg.YouTubeAPIBase,
		APIKey:  cfg.YouTubeAPIKey,
		Gate:    youtube.NewRateGate(cfg.YouTubeRateLimit, cfg.YouTubeRateBurst),
		Retry: youtube.RetryConfig{
			MaxAttempts:     uint(cfg.YouTubeMaxAttempts),
			InitialInterval: youtube.DefaultRetryConfig.InitialInterval,
			MaxInterval:     youtube.DefaultRetryConfig.MaxInterval,
		},
		Breaker: youtube.DefaultBreakerConfig,
		Logger:  log,
	})

	pipelineCfg := discovery.DefaultConfig()
	pipelineCfg.ContentPages = cfg.SearchContentPages
	pipelineCfg.DirectPages = cfg.SearchDirectPages
	pipeline := discovery.NewPipeline(yt, pipelineCfg, log)

	// Repositories
	searchRepo := repository.NewSearchResultRepo(pool)
	topRepo := repository.NewTopChannelRepo(pool)

	// Services
	searchSvc := service.NewSearchService(pipeline, yt, cache, searchRepo, log)
	trendingSvc := service.NewTrendingService(yt, searchRepo, log)
	topSvc := service.NewTopChannelsService(yt, topRepo, cache, cfg.TopChannelsCountries, cfg.TopChannels, log)
	channelSvc := service.NewChannelService(yt, cache, log)
	regionSvc := service.NewRegionService(yt, cache, log)

	if cfg.TopChannelsRefresh {
		worker := service.NewTopChannelsWorker(topSvc, log)
		go worker.Start(ctx)
		defer worker.Stop()
	}

	app := fiber.New(fiber.Config{
		AppName:      "YT Analytics API",
		ServerHeader: "yt-analytics",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 90 * time.Second,
	})

	router.Setup(app, &router.Handlers{
		Health:   handler.NewHealthHandler(pool, cache.Client(), yt),
		Search:   handler.NewSearchHandler(searchSvc),
		Trending: handler.NewTrendingHandler(trendingSvc, regionSvc),
		Channel:  handler.NewChannelHandler(topSvc, channelSvc),
	}, cfg.CORSOrigins)

	go func() {
		<-ctx.Done()
		log.Info().Msg("shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Error().Err(err).Msg("shutdown failed")
		}
	}()

	log.Info().Str("port", cfg.Port).Str("env", cfg.Environment).Msg("yt-analytics backend starting")
	if err := app.Listen(":"+cfg.Port, fiber.ListenConfig{DisableStartupMessage: true}); err != nil {
		log.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
}
