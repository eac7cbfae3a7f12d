package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// Version is reported by the readiness probe.
const Version = "1.0.0"

// BreakerReporter exposes the upstream circuit breaker state.
type BreakerReporter interface {
	BreakerState() string
}

type HealthHandler struct {
	pool     *pgxpool.Pool
	rdb      *redis.Client
	upstream BreakerReporter
	startAt  time.Time
}

func NewHealthHandler(pool *pgxpool.Pool, rdb *redis.Client, upstream BreakerReporter) *HealthHandler {
	return &HealthHandler{
		pool:     pool,
		rdb:      rdb,
		upstream: upstream,
		startAt:  time.Now(),
	}
}

// Live handles GET /health/live (liveness probe).
func (h *HealthHandler) Live(c fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// Ready handles GET /health/ready (readiness probe with dependency checks).
func (h *HealthHandler) Ready(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 3*time.Second)
	defer cancel()

	checks := make(fiber.Map)
	overallStatus := "healthy"

	// Database check
	checks["database"] = checkDB(ctx, h.pool)
	if dbCheck, ok := checks["database"].(fiber.Map); ok {
		if dbCheck["status"] != "up" {
			overallStatus = "degraded"
		}
	}

	// Redis check
	checks["redis"] = checkRedis(ctx, h.rdb)
	if redisCheck, ok := checks["redis"].(fiber.Map); ok {
		if redisCheck["status"] != "up" && overallStatus == "healthy" {
			overallStatus = "degraded"
		}
	}

	// Upstream check: an open breaker means searches will fail fast
	checks["youtube"] = checkUpstream(h.upstream)
	if upCheck, ok := checks["youtube"].(fiber.Map); ok {
		if upCheck["status"] == "down" && overallStatus == "healthy" {
			overallStatus = "degraded"
		}
	}

	uptimeSeconds := int(time.Since(h.startAt).Seconds())

	resp := fiber.Map{
		"status":         overallStatus,
		"checks":         checks,
		"uptime_seconds": uptimeSeconds,
		"version":        Version,
	}

	status := fiber.StatusOK
	if overallStatus != "healthy" {
		status = fiber.StatusServiceUnavailable
	}

	return c.Status(status).JSON(resp)
}

func checkDB(ctx context.Context, pool *pgxpool.Pool) fiber.Map {
	if pool == nil {
		return fiber.Map{
			"status": "down",
			"error":  "not configured",
		}
	}

	start := time.Now()
	err := pool.Ping(ctx)
	latency := time.Since(start).Milliseconds()

	if err != nil {
		return fiber.Map{
			"status":     "down",
			"latency_ms": latency,
			"error":      "connection failed",
		}
	}
	return fiber.Map{
		"status":     "up",
		"latency_ms": latency,
	}
}

func checkRedis(ctx context.Context, rdb *redis.Client) fiber.Map {
	if rdb == nil {
		return fiber.Map{
			"status": "disabled",
		}
	}

	start := time.Now()
	err := rdb.Ping(ctx).Err()
	latency := time.Since(start).Milliseconds()

	if err != nil {
		return fiber.Map{
			"status":     "down",
			"latency_ms": latency,
			"error":      "connection failed",
		}
	}
	return fiber.Map{
		"status":     "up",
		"latency_ms": latency,
	}
}

func checkUpstream(up BreakerReporter) fiber.Map {
	if up == nil {
		return fiber.Map{
			"status": "disabled",
		}
	}
	state := up.BreakerState()
	status := "up"
	if state == "open" {
		status = "down"
	}
	return fiber.Map{
		"status":  status,
		"breaker": state,
	}
}
