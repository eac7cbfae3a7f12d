package handler

import (
	"context"

	"github.com/gofiber/fiber/v3"

	"github.com/yt-analytics/yt-analytics-go/internal/middleware"
	"github.com/yt-analytics/yt-analytics-go/internal/model"
	"github.com/yt-analytics/yt-analytics-go/internal/youtube"
)

// TrendingLister reports a region's trending channels.
type TrendingLister interface {
	Trending(ctx context.Context, region string, maxResults int) *model.TrendingResponse
}

// RegionLister lists supported regions.
type RegionLister interface {
	List(ctx context.Context) ([]youtube.Region, error)
}

type TrendingHandler struct {
	svc     TrendingLister
	regions RegionLister
}

func NewTrendingHandler(svc TrendingLister, regions RegionLister) *TrendingHandler {
	return &TrendingHandler{svc: svc, regions: regions}
}

// Trending handles GET /api/trending?region=&max_results=
// Upstream failures are reported in the body's error field with status 200.
func (h *TrendingHandler) Trending(c fiber.Ctx) error {
	region, errMsg := middleware.ValidateRegionCode(c.Query("region"))
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}
	maxResults, errMsg := middleware.ValidateMaxResults(c.Query("max_results"), middleware.MaxTrendingSize, middleware.MaxTrendingSize)
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	return c.JSON(h.svc.Trending(c.Context(), region, maxResults))
}

// Regions handles GET /api/regions
func (h *TrendingHandler) Regions(c fiber.Ctx) error {
	regions, err := h.regions.List(c.Context())
	if err != nil {
		return serviceError(c, err, "list regions")
	}
	return c.JSON(regions)
}
