package handler

import (
	"context"

	"github.com/gofiber/fiber/v3"

	"github.com/yt-analytics/yt-analytics-go/internal/middleware"
	"github.com/yt-analytics/yt-analytics-go/internal/model"
)

// ChannelSearcher is the search service as seen by the handler.
type ChannelSearcher interface {
	SearchChannels(ctx context.Context, q string, maxResults int, pageToken string) (*model.SearchChannelsResponse, error)
	Summary(ctx context.Context, q string) (*model.SearchSummaryResponse, error)
}

type SearchHandler struct {
	svc ChannelSearcher
}

func NewSearchHandler(svc ChannelSearcher) *SearchHandler {
	return &SearchHandler{svc: svc}
}

// Channels handles GET /api/search/channels?q=&max_results=&page_token=
func (h *SearchHandler) Channels(c fiber.Ctx) error {
	q, errMsg := middleware.ValidateQuery(c.Query("q"))
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}
	maxResults, errMsg := middleware.ValidateMaxResults(c.Query("max_results"), middleware.DefaultSearchSize, middleware.MaxSearchResults)
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}
	pageToken, errMsg := middleware.ValidatePageToken(c.Query("page_token"))
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	resp, err := h.svc.SearchChannels(c.Context(), q, maxResults, pageToken)
	if err != nil {
		return serviceError(c, err, "search channels")
	}
	return c.JSON(resp)
}

// Summary handles GET /api/search/summary?q=
func (h *SearchHandler) Summary(c fiber.Ctx) error {
	q, errMsg := middleware.ValidateQuery(c.Query("q"))
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	resp, err := h.svc.Summary(c.Context(), q)
	if err != nil {
		return serviceError(c, err, "summarize search")
	}
	return c.JSON(resp)
}
