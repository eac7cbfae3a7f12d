package handler

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/yt-analytics/yt-analytics-go/internal/middleware"
	"github.com/yt-analytics/yt-analytics-go/internal/model"
	"github.com/yt-analytics/yt-analytics-go/internal/service"
)

// TopChannelsLister returns today's top channels by country.
type TopChannelsLister interface {
	List(ctx context.Context) (model.TopChannelsResponse, error)
}

// ChannelLooker resolves a single channel.
type ChannelLooker interface {
	Lookup(ctx context.Context, channelID string) (*model.RankedChannel, error)
}

type ChannelHandler struct {
	top    TopChannelsLister
	lookup ChannelLooker
}

func NewChannelHandler(top TopChannelsLister, lookup ChannelLooker) *ChannelHandler {
	return &ChannelHandler{top: top, lookup: lookup}
}

// TopChannels handles GET /api/top-channels
func (h *ChannelHandler) TopChannels(c fiber.Ctx) error {
	resp, err := h.top.List(c.Context())
	if err != nil {
		return serviceError(c, err, "load top channels")
	}
	return c.JSON(resp)
}

// GetByChannelID handles GET /api/channels/:channelId
func (h *ChannelHandler) GetByChannelID(c fiber.Ctx) error {
	channelID, errMsg := middleware.ValidateChannelID(c.Params("channelId"))
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	resp, err := h.lookup.Lookup(c.Context(), channelID)
	if err != nil {
		if errors.Is(err, service.ErrChannelNotFound) {
			return middleware.ErrorResponse(c, fiber.StatusNotFound, "NOT_FOUND", "Channel not found")
		}
		return serviceError(c, err, "lookup channel")
	}
	return c.JSON(resp)
}
