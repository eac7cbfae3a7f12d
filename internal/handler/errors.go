package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v3"

	"github.com/yt-analytics/yt-analytics-go/internal/middleware"
	"github.com/yt-analytics/yt-analytics-go/internal/youtube"
)

// serviceError maps a service failure onto the API error envelope.
func serviceError(c fiber.Ctx, err error, action string) error {
	middleware.Logger.Error().Err(err).
		Str("request_id", middleware.RequestID(c)).
		Str("action", action).
		Msg("request failed")

	var fe *youtube.FetchError
	switch {
	case errors.As(err, &fe) && fe.StatusCode == http.StatusBadRequest:
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", "Upstream rejected the request parameters")
	case errors.Is(err, youtube.ErrFetchFailure):
		return middleware.ErrorResponse(c, fiber.StatusBadGateway, "UPSTREAM_ERROR", "Failed to "+action+": upstream API unavailable")
	case errors.Is(err, context.DeadlineExceeded):
		return middleware.ErrorResponse(c, fiber.StatusGatewayTimeout, "TIMEOUT", "Failed to "+action+": timed out")
	default:
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to "+action)
	}
}
