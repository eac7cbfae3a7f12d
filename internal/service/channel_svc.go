package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/yt-analytics/yt-analytics-go/internal/discovery"
	"github.com/yt-analytics/yt-analytics-go/internal/model"
	"github.com/yt-analytics/yt-analytics-go/internal/youtube"
)

// ErrChannelNotFound is returned when the upstream knows no such channel.
var ErrChannelNotFound = errors.New("channel not found")

// ChannelLookupSource fetches channel details and their latest upload.
type ChannelLookupSource interface {
	discovery.ChannelFetcher
	discovery.UploadLookup
}

type ChannelService struct {
	src   ChannelLookupSource
	cache Cache
	log   zerolog.Logger
}

func NewChannelService(src ChannelLookupSource, cache Cache, log zerolog.Logger) *ChannelService {
	return &ChannelService{src: src, cache: cache, log: log.With().Str("component", "channel").Logger()}
}

// Lookup returns one channel in the ranked-result shape.
// Uses cache-aside: check Redis first, fall back to the API, then populate cache.
func (s *ChannelService) Lookup(ctx context.Context, channelID string) (*model.RankedChannel, error) {
	key := "channel:" + channelID

	if s.cache != nil {
		var cached model.RankedChannel
		hit, err := s.cache.GetJSON(ctx, key, &cached)
		if err != nil {
			s.log.Warn().Err(err).Msg("cache: channel get error")
		} else if hit {
			return &cached, nil
		}
	}

	items, err := s.src.Channels(ctx, []string{channelID})
	if err != nil {
		return nil, err
	}
	var detail *youtube.ChannelDetail
	for i := range items {
		if items[i].ID == channelID {
			detail = &items[i]
			break
		}
	}
	if detail == nil {
		return nil, ErrChannelNotFound
	}

	latest := discovery.Enrich(ctx, s.src, []youtube.ChannelDetail{*detail}, s.log)
	ranked := discovery.Rank(
		[]discovery.Scored{{ChannelID: channelID}},
		map[string]youtube.ChannelDetail{channelID: *detail},
		latest,
	)
	resp := &ranked[0]

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, key, resp, ChannelCacheTTL); err != nil {
			s.log.Warn().Err(err).Msg("cache: channel set error")
		}
	}
	return resp, nil
}
