package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/yt-analytics/yt-analytics-go/internal/youtube"
)

const regionsCacheKey = "regions:all"

// RegionSource lists supported regions.
type RegionSource interface {
	Regions(ctx context.Context) ([]youtube.Region, error)
}

type RegionService struct {
	src   RegionSource
	cache Cache
	log   zerolog.Logger
}

func NewRegionService(src RegionSource, cache Cache, log zerolog.Logger) *RegionService {
	return &RegionService{src: src, cache: cache, log: log.With().Str("component", "regions").Logger()}
}

// List returns the supported regions, cached for a day.
func (s *RegionService) List(ctx context.Context) ([]youtube.Region, error) {
	if s.cache != nil {
		var cached []youtube.Region
		hit, err := s.cache.GetJSON(ctx, regionsCacheKey, &cached)
		if err != nil {
			s.log.Warn().Err(err).Msg("cache: regions get error")
		} else if hit && len(cached) > 0 {
			return cached, nil
		}
	}

	regions, err := s.src.Regions(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil && len(regions) > 0 {
		if err := s.cache.SetJSON(ctx, regionsCacheKey, regions, RegionsCacheTTL); err != nil {
			s.log.Warn().Err(err).Msg("cache: regions set error")
		}
	}
	return regions, nil
}
