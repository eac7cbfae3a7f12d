package service

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/yt-analytics/yt-analytics-go/internal/discovery"
	"github.com/yt-analytics/yt-analytics-go/internal/model"
	"github.com/yt-analytics/yt-analytics-go/internal/repository"
	"github.com/yt-analytics/yt-analytics-go/internal/youtube"
)

// TrendingPages is how many pages of the mostPopular chart are walked.
const TrendingPages = 3

// TrendingUnavailable is reported in place of a failure when the chart cannot
// be fetched.
const TrendingUnavailable = "Trending data is temporarily unavailable (API quota exceeded). Please try again later."

// ChartSource serves the mostPopular chart and channel details.
type ChartSource interface {
	MostPopular(ctx context.Context, regionCode, pageToken string) (*youtube.PopularPage, error)
	discovery.ChannelFetcher
}

type TrendingService struct {
	src   ChartSource
	store ResultStore
	now   func() time.Time
	log   zerolog.Logger
}

func NewTrendingService(src ChartSource, store ResultStore, log zerolog.Logger) *TrendingService {
	return &TrendingService{
		src:   src,
		store: store,
		now:   time.Now,
		log:   log.With().Str("component", "trending").Logger(),
	}
}

// Trending returns the channels dominating a region's chart today. A stored
// result for the same day and size is reused. Upstream failures produce an
// empty list carrying an error message rather than an error.
func (s *TrendingService) Trending(ctx context.Context, region string, maxResults int) *model.TrendingResponse {
	day := DayStart(s.now(), KST)

	if s.store != nil {
		stored, err := s.store.FindForDay(ctx, repository.KindTrending, region, maxResults, day)
		if err != nil {
			s.log.Warn().Err(err).Str("region", region).Msg("store: trending lookup error")
		} else if stored != nil {
			var channels []model.TrendingChannel
			if err := json.Unmarshal(stored.ChannelsData, &channels); err == nil {
				if channels == nil {
					channels = []model.TrendingChannel{}
				}
				return &model.TrendingResponse{RegionCode: region, ResultCount: len(channels), Channels: channels}
			}
			s.log.Warn().Err(err).Str("region", region).Msg("store: trending row unreadable")
		}
	}

	channels, err := s.fetch(ctx, region, maxResults)
	if err != nil {
		s.log.Error().Err(err).Str("region", region).Msg("trending fetch failed")
		return &model.TrendingResponse{
			RegionCode: region,
			Channels:   []model.TrendingChannel{},
			Error:      TrendingUnavailable,
		}
	}

	if s.store != nil {
		if err := s.store.Save(ctx, repository.KindTrending, region, maxResults, day, channels, len(channels)); err != nil {
			s.log.Warn().Err(err).Str("region", region).Msg("store: trending save error")
		}
	}

	return &model.TrendingResponse{RegionCode: region, ResultCount: len(channels), Channels: channels}
}

func (s *TrendingService) fetch(ctx context.Context, region string, maxResults int) ([]model.TrendingChannel, error) {
	appearances := make(map[string]int)
	var order []string
	token := ""

	for page := 0; page < TrendingPages; page++ {
		resp, err := s.src.MostPopular(ctx, region, token)
		if err != nil {
			return nil, err
		}
		if len(resp.Items) == 0 {
			break
		}
		for _, v := range resp.Items {
			if v.ChannelID == "" {
				continue
			}
			if _, seen := appearances[v.ChannelID]; !seen {
				order = append(order, v.ChannelID)
			}
			appearances[v.ChannelID]++
		}
		token = resp.NextPageToken
		if token == "" {
			break
		}
	}

	if len(order) == 0 {
		return []model.TrendingChannel{}, nil
	}

	details, err := discovery.FetchDetails(ctx, s.src, order)
	if err != nil {
		return nil, err
	}
	return RankTrending(order, appearances, details, region, maxResults), nil
}

// RankTrending keeps channels registered in region and orders them by chart
// appearances, then subscribers, both descending.
func RankTrending(order []string, appearances map[string]int, details map[string]youtube.ChannelDetail, region string, maxResults int) []model.TrendingChannel {
	out := make([]model.TrendingChannel, 0, len(order))
	for _, id := range order {
		d, ok := details[id]
		if !ok || d.Country != region {
			continue
		}
		out = append(out, model.TrendingChannel{
			ChannelID:        d.ID,
			Title:            d.Title,
			Description:      d.Description,
			ThumbnailURL:     d.ThumbnailURL,
			SubscriberCount:  d.SubscriberCount,
			VideoCount:       d.VideoCount,
			ViewCount:        d.ViewCount,
			CustomURL:        d.CustomURL,
			Country:          d.Country,
			PublishedAt:      d.PublishedAt,
			VideoAppearances: appearances[id],
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].VideoAppearances != out[j].VideoAppearances {
			return out[i].VideoAppearances > out[j].VideoAppearances
		}
		return out[i].SubscriberCount > out[j].SubscriberCount
	})

	if maxResults >= 0 && len(out) > maxResults {
		out = out[:maxResults]
	}
	return out
}
