package service

import (
	"context"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/yt-analytics/yt-analytics-go/internal/discovery"
	"github.com/yt-analytics/yt-analytics-go/internal/model"
	"github.com/yt-analytics/yt-analytics-go/internal/repository"
	"github.com/yt-analytics/yt-analytics-go/internal/youtube"
	"github.com/yt-analytics/yt-analytics-go/pkg/hash"
)

// SummaryResults is the page size of the search summary call.
const SummaryResults = 25

// Discoverer runs one channel discovery.
type Discoverer interface {
	Run(ctx context.Context, query string, maxResults int, pageToken string) (*discovery.Result, error)
}

// ResultStore persists day-scoped results.
type ResultStore interface {
	FindForDay(ctx context.Context, kind, query string, maxResults int, day time.Time) (*repository.StoredResult, error)
	Save(ctx context.Context, kind, query string, maxResults int, day time.Time, channels any, count int) error
}

type SearchService struct {
	pipeline Discoverer
	search   discovery.Searcher
	cache    Cache
	store    ResultStore
	now      func() time.Time
	log      zerolog.Logger
}

func NewSearchService(pipeline Discoverer, search discovery.Searcher, cache Cache, store ResultStore, log zerolog.Logger) *SearchService {
	return &SearchService{
		pipeline: pipeline,
		search:   search,
		cache:    cache,
		store:    store,
		now:      time.Now,
		log:      log.With().Str("component", "search").Logger(),
	}
}

// SearchChannels returns ranked channels for q. Responses are cached for an
// hour per (q, maxResults, pageToken); cold queries are also recorded in the
// day-scoped store.
func (s *SearchService) SearchChannels(ctx context.Context, q string, maxResults int, pageToken string) (*model.SearchChannelsResponse, error) {
	key := hash.CacheKey("search_channels", q, strconv.Itoa(maxResults), pageToken)

	if s.cache != nil {
		var cached model.SearchChannelsResponse
		hit, err := s.cache.GetJSON(ctx, key, &cached)
		if err != nil {
			s.log.Warn().Err(err).Msg("cache: search get error")
		} else if hit {
			return &cached, nil
		}
	}

	res, err := s.pipeline.Run(ctx, q, maxResults, pageToken)
	if err != nil {
		return nil, err
	}

	resp := &model.SearchChannelsResponse{
		Query:       q,
		ResultCount: len(res.Channels),
		Channels:    res.Channels,
	}
	if res.NextPageToken != "" {
		token := res.NextPageToken
		resp.NextPageToken = &token
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, key, resp, SearchCacheTTL); err != nil {
			s.log.Warn().Err(err).Msg("cache: search set error")
		}
	}

	if pageToken == "" && s.store != nil {
		day := DayStart(s.now(), KST)
		if err := s.store.Save(ctx, repository.KindSearch, q, maxResults, day, resp.Channels, resp.ResultCount); err != nil {
			s.log.Warn().Err(err).Str("query", q).Msg("store: search result save error")
		}
	}

	return resp, nil
}

// Summary counts the videos a single most-viewed search returns for q.
func (s *SearchService) Summary(ctx context.Context, q string) (*model.SearchSummaryResponse, error) {
	page, err := s.search.SearchPage(ctx, youtube.SearchRequest{
		Query:      q,
		Type:       youtube.TypeVideo,
		MaxResults: SummaryResults,
		Order:      "viewCount",
	})
	if err != nil {
		return nil, err
	}
	return &model.SearchSummaryResponse{Query: q, ResultCount: len(page.Items)}, nil
}
