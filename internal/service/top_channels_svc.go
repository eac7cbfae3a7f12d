package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/yt-analytics/yt-analytics-go/internal/config"
	"github.com/yt-analytics/yt-analytics-go/internal/discovery"
	"github.com/yt-analytics/yt-analytics-go/internal/metrics"
	"github.com/yt-analytics/yt-analytics-go/internal/model"
	"github.com/yt-analytics/yt-analytics-go/internal/youtube"
)

// NameSearchResults is the page size used to resolve a channel name.
const NameSearchResults = 10

// nameLookupConcurrency caps parallel name searches.
const nameLookupConcurrency = 4

// ChannelSource searches for and looks up channels.
type ChannelSource interface {
	discovery.Searcher
	discovery.ChannelFetcher
}

// TopChannelStore persists each country's top channel rows.
type TopChannelStore interface {
	ReplaceCountry(ctx context.Context, countryCode string, channels []model.TopChannel) error
	ListSince(ctx context.Context, since time.Time) ([]model.TopChannel, error)
	CountSince(ctx context.Context, since time.Time) (int, error)
}

type TopChannelsService struct {
	src       ChannelSource
	store     TopChannelStore
	cache     Cache
	countries []string
	sources   map[string]config.TopChannelSource
	now       func() time.Time
	log       zerolog.Logger
}

func NewTopChannelsService(src ChannelSource, store TopChannelStore, cache Cache, countries []string, sources map[string]config.TopChannelSource, log zerolog.Logger) *TopChannelsService {
	return &TopChannelsService{
		src:       src,
		store:     store,
		cache:     cache,
		countries: countries,
		sources:   sources,
		now:       time.Now,
		log:       log.With().Str("component", "top-channels").Logger(),
	}
}

// FetchByIDs looks up ids in concurrent batches and orders them by subscriber
// count. A failed batch is logged and dropped; the others still count.
func (s *TopChannelsService) FetchByIDs(ctx context.Context, ids []string) []youtube.ChannelDetail {
	batches := youtube.Chunk(ids, youtube.MaxPageSize)
	results := make([][]youtube.ChannelDetail, len(batches))

	var g errgroup.Group
	for i, batch := range batches {
		g.Go(func() error {
			items, err := s.src.Channels(ctx, batch)
			if err != nil {
				s.log.Warn().Err(err).Int("batch", i+1).Int("size", len(batch)).Msg("channel batch failed")
				return nil
			}
			results[i] = items
			return nil
		})
	}
	_ = g.Wait()

	var out []youtube.ChannelDetail
	for _, items := range results {
		out = append(out, items...)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].SubscriberCount > out[j].SubscriberCount })
	return out
}

// ResolveName finds the channel whose title is name among the first
// NameSearchResults channel search hits. It returns "" when nothing matches.
func (s *TopChannelsService) ResolveName(ctx context.Context, name string) (string, error) {
	page, err := s.src.SearchPage(ctx, youtube.SearchRequest{
		Query:      name,
		Type:       youtube.TypeChannel,
		MaxResults: NameSearchResults,
	})
	if err != nil {
		return "", fmt.Errorf("resolve %q: %w", name, err)
	}
	return MatchChannelTitle(page.Items, name), nil
}

// MatchChannelTitle prefers an exact title match, then a case-insensitive one.
func MatchChannelTitle(items []youtube.SearchItem, name string) string {
	for _, it := range items {
		if it.Title == name {
			return it.ChannelID
		}
	}
	for _, it := range items {
		if strings.EqualFold(it.Title, name) {
			return it.ChannelID
		}
	}
	return ""
}

// ResolveNames resolves names concurrently. The result keeps input order;
// unresolved names map to "".
func (s *TopChannelsService) ResolveNames(ctx context.Context, names []string) []string {
	ids := make([]string, len(names))

	var g errgroup.Group
	g.SetLimit(nameLookupConcurrency)
	for i, name := range names {
		g.Go(func() error {
			id, err := s.ResolveName(ctx, name)
			if err != nil {
				s.log.Warn().Err(err).Str("name", name).Msg("channel name lookup failed")
				return nil
			}
			ids[i] = id
			return nil
		})
	}
	_ = g.Wait()
	return ids
}

// FetchCountry gathers the configured channels of one country, preferring ids
// over names.
func (s *TopChannelsService) FetchCountry(ctx context.Context, countryCode string) []youtube.ChannelDetail {
	src := s.sources[countryCode]
	if len(src.IDs) > 0 {
		return s.FetchByIDs(ctx, src.IDs)
	}
	if len(src.Names) == 0 {
		s.log.Warn().Str("country", countryCode).Msg("no channel ids or names configured")
		return nil
	}

	s.log.Warn().Str("country", countryCode).Int("names", len(src.Names)).
		Msg("no channel ids configured, falling back to name search; run collect-ids to avoid this")
	var ids []string
	for _, id := range s.ResolveNames(ctx, src.Names) {
		if id != "" {
			ids = append(ids, id)
		}
	}
	return s.FetchByIDs(ctx, ids)
}

// Refresh rebuilds every country's rows. A country that yields no channels
// keeps its previous rows.
func (s *TopChannelsService) Refresh(ctx context.Context) error {
	start := time.Now()
	defer func() { metrics.TopChannelsRefresh.Observe(time.Since(start).Seconds()) }()

	var errs []error
	for _, cc := range s.countries {
		details := s.FetchCountry(ctx, cc)
		if len(details) == 0 {
			s.log.Warn().Str("country", cc).Msg("no channels retrieved, keeping previous rows")
			continue
		}

		rows := make([]model.TopChannel, len(details))
		for i, d := range details {
			rows[i] = topChannelFromDetail(cc, i+1, d)
		}
		if err := s.store.ReplaceCountry(ctx, cc, rows); err != nil {
			errs = append(errs, err)
			continue
		}
		s.log.Info().Str("country", cc).Int("channels", len(rows)).Msg("top channels saved")
	}

	if s.cache != nil {
		if err := s.cache.Delete(ctx, s.cacheKey()); err != nil {
			s.log.Warn().Err(err).Msg("cache: top channels delete error")
		}
	}

	s.log.Info().Dur("elapsed", time.Since(start)).Int("failed_countries", len(errs)).Msg("top channels refresh complete")
	return errors.Join(errs...)
}

// HasToday reports whether any rows were written since midnight KST.
func (s *TopChannelsService) HasToday(ctx context.Context) (bool, error) {
	n, err := s.store.CountSince(ctx, DayStart(s.now(), KST))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// List returns today's rows grouped by country, ranked. Results are cached for
// the KST day; a cached entry holding no channels is discarded.
func (s *TopChannelsService) List(ctx context.Context) (model.TopChannelsResponse, error) {
	key := s.cacheKey()

	if s.cache != nil {
		var cached model.TopChannelsResponse
		hit, err := s.cache.GetJSON(ctx, key, &cached)
		switch {
		case err != nil:
			s.log.Warn().Err(err).Msg("cache: top channels get error")
		case hit && countChannels(cached) > 0:
			return cached, nil
		case hit:
			if err := s.cache.Delete(ctx, key); err != nil {
				s.log.Warn().Err(err).Msg("cache: top channels delete error")
			}
		}
	}

	rows, err := s.store.ListSince(ctx, DayStart(s.now(), KST))
	if err != nil {
		return nil, err
	}

	grouped := make(model.TopChannelsResponse, len(s.countries))
	for _, cc := range s.countries {
		grouped[cc] = []model.TopChannel{}
	}
	for _, row := range rows {
		grouped[row.CountryCode] = append(grouped[row.CountryCode], row)
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, key, grouped, TopChannelsCacheTTL); err != nil {
			s.log.Warn().Err(err).Msg("cache: top channels set error")
		}
	}
	return grouped, nil
}

func (s *TopChannelsService) cacheKey() string {
	return "top_channels:" + DayStart(s.now(), KST).Format(time.DateOnly)
}

func countChannels(r model.TopChannelsResponse) int {
	n := 0
	for _, chs := range r {
		n += len(chs)
	}
	return n
}

func topChannelFromDetail(countryCode string, rank int, d youtube.ChannelDetail) model.TopChannel {
	return model.TopChannel{
		Rank:            rank,
		CountryCode:     countryCode,
		ChannelID:       d.ID,
		Title:           d.Title,
		Description:     d.Description,
		ThumbnailURL:    d.ThumbnailURL,
		SubscriberCount: d.SubscriberCount,
		VideoCount:      d.VideoCount,
		ViewCount:       d.ViewCount,
		CustomURL:       d.CustomURL,
		PublishedAt:     d.PublishedAt,
	}
}
