package discovery

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/yt-analytics/yt-analytics-go/internal/metrics"
	"github.com/yt-analytics/yt-analytics-go/internal/model"
	"github.com/yt-analytics/yt-analytics-go/internal/youtube"
)

// ChannelFetcher looks up at most youtube.MaxPageSize channels per call.
type ChannelFetcher interface {
	Channels(ctx context.Context, ids []string) ([]youtube.ChannelDetail, error)
}

// Source is everything the pipeline needs from the upstream API.
type Source interface {
	Searcher
	ChannelFetcher
	UploadLookup
}

// Config tunes page budgets and relevance thresholds.
type Config struct {
	ContentPages int
	DirectPages  int
	ContentOrder string
	Thresholds   Thresholds
}

func DefaultConfig() Config {
	return Config{
		ContentPages: 3,
		DirectPages:  1,
		ContentOrder: "relevance",
		Thresholds:   DefaultThresholds(),
	}
}

// Result is one ranked page of channels. NextPageToken is empty when there is
// nothing to resume.
type Result struct {
	Channels      []model.RankedChannel
	NextPageToken string
}

// Pipeline turns a search query into a ranked, deduplicated channel list. It
// keeps no state between runs and is safe for concurrent use.
type Pipeline struct {
	src Source
	cfg Config
	log zerolog.Logger
}

func NewPipeline(src Source, cfg Config, log zerolog.Logger) *Pipeline {
	if cfg.ContentPages <= 0 {
		cfg.ContentPages = DefaultConfig().ContentPages
	}
	if cfg.DirectPages < 0 {
		cfg.DirectPages = 0
	}
	return &Pipeline{src: src, cfg: cfg, log: log.With().Str("component", "discovery").Logger()}
}

// Run executes one discovery. pageToken resumes a previous content search;
// direct channel search only runs for cold queries. Any search or detail
// failure aborts the run; latest-upload failures only null that field.
func (p *Pipeline) Run(ctx context.Context, query string, maxResults int, pageToken string) (*Result, error) {
	start := time.Now()
	defer func() { metrics.PipelineDuration.Observe(time.Since(start).Seconds()) }()

	content, token, err := Collect(ctx, p.src, CollectRequest{
		Query:      query,
		Mode:       youtube.TypeVideo,
		PageBudget: p.cfg.ContentPages,
		SeedToken:  pageToken,
		Order:      p.cfg.ContentOrder,
	})
	if err != nil {
		return nil, err
	}

	var direct []youtube.SearchItem
	if pageToken == "" && p.cfg.DirectPages > 0 {
		direct, _, err = Collect(ctx, p.src, CollectRequest{
			Query:      query,
			Mode:       youtube.TypeChannel,
			PageBudget: p.cfg.DirectPages,
		})
		if err != nil {
			return nil, err
		}
	}

	set := Aggregate(direct, content)
	details, err := FetchDetails(ctx, p.src, set.IDs())
	if err != nil {
		return nil, err
	}

	scored := Filter(set, details, query, p.cfg.Thresholds)
	metrics.PipelineCandidates.WithLabelValues("aggregated").Observe(float64(set.Len()))
	metrics.PipelineCandidates.WithLabelValues("filtered").Observe(float64(len(scored)))

	if len(scored) == 0 {
		p.log.Debug().Str("query", query).Int("candidates", set.Len()).Msg("no channels passed relevance filter")
		return &Result{Channels: []model.RankedChannel{}}, nil
	}

	scored = Truncate(scored, maxResults)
	survivors := make([]youtube.ChannelDetail, 0, len(scored))
	for _, s := range scored {
		survivors = append(survivors, details[s.ChannelID])
	}

	latest := Enrich(ctx, p.src, survivors, p.log)
	ranked := Rank(scored, details, latest)

	p.log.Debug().
		Str("query", query).
		Int("content_items", len(content)).
		Int("direct_items", len(direct)).
		Int("candidates", set.Len()).
		Int("ranked", len(ranked)).
		Dur("elapsed", time.Since(start)).
		Msg("discovery complete")

	return &Result{Channels: ranked, NextPageToken: token}, nil
}

// FetchDetails looks up ids in batches of youtube.MaxPageSize, issuing batches
// concurrently. The first failed batch fails the whole lookup.
func FetchDetails(ctx context.Context, src ChannelFetcher, ids []string) (map[string]youtube.ChannelDetail, error) {
	details := make(map[string]youtube.ChannelDetail, len(ids))
	if len(ids) == 0 {
		return details, nil
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	for i, batch := range youtube.Chunk(ids, youtube.MaxPageSize) {
		g.Go(func() error {
			items, err := src.Channels(gctx, batch)
			if err != nil {
				return fmt.Errorf("channel details batch %d: %w", i+1, err)
			}
			mu.Lock()
			for _, d := range items {
				details[d.ID] = d
			}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return details, nil
}
