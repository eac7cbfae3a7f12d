package service

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/yt-analytics/yt-analytics-go/internal/discovery"
	"github.com/yt-analytics/yt-analytics-go/internal/model"
	"github.com/yt-analytics/yt-analytics-go/internal/repository"
	"github.com/yt-analytics/yt-analytics-go/internal/youtube"
)

var errQuota = &youtube.FetchError{Endpoint: "videos", StatusCode: 403, Attempts: 1, Err: errors.New("quotaExceeded")}

// fixedNow is 2024-05-02 10:00 KST.
var fixedNow = time.Date(2024, 5, 2, 1, 0, 0, 0, time.UTC)

func clockAt(t time.Time) func() time.Time { return func() time.Time { return t } }

// memCache is an in-memory Cache.
type memCache struct {
	mu      sync.Mutex
	data    map[string][]byte
	deleted []string
}

func newMemCache() *memCache { return &memCache{data: make(map[string][]byte)} }

func (c *memCache) GetJSON(_ context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (c *memCache) SetJSON(_ context.Context, key string, v any, _ time.Duration) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = b
	return nil
}

func (c *memCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	c.deleted = append(c.deleted, key)
	return nil
}

func (c *memCache) has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.data[key]
	return ok
}

// memResultStore is an in-memory ResultStore.
type memResultStore struct {
	rows  []repository.StoredResult
	finds int
}

func (s *memResultStore) FindForDay(_ context.Context, kind, query string, maxResults int, day time.Time) (*repository.StoredResult, error) {
	s.finds++
	for i := len(s.rows) - 1; i >= 0; i-- {
		r := s.rows[i]
		if r.Kind == kind && r.Query == query && r.MaxResults == maxResults && r.SearchDate.Equal(day) {
			return &r, nil
		}
	}
	return nil, nil
}

func (s *memResultStore) Save(_ context.Context, kind, query string, maxResults int, day time.Time, channels any, count int) error {
	data, err := json.Marshal(channels)
	if err != nil {
		return err
	}
	s.rows = append(s.rows, repository.StoredResult{
		Kind: kind, Query: query, SearchDate: day, MaxResults: maxResults,
		ResultCount: count, ChannelsData: data,
	})
	return nil
}

// memTopStore is an in-memory TopChannelStore.
type memTopStore struct {
	now        func() time.Time
	rows       map[string][]model.TopChannel
	created    map[string]time.Time
	replaceErr error
	lists      int
}

func newMemTopStore(now func() time.Time) *memTopStore {
	return &memTopStore{now: now, rows: make(map[string][]model.TopChannel), created: make(map[string]time.Time)}
}

func (s *memTopStore) ReplaceCountry(_ context.Context, cc string, channels []model.TopChannel) error {
	if s.replaceErr != nil {
		return s.replaceErr
	}
	s.rows[cc] = channels
	s.created[cc] = s.now()
	return nil
}

func (s *memTopStore) ListSince(_ context.Context, since time.Time) ([]model.TopChannel, error) {
	s.lists++
	var ccs []string
	for cc := range s.rows {
		ccs = append(ccs, cc)
	}
	sort.Strings(ccs)

	var out []model.TopChannel
	for _, cc := range ccs {
		if s.created[cc].Before(since) {
			continue
		}
		out = append(out, s.rows[cc]...)
	}
	return out, nil
}

func (s *memTopStore) CountSince(ctx context.Context, since time.Time) (int, error) {
	rows, _ := s.ListSince(ctx, since)
	return len(rows), nil
}

// fakeYouTube serves canned upstream responses.
type fakeYouTube struct {
	mu sync.Mutex

	search     map[string]*youtube.SearchPage
	searchErr  map[string]error
	searchReqs []youtube.SearchRequest

	channels     map[string]youtube.ChannelDetail
	failIDs      map[string]bool
	channelCalls int

	uploads map[string]time.Time

	chart      map[string]*youtube.PopularPage
	chartErr   error
	chartCalls int

	regions     []youtube.Region
	regionCalls int
}

func newFakeYouTube() *fakeYouTube {
	return &fakeYouTube{
		search:    make(map[string]*youtube.SearchPage),
		searchErr: make(map[string]error),
		channels:  make(map[string]youtube.ChannelDetail),
		failIDs:   make(map[string]bool),
		uploads:   make(map[string]time.Time),
		chart:     make(map[string]*youtube.PopularPage),
	}
}

func (f *fakeYouTube) SearchPage(_ context.Context, req youtube.SearchRequest) (*youtube.SearchPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searchReqs = append(f.searchReqs, req)
	if err := f.searchErr[req.Query]; err != nil {
		return nil, err
	}
	if p, ok := f.search[req.Query]; ok {
		return p, nil
	}
	return &youtube.SearchPage{}, nil
}

func (f *fakeYouTube) Channels(_ context.Context, ids []string) ([]youtube.ChannelDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.channelCalls++
	var out []youtube.ChannelDetail
	for _, id := range ids {
		if f.failIDs[id] {
			return nil, &youtube.FetchError{Endpoint: "channels", StatusCode: 500, Attempts: 4, Err: errors.New("boom")}
		}
		if d, ok := f.channels[id]; ok {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeYouTube) LatestUpload(_ context.Context, playlistID string) (time.Time, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ts, ok := f.uploads[playlistID]
	if !ok {
		return time.Time{}, youtube.ErrEmptyPlaylist
	}
	return ts, nil
}

func (f *fakeYouTube) MostPopular(_ context.Context, _ string, pageToken string) (*youtube.PopularPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.chartCalls++
	if f.chartErr != nil {
		return nil, f.chartErr
	}
	if p, ok := f.chart[pageToken]; ok {
		return p, nil
	}
	return &youtube.PopularPage{}, nil
}

func (f *fakeYouTube) Regions(_ context.Context) ([]youtube.Region, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.regionCalls++
	return f.regions, nil
}

// fakeDiscoverer returns a canned pipeline result.
type fakeDiscoverer struct {
	result *discovery.Result
	err    error
	calls  int
}

func (d *fakeDiscoverer) Run(_ context.Context, _ string, _ int, _ string) (*discovery.Result, error) {
	d.calls++
	if d.err != nil {
		return nil, d.err
	}
	return d.result, nil
}
