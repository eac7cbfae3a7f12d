package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yt-analytics/yt-analytics-go/internal/model"
	"github.com/yt-analytics/yt-analytics-go/internal/service"
	"github.com/yt-analytics/yt-analytics-go/internal/youtube"
)

type fakeSearcher struct {
	q          string
	maxResults int
	pageToken  string
	resp       *model.SearchChannelsResponse
	err        error
}

func (f *fakeSearcher) SearchChannels(_ context.Context, q string, maxResults int, pageToken string) (*model.SearchChannelsResponse, error) {
	f.q, f.maxResults, f.pageToken = q, maxResults, pageToken
	return f.resp, f.err
}

func (f *fakeSearcher) Summary(_ context.Context, q string) (*model.SearchSummaryResponse, error) {
	f.q = q
	if f.err != nil {
		return nil, f.err
	}
	return &model.SearchSummaryResponse{Query: q, ResultCount: 25}, nil
}

type fakeTrending struct {
	region     string
	maxResults int
	resp       *model.TrendingResponse
}

func (f *fakeTrending) Trending(_ context.Context, region string, maxResults int) *model.TrendingResponse {
	f.region, f.maxResults = region, maxResults
	return f.resp
}

type fakeRegions struct{ err error }

func (f fakeRegions) List(context.Context) ([]youtube.Region, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []youtube.Region{{Code: "KR", Name: "South Korea"}}, nil
}

type fakeTop struct {
	resp model.TopChannelsResponse
	err  error
}

func (f fakeTop) List(context.Context) (model.TopChannelsResponse, error) { return f.resp, f.err }

type fakeLookup struct{}

func (fakeLookup) Lookup(_ context.Context, id string) (*model.RankedChannel, error) {
	if id == "UCknown" {
		return &model.RankedChannel{ChannelID: id, Title: "Known"}, nil
	}
	return nil, service.ErrChannelNotFound
}

type fakeBreaker string

func (f fakeBreaker) BreakerState() string { return string(f) }

var upstreamDown = &youtube.FetchError{Endpoint: "search", StatusCode: 503, Attempts: 4, Err: errors.New("unavailable")}

func newTestApp(search *fakeSearcher, trending *fakeTrending, regions fakeRegions, top fakeTop) *fiber.App {
	app := fiber.New()
	sh := NewSearchHandler(search)
	th := NewTrendingHandler(trending, regions)
	ch := NewChannelHandler(top, fakeLookup{})
	app.Get("/api/search/channels", sh.Channels)
	app.Get("/api/search/summary", sh.Summary)
	app.Get("/api/trending", th.Trending)
	app.Get("/api/regions", th.Regions)
	app.Get("/api/top-channels", ch.TopChannels)
	app.Get("/api/channels/:channelId", ch.GetByChannelID)
	return app
}

type envelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func do(t *testing.T, app *fiber.App, target string) (int, []byte) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, target, nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, body
}

func errorCode(t *testing.T, body []byte) string {
	t.Helper()
	var e envelope
	require.NoError(t, json.Unmarshal(body, &e))
	return e.Error.Code
}

func TestSearchChannels_Validation(t *testing.T) {
	app := newTestApp(&fakeSearcher{}, &fakeTrending{}, fakeRegions{}, fakeTop{})

	for _, target := range []string{
		"/api/search/channels",
		"/api/search/channels?q=%20%20",
		"/api/search/channels?q=lofi&max_results=0",
		"/api/search/channels?q=lofi&max_results=151",
		"/api/search/channels?q=lofi&page_token=bad%2Ftoken",
	} {
		status, body := do(t, app, target)
		assert.Equal(t, fiber.StatusBadRequest, status, target)
		assert.Equal(t, "INVALID_FIELD", errorCode(t, body), target)
	}
}

func TestSearchChannels_OK(t *testing.T) {
	token := "CDIQAA"
	search := &fakeSearcher{resp: &model.SearchChannelsResponse{
		Query:         "lofi",
		ResultCount:   1,
		Channels:      []model.RankedChannel{{ChannelID: "UCa"}},
		NextPageToken: &token,
	}}
	app := newTestApp(search, &fakeTrending{}, fakeRegions{}, fakeTop{})

	status, body := do(t, app, "/api/search/channels?q=+lofi+")
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "lofi", search.q)
	assert.Equal(t, 150, search.maxResults, "default page size")
	assert.Empty(t, search.pageToken)

	var got map[string]any
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, "CDIQAA", got["nextPageToken"])
	assert.EqualValues(t, 1, got["result_count"])

	_, _ = do(t, app, "/api/search/channels?q=lofi&max_results=20&page_token=CDIQAA")
	assert.Equal(t, 20, search.maxResults)
	assert.Equal(t, "CDIQAA", search.pageToken)
}

func TestSearchChannels_UpstreamErrors(t *testing.T) {
	search := &fakeSearcher{err: upstreamDown}
	app := newTestApp(search, &fakeTrending{}, fakeRegions{}, fakeTop{})

	status, body := do(t, app, "/api/search/channels?q=lofi")
	assert.Equal(t, fiber.StatusBadGateway, status)
	assert.Equal(t, "UPSTREAM_ERROR", errorCode(t, body))

	search.err = &youtube.FetchError{Endpoint: "search", StatusCode: 400, Attempts: 1, Err: errors.New("invalid page token")}
	status, body = do(t, app, "/api/search/channels?q=lofi&page_token=stale")
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "INVALID_FIELD", errorCode(t, body))

	search.err = errors.New("boom")
	status, body = do(t, app, "/api/search/channels?q=lofi")
	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.Equal(t, "INTERNAL_ERROR", errorCode(t, body))
}

func TestSearchSummary(t *testing.T) {
	app := newTestApp(&fakeSearcher{}, &fakeTrending{}, fakeRegions{}, fakeTop{})

	status, body := do(t, app, "/api/search/summary?q=lofi")
	require.Equal(t, fiber.StatusOK, status)
	assert.JSONEq(t, `{"query":"lofi","result_count":25}`, string(body))

	status, _ = do(t, app, "/api/search/summary")
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestTrending(t *testing.T) {
	trending := &fakeTrending{resp: &model.TrendingResponse{
		RegionCode: "KR",
		Channels:   []model.TrendingChannel{},
		Error:      "quota",
	}}
	app := newTestApp(&fakeSearcher{}, trending, fakeRegions{}, fakeTop{})

	status, body := do(t, app, "/api/trending")
	require.Equal(t, fiber.StatusOK, status, "upstream failure is reported in the body")
	assert.Equal(t, "KR", trending.region)
	assert.Equal(t, 50, trending.maxResults)
	assert.Contains(t, string(body), `"error":"quota"`)

	_, _ = do(t, app, "/api/trending?region=jp&max_results=10")
	assert.Equal(t, "JP", trending.region)
	assert.Equal(t, 10, trending.maxResults)

	status, _ = do(t, app, "/api/trending?region=JPN")
	assert.Equal(t, fiber.StatusBadRequest, status)
	status, _ = do(t, app, "/api/trending?max_results=51")
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestRegions(t *testing.T) {
	app := newTestApp(&fakeSearcher{}, &fakeTrending{}, fakeRegions{}, fakeTop{})
	status, body := do(t, app, "/api/regions")
	require.Equal(t, fiber.StatusOK, status)
	assert.JSONEq(t, `[{"code":"KR","name":"South Korea"}]`, string(body))

	app = newTestApp(&fakeSearcher{}, &fakeTrending{}, fakeRegions{err: upstreamDown}, fakeTop{})
	status, _ = do(t, app, "/api/regions")
	assert.Equal(t, fiber.StatusBadGateway, status)
}

func TestTopChannels(t *testing.T) {
	top := fakeTop{resp: model.TopChannelsResponse{
		"KR": {{Rank: 1, CountryCode: "KR", ChannelID: "UCk"}},
		"JP": {},
	}}
	app := newTestApp(&fakeSearcher{}, &fakeTrending{}, fakeRegions{}, top)

	status, body := do(t, app, "/api/top-channels")
	require.Equal(t, fiber.StatusOK, status)

	var got map[string][]map[string]any
	require.NoError(t, json.Unmarshal(body, &got))
	require.Len(t, got["KR"], 1)
	assert.Equal(t, "UCk", got["KR"][0]["channelId"])
	assert.NotContains(t, got["KR"][0], "CountryCode")
	assert.Empty(t, got["JP"])

	app = newTestApp(&fakeSearcher{}, &fakeTrending{}, fakeRegions{}, fakeTop{err: errors.New("db down")})
	status, body = do(t, app, "/api/top-channels")
	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.Equal(t, "INTERNAL_ERROR", errorCode(t, body))
}

func TestChannelLookup(t *testing.T) {
	app := newTestApp(&fakeSearcher{}, &fakeTrending{}, fakeRegions{}, fakeTop{})

	status, body := do(t, app, "/api/channels/UCknown")
	require.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, string(body), `"title":"Known"`)

	status, body = do(t, app, "/api/channels/UCunknown")
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", errorCode(t, body))

	status, _ = do(t, app, "/api/channels/UC%20bad!")
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestHealth(t *testing.T) {
	app := fiber.New()
	h := NewHealthHandler(nil, nil, fakeBreaker("open"))
	app.Get("/health/live", h.Live)
	app.Get("/health/ready", h.Ready)

	status, _ := do(t, app, "/health/live")
	assert.Equal(t, fiber.StatusOK, status)

	status, body := do(t, app, "/health/ready")
	assert.Equal(t, fiber.StatusServiceUnavailable, status)

	var got struct {
		Status string                    `json:"status"`
		Checks map[string]map[string]any `json:"checks"`
	}
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, "degraded", got.Status)
	assert.Equal(t, "disabled", got.Checks["redis"]["status"])
	assert.Equal(t, "open", got.Checks["youtube"]["breaker"])
}

func TestSanitizeEndpoint(t *testing.T) {
	assert.Equal(t, "/api/channels/:channelId", sanitizeEndpoint("/api/channels/UCabc"))
	assert.Equal(t, "/api/search/channels", sanitizeEndpoint("/api/search/channels"))
	assert.Equal(t, "/api/channels/", sanitizeEndpoint("/api/channels/"))
}
