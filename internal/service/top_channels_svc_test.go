package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yt-analytics/yt-analytics-go/internal/config"
	"github.com/yt-analytics/yt-analytics-go/internal/model"
	"github.com/yt-analytics/yt-analytics-go/internal/youtube"
)

func newTopFixture(sources map[string]config.TopChannelSource) (*TopChannelsService, *fakeYouTube, *memTopStore, *memCache) {
	yt := newFakeYouTube()
	store := newMemTopStore(clockAt(fixedNow))
	cache := newMemCache()
	svc := NewTopChannelsService(yt, store, cache, []string{"KR", "JP", "US"}, sources, zerolog.Nop())
	svc.now = clockAt(fixedNow)
	return svc, yt, store, cache
}

func detailIDs(ds []youtube.ChannelDetail) []string {
	ids := make([]string, len(ds))
	for i, d := range ds {
		ids[i] = d.ID
	}
	return ids
}

func TestMatchChannelTitle(t *testing.T) {
	items := []youtube.SearchItem{
		{ChannelID: "UCfan", Title: "BLACKPINK fan club"},
		{ChannelID: "UClower", Title: "blackpink"},
		{ChannelID: "UCexact", Title: "BLACKPINK"},
	}

	assert.Equal(t, "UCexact", MatchChannelTitle(items, "BLACKPINK"))
	assert.Equal(t, "UClower", MatchChannelTitle(items, "BlackPink"), "case-insensitive fallback takes the first match")
	assert.Empty(t, MatchChannelTitle(items, "BLACK"))
	assert.Empty(t, MatchChannelTitle(nil, "BLACKPINK"))
}

func TestResolveName(t *testing.T) {
	svc, yt, _, _ := newTopFixture(nil)
	yt.search["HYBE LABELS"] = &youtube.SearchPage{Items: []youtube.SearchItem{{ChannelID: "UChybe", Title: "HYBE LABELS"}}}

	id, err := svc.ResolveName(context.Background(), "HYBE LABELS")
	require.NoError(t, err)
	assert.Equal(t, "UChybe", id)

	require.Len(t, yt.searchReqs, 1)
	assert.Equal(t, youtube.TypeChannel, yt.searchReqs[0].Type)
	assert.Equal(t, NameSearchResults, yt.searchReqs[0].MaxResults)

	yt.searchErr["broken"] = errQuota
	_, err = svc.ResolveName(context.Background(), "broken")
	assert.True(t, errors.Is(err, youtube.ErrFetchFailure))
}

func TestResolveNames_KeepsOrder(t *testing.T) {
	svc, yt, _, _ := newTopFixture(nil)
	yt.search["a"] = &youtube.SearchPage{Items: []youtube.SearchItem{{ChannelID: "UCa", Title: "a"}}}
	yt.search["c"] = &youtube.SearchPage{Items: []youtube.SearchItem{{ChannelID: "UCc", Title: "C"}}}
	yt.searchErr["b"] = errQuota

	assert.Equal(t, []string{"UCa", "", "UCc", ""}, svc.ResolveNames(context.Background(), []string{"a", "b", "c", "d"}))
}

func TestFetchByIDs_DropsFailedBatch(t *testing.T) {
	svc, yt, _, _ := newTopFixture(nil)
	var ids []string
	for i := 0; i < 120; i++ {
		id := fmt.Sprintf("UC%03d", i)
		ids = append(ids, id)
		yt.channels[id] = youtube.ChannelDetail{ID: id, SubscriberCount: int64(i)}
	}
	yt.failIDs["UC075"] = true // second batch

	got := svc.FetchByIDs(context.Background(), ids)
	assert.Equal(t, 3, yt.channelCalls)
	require.Len(t, got, 70)
	assert.Equal(t, "UC119", got[0].ID, "sorted by subscribers")
	for _, d := range got {
		assert.False(t, d.SubscriberCount >= 50 && d.SubscriberCount < 100, "batch two dropped, got %s", d.ID)
	}
}

func TestRefresh_ReplacesCountries(t *testing.T) {
	svc, yt, store, cache := newTopFixture(map[string]config.TopChannelSource{
		"KR": {IDs: []string{"UCk1", "UCk2"}},
		"JP": {Names: []string{"Kizuna", "Missing"}},
	})
	yt.channels["UCk1"] = youtube.ChannelDetail{ID: "UCk1", SubscriberCount: 10}
	yt.channels["UCk2"] = youtube.ChannelDetail{ID: "UCk2", SubscriberCount: 20}
	yt.channels["UCj1"] = youtube.ChannelDetail{ID: "UCj1", SubscriberCount: 5}
	yt.search["Kizuna"] = &youtube.SearchPage{Items: []youtube.SearchItem{{ChannelID: "UCj1", Title: "kizuna"}}}

	store.rows["US"] = []model.TopChannel{{Rank: 1, CountryCode: "US", ChannelID: "UCold"}}
	require.NoError(t, cache.SetJSON(context.Background(), svc.cacheKey(), model.TopChannelsResponse{"KR": {{ChannelID: "UCstale"}}}, time.Hour))

	require.NoError(t, svc.Refresh(context.Background()))

	require.Len(t, store.rows["KR"], 2)
	assert.Equal(t, "UCk2", store.rows["KR"][0].ChannelID)
	assert.Equal(t, 1, store.rows["KR"][0].Rank)
	assert.Equal(t, 2, store.rows["KR"][1].Rank)
	assert.Equal(t, "KR", store.rows["KR"][1].CountryCode)

	require.Len(t, store.rows["JP"], 1)
	assert.Equal(t, "UCj1", store.rows["JP"][0].ChannelID)

	assert.Equal(t, "UCold", store.rows["US"][0].ChannelID, "empty fetch keeps previous rows")
	assert.False(t, cache.has(svc.cacheKey()), "refresh invalidates today's cache")
}

func TestRefresh_ReportsStoreFailure(t *testing.T) {
	svc, yt, store, _ := newTopFixture(map[string]config.TopChannelSource{"KR": {IDs: []string{"UCk1"}}})
	yt.channels["UCk1"] = youtube.ChannelDetail{ID: "UCk1"}
	store.replaceErr = errors.New("deadlock")

	assert.ErrorContains(t, svc.Refresh(context.Background()), "deadlock")
}

func TestList_GroupsAndCaches(t *testing.T) {
	svc, _, store, cache := newTopFixture(nil)
	store.rows["KR"] = []model.TopChannel{
		{Rank: 1, CountryCode: "KR", ChannelID: "UCk1"},
		{Rank: 2, CountryCode: "KR", ChannelID: "UCk2"},
	}
	store.created["KR"] = fixedNow

	got, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, got["KR"], 2)
	assert.Equal(t, "UCk1", got["KR"][0].ChannelID)
	assert.NotNil(t, got["JP"])
	assert.Empty(t, got["JP"])
	assert.True(t, cache.has("top_channels:2024-05-02"))

	_, err = svc.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, store.lists, "second read is served from cache")
}

func TestList_IgnoresYesterday(t *testing.T) {
	svc, _, store, _ := newTopFixture(nil)
	store.rows["KR"] = []model.TopChannel{{Rank: 1, CountryCode: "KR", ChannelID: "UCk1"}}
	// 23:59 KST on the previous day
	store.created["KR"] = time.Date(2024, 5, 1, 14, 59, 0, 0, time.UTC)

	got, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got["KR"])

	has, err := svc.HasToday(context.Background())
	require.NoError(t, err)
	assert.False(t, has)
}

func TestList_DiscardsEmptyCacheEntry(t *testing.T) {
	svc, _, store, cache := newTopFixture(nil)
	key := svc.cacheKey()
	require.NoError(t, cache.SetJSON(context.Background(), key, model.TopChannelsResponse{"KR": {}, "JP": {}}, time.Hour))

	_, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Contains(t, cache.deleted, key)
	assert.Equal(t, 1, store.lists)
}
