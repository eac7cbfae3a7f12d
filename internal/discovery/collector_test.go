package discovery

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yt-analytics/yt-analytics-go/internal/youtube"
)

func TestCollect_StopsAtPageBudget(t *testing.T) {
	src := newFakeSource()
	src.alwaysToken = true

	got, token, err := Collect(context.Background(), src, CollectRequest{Query: "go", Mode: youtube.TypeVideo, PageBudget: 3})
	require.NoError(t, err)
	assert.Len(t, src.searchCalls, 3)
	assert.Equal(t, "tok3", token)
	assert.Len(t, got, 3)

	// each call feeds the previous continuation token
	assert.Equal(t, "", src.searchCalls[0].PageToken)
	assert.Equal(t, "tok1", src.searchCalls[1].PageToken)
	assert.Equal(t, "tok2", src.searchCalls[2].PageToken)
	for _, c := range src.searchCalls {
		assert.Equal(t, youtube.MaxPageSize, c.MaxResults)
	}
}

func TestCollect_StopsWithoutContinuation(t *testing.T) {
	src := newFakeSource()
	src.setPage(youtube.TypeVideo, "", "p2", "UCa", "UCb")
	src.setPage(youtube.TypeVideo, "p2", "", "UCc")

	got, token, err := Collect(context.Background(), src, CollectRequest{Query: "go", Mode: youtube.TypeVideo, PageBudget: 5})
	require.NoError(t, err)
	assert.Len(t, src.searchCalls, 2)
	assert.Empty(t, token)
	assert.Len(t, got, 3)
}

func TestCollect_StopsOnEmptyPage(t *testing.T) {
	src := newFakeSource()
	src.setPage(youtube.TypeVideo, "", "p2", "UCa")
	src.pages[pageKey(youtube.TypeVideo, "p2")] = &youtube.SearchPage{NextPageToken: "p3"}

	got, token, err := Collect(context.Background(), src, CollectRequest{Query: "go", Mode: youtube.TypeVideo, PageBudget: 5})
	require.NoError(t, err)
	assert.Len(t, src.searchCalls, 2)
	assert.Equal(t, "p3", token)
	assert.Len(t, got, 1)
}

func TestCollect_UsesSeedToken(t *testing.T) {
	src := newFakeSource()
	src.setPage(youtube.TypeVideo, "seed", "after", "UCa")

	_, token, err := Collect(context.Background(), src, CollectRequest{Query: "go", Mode: youtube.TypeVideo, PageBudget: 1, SeedToken: "seed", Order: "viewCount"})
	require.NoError(t, err)
	require.Len(t, src.searchCalls, 1)
	assert.Equal(t, "seed", src.searchCalls[0].PageToken)
	assert.Equal(t, "viewCount", src.searchCalls[0].Order)
	assert.Equal(t, "after", token)
}

func TestCollect_PropagatesFetchFailure(t *testing.T) {
	src := newFakeSource()
	src.searchErr = errUpstream

	_, _, err := Collect(context.Background(), src, CollectRequest{Query: "go", Mode: youtube.TypeChannel, PageBudget: 2, SeedToken: "stale"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, youtube.ErrFetchFailure))
	assert.Len(t, src.searchCalls, 1)
}
