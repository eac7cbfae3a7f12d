package discovery

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/yt-analytics/yt-analytics-go/internal/youtube"
)

var errUpstream = &youtube.FetchError{Endpoint: "search", StatusCode: 500, Attempts: 4, Err: errors.New("boom")}

// fakeSource serves canned pages keyed by search type and page token.
type fakeSource struct {
	mu sync.Mutex

	pages       map[string]*youtube.SearchPage
	alwaysToken bool
	searchErr   error
	searchCalls []youtube.SearchRequest

	details     map[string]youtube.ChannelDetail
	channelsErr error
	batchSizes  []int

	uploads     map[string]time.Time
	uploadErrs  map[string]error
	uploadCalls []string
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		pages:      make(map[string]*youtube.SearchPage),
		details:    make(map[string]youtube.ChannelDetail),
		uploads:    make(map[string]time.Time),
		uploadErrs: make(map[string]error),
	}
}

func pageKey(t youtube.SearchType, token string) string {
	return string(t) + "|" + token
}

func (f *fakeSource) setPage(t youtube.SearchType, token string, next string, channelIDs ...string) {
	page := &youtube.SearchPage{NextPageToken: next}
	for i, id := range channelIDs {
		page.Items = append(page.Items, youtube.SearchItem{
			VideoID:   fmt.Sprintf("%s-%s-%d", token, id, i),
			ChannelID: id,
		})
	}
	f.pages[pageKey(t, token)] = page
}

func (f *fakeSource) addChannel(d youtube.ChannelDetail) {
	if d.UploadsPlaylistID == "" {
		d.UploadsPlaylistID = "UU" + d.ID
	}
	f.details[d.ID] = d
}

func (f *fakeSource) SearchPage(_ context.Context, req youtube.SearchRequest) (*youtube.SearchPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searchCalls = append(f.searchCalls, req)
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	if f.alwaysToken {
		n := len(f.searchCalls)
		return &youtube.SearchPage{
			Items:         []youtube.SearchItem{{ChannelID: fmt.Sprintf("UC%d", n)}},
			NextPageToken: fmt.Sprintf("tok%d", n),
		}, nil
	}
	page, ok := f.pages[pageKey(req.Type, req.PageToken)]
	if !ok {
		return &youtube.SearchPage{}, nil
	}
	return page, nil
}

func (f *fakeSource) Channels(_ context.Context, ids []string) ([]youtube.ChannelDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batchSizes = append(f.batchSizes, len(ids))
	if f.channelsErr != nil {
		return nil, f.channelsErr
	}
	var out []youtube.ChannelDetail
	for _, id := range ids {
		if d, ok := f.details[id]; ok {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeSource) LatestUpload(_ context.Context, playlistID string) (time.Time, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploadCalls = append(f.uploadCalls, playlistID)
	if err, ok := f.uploadErrs[playlistID]; ok {
		return time.Time{}, err
	}
	ts, ok := f.uploads[playlistID]
	if !ok {
		return time.Time{}, youtube.ErrEmptyPlaylist
	}
	return ts, nil
}
