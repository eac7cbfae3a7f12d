package youtube

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const channelParts = "snippet,statistics,contentDetails,topicDetails"

// SearchPage issues one call to the search endpoint.
func (c *Client) SearchPage(ctx context.Context, req SearchRequest) (*SearchPage, error) {
	maxResults := req.MaxResults
	if maxResults <= 0 || maxResults > MaxPageSize {
		maxResults = MaxPageSize
	}

	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("q", req.Query)
	params.Set("type", string(req.Type))
	params.Set("maxResults", strconv.Itoa(maxResults))
	if req.PageToken != "" {
		params.Set("pageToken", req.PageToken)
	}
	if req.Order != "" {
		params.Set("order", req.Order)
	}

	var resp searchResponse
	if err := c.Fetch(ctx, "search", params, DefaultTimeout, &resp); err != nil {
		return nil, err
	}

	page := &SearchPage{
		Items:         make([]SearchItem, 0, len(resp.Items)),
		NextPageToken: resp.NextPageToken,
	}
	for _, it := range resp.Items {
		channelID := it.ID.ChannelID
		if channelID == "" {
			channelID = it.Snippet.ChannelID
		}
		page.Items = append(page.Items, SearchItem{
			Kind:         it.ID.Kind,
			VideoID:      it.ID.VideoID,
			ChannelID:    channelID,
			Title:        it.Snippet.Title,
			ChannelTitle: it.Snippet.ChannelTitle,
			PublishedAt:  it.Snippet.PublishedAt,
		})
	}
	return page, nil
}

// Channels looks up at most MaxPageSize channels in one call. Unknown ids are
// simply absent from the result.
func (c *Client) Channels(ctx context.Context, ids []string) ([]ChannelDetail, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	if len(ids) > MaxPageSize {
		return nil, fmt.Errorf("youtube: %d channel ids exceeds batch limit of %d", len(ids), MaxPageSize)
	}

	params := url.Values{}
	params.Set("part", channelParts)
	params.Set("id", strings.Join(ids, ","))
	params.Set("maxResults", strconv.Itoa(MaxPageSize))

	var resp channelsResponse
	if err := c.Fetch(ctx, "channels", params, DefaultTimeout, &resp); err != nil {
		return nil, err
	}

	out := make([]ChannelDetail, 0, len(resp.Items))
	for _, item := range resp.Items {
		out = append(out, item.detail())
	}
	return out, nil
}

// LatestUpload returns the publish time of the newest item in an uploads playlist.
func (c *Client) LatestUpload(ctx context.Context, playlistID string) (time.Time, error) {
	params := url.Values{}
	params.Set("part", "snippet,contentDetails")
	params.Set("playlistId", playlistID)
	params.Set("maxResults", "1")

	var resp playlistItemsResponse
	if err := c.Fetch(ctx, "playlistItems", params, LookupTimeout, &resp); err != nil {
		return time.Time{}, err
	}
	if len(resp.Items) == 0 {
		return time.Time{}, ErrEmptyPlaylist
	}

	item := resp.Items[0]
	raw := item.ContentDetails.VideoPublishedAt
	if raw == "" {
		raw = item.Snippet.PublishedAt
	}
	ts, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("youtube: parse publish time %q: %w", raw, err)
	}
	return ts.UTC(), nil
}

// MostPopular returns one page of the mostPopular video chart for a region.
func (c *Client) MostPopular(ctx context.Context, regionCode, pageToken string) (*PopularPage, error) {
	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("chart", "mostPopular")
	params.Set("regionCode", regionCode)
	params.Set("maxResults", strconv.Itoa(MaxPageSize))
	if pageToken != "" {
		params.Set("pageToken", pageToken)
	}

	var resp videosResponse
	if err := c.Fetch(ctx, "videos", params, DefaultTimeout, &resp); err != nil {
		return nil, err
	}

	page := &PopularPage{
		Items:         make([]PopularVideo, 0, len(resp.Items)),
		NextPageToken: resp.NextPageToken,
	}
	for _, it := range resp.Items {
		page.Items = append(page.Items, PopularVideo{VideoID: it.ID, ChannelID: it.Snippet.ChannelID})
	}
	return page, nil
}

// Regions lists the regions the API supports.
func (c *Client) Regions(ctx context.Context) ([]Region, error) {
	params := url.Values{}
	params.Set("part", "snippet")

	var resp regionsResponse
	if err := c.Fetch(ctx, "i18nRegions", params, DefaultTimeout, &resp); err != nil {
		return nil, err
	}

	regions := make([]Region, 0, len(resp.Items))
	for _, it := range resp.Items {
		regions = append(regions, Region{Code: it.Snippet.GL, Name: it.Snippet.Name})
	}
	return regions, nil
}

// Chunk splits ids into consecutive batches of at most size elements.
func Chunk(ids []string, size int) [][]string {
	if size <= 0 {
		size = MaxPageSize
	}
	var batches [][]string
	for start := 0; start < len(ids); start += size {
		end := min(start+size, len(ids))
		batches = append(batches, ids[start:end])
	}
	return batches
}
