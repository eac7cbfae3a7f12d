package model

import "time"

// RankedChannel is one entry of a channel search result. Order in the enclosing
// slice is significant: descending subscriber count.
type RankedChannel struct {
	ChannelID        string     `json:"channelId"`
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	ThumbnailURL     string     `json:"thumbnailUrl"`
	SubscriberCount  int64      `json:"subscriberCount"`
	VideoCount       int64      `json:"videoCount"`
	ViewCount        int64      `json:"viewCount"`
	CustomURL        string     `json:"customUrl"`
	Country          string     `json:"country"`
	PublishedAt      string     `json:"publishedAt"`
	LatestUploadDate *time.Time `json:"latestUploadDate"`
	Topics           []string   `json:"topics"`
}

// SearchChannelsResponse is the API response for GET /api/search/channels.
type SearchChannelsResponse struct {
	Query         string          `json:"query"`
	ResultCount   int             `json:"result_count"`
	Channels      []RankedChannel `json:"channels"`
	NextPageToken *string         `json:"nextPageToken"`
}

// SearchSummaryResponse is the API response for GET /api/search/summary.
type SearchSummaryResponse struct {
	Query       string `json:"query"`
	ResultCount int    `json:"result_count"`
}

// TrendingChannel is a channel seen on a region's mostPopular chart.
type TrendingChannel struct {
	ChannelID        string `json:"channelId"`
	Title            string `json:"title"`
	Description      string `json:"description"`
	ThumbnailURL     string `json:"thumbnailUrl"`
	SubscriberCount  int64  `json:"subscriberCount"`
	VideoCount       int64  `json:"videoCount"`
	ViewCount        int64  `json:"viewCount"`
	CustomURL        string `json:"customUrl"`
	Country          string `json:"country"`
	PublishedAt      string `json:"publishedAt"`
	VideoAppearances int    `json:"videoAppearances"`
}

// TrendingResponse is the API response for GET /api/trending.
type TrendingResponse struct {
	RegionCode  string            `json:"regionCode"`
	ResultCount int               `json:"result_count"`
	Channels    []TrendingChannel `json:"channels"`
	Error       string            `json:"error,omitempty"`
}

// TopChannel is a stored top-channel row for one country.
type TopChannel struct {
	Rank            int        `json:"rank"`
	CountryCode     string     `json:"-"`
	ChannelID       string     `json:"channelId"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	ThumbnailURL    string     `json:"thumbnailUrl"`
	SubscriberCount int64      `json:"subscriberCount"`
	VideoCount      int64      `json:"videoCount"`
	ViewCount       int64      `json:"viewCount"`
	CustomURL       string     `json:"customUrl"`
	PublishedAt     string     `json:"publishedAt"`
	UpdatedAt       *time.Time `json:"updatedAt"`
}

// TopChannelsResponse groups top channels by country code.
type TopChannelsResponse map[string][]TopChannel
