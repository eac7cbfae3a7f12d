package youtube

import (
	"strconv"
	"strings"
)

// SearchType selects what the search endpoint returns.
type SearchType string

const (
	TypeVideo   SearchType = "video"
	TypeChannel SearchType = "channel"
)

// MaxPageSize is the largest maxResults the search and channels endpoints accept.
const MaxPageSize = 50

// SearchRequest is one paged call to the search endpoint.
type SearchRequest struct {
	Query      string
	Type       SearchType
	MaxResults int
	PageToken  string
	Order      string
}

// SearchItem is a single search hit. ChannelID is the owning channel for video
// hits and the channel itself for channel hits.
type SearchItem struct {
	Kind         string
	VideoID      string
	ChannelID    string
	Title        string
	ChannelTitle string
	PublishedAt  string
}

// SearchPage is one page of search results.
type SearchPage struct {
	Items         []SearchItem
	NextPageToken string
}

// ChannelDetail is the upstream metadata for a single channel. Counts are never
// negative; hidden or malformed statistics read as zero.
type ChannelDetail struct {
	ID                string
	Title             string
	Description       string
	ThumbnailURL      string
	SubscriberCount   int64
	VideoCount        int64
	ViewCount         int64
	CustomURL         string
	Country           string
	PublishedAt       string
	UploadsPlaylistID string
	TopicCategories   []string
}

// PopularVideo is one entry of the mostPopular chart.
type PopularVideo struct {
	VideoID   string
	ChannelID string
}

// PopularPage is one page of the mostPopular chart.
type PopularPage struct {
	Items         []PopularVideo
	NextPageToken string
}

// Region is an i18n region supported by the API.
type Region struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// --- wire types ---

type thumbnail struct {
	URL string `json:"url"`
}

type searchResponse struct {
	NextPageToken string `json:"nextPageToken"`
	Items         []struct {
		ID struct {
			Kind      string `json:"kind"`
			VideoID   string `json:"videoId"`
			ChannelID string `json:"channelId"`
		} `json:"id"`
		Snippet struct {
			ChannelID    string `json:"channelId"`
			Title        string `json:"title"`
			ChannelTitle string `json:"channelTitle"`
			PublishedAt  string `json:"publishedAt"`
		} `json:"snippet"`
	} `json:"items"`
}

type channelsResponse struct {
	Items []channelResource `json:"items"`
}

type channelResource struct {
	ID      string `json:"id"`
	Snippet struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		CustomURL   string `json:"customUrl"`
		Country     string `json:"country"`
		PublishedAt string `json:"publishedAt"`
		Thumbnails  struct {
			Default thumbnail `json:"default"`
		} `json:"thumbnails"`
	} `json:"snippet"`
	Statistics struct {
		SubscriberCount string `json:"subscriberCount"`
		VideoCount      string `json:"videoCount"`
		ViewCount       string `json:"viewCount"`
	} `json:"statistics"`
	ContentDetails struct {
		RelatedPlaylists struct {
			Uploads string `json:"uploads"`
		} `json:"relatedPlaylists"`
	} `json:"contentDetails"`
	TopicDetails struct {
		TopicCategories []string `json:"topicCategories"`
	} `json:"topicDetails"`
}

type playlistItemsResponse struct {
	Items []struct {
		Snippet struct {
			PublishedAt string `json:"publishedAt"`
		} `json:"snippet"`
		ContentDetails struct {
			VideoPublishedAt string `json:"videoPublishedAt"`
		} `json:"contentDetails"`
	} `json:"items"`
}

type videosResponse struct {
	NextPageToken string `json:"nextPageToken"`
	Items         []struct {
		ID      string `json:"id"`
		Snippet struct {
			ChannelID string `json:"channelId"`
		} `json:"snippet"`
	} `json:"items"`
}

type regionsResponse struct {
	Items []struct {
		Snippet struct {
			GL   string `json:"gl"`
			Name string `json:"name"`
		} `json:"snippet"`
	} `json:"items"`
}

func (r channelResource) detail() ChannelDetail {
	return ChannelDetail{
		ID:                r.ID,
		Title:             r.Snippet.Title,
		Description:       r.Snippet.Description,
		ThumbnailURL:      r.Snippet.Thumbnails.Default.URL,
		SubscriberCount:   parseCount(r.Statistics.SubscriberCount),
		VideoCount:        parseCount(r.Statistics.VideoCount),
		ViewCount:         parseCount(r.Statistics.ViewCount),
		CustomURL:         r.Snippet.CustomURL,
		Country:           r.Snippet.Country,
		PublishedAt:       r.Snippet.PublishedAt,
		UploadsPlaylistID: r.ContentDetails.RelatedPlaylists.Uploads,
		TopicCategories:   r.TopicDetails.TopicCategories,
	}
}

// parseCount reads the API's decimal-string counters, clamping to >= 0.
func parseCount(s string) int64 {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
