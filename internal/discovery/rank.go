package discovery

import (
	"sort"
	"time"

	"github.com/yt-analytics/yt-analytics-go/internal/model"
	"github.com/yt-analytics/yt-analytics-go/internal/youtube"
)

// Truncate keeps the first limit survivors of the relevance ordering.
func Truncate(scored []Scored, limit int) []Scored {
	if limit < 0 {
		limit = 0
	}
	if len(scored) > limit {
		return scored[:limit]
	}
	return scored
}

// Rank builds the final result sequence for the given survivors and orders it by
// descending subscriber count. Equal counts keep the relevance ordering.
func Rank(scored []Scored, details map[string]youtube.ChannelDetail, latest map[string]*time.Time) []model.RankedChannel {
	out := make([]model.RankedChannel, 0, len(scored))
	seen := make(map[string]struct{}, len(scored))
	for _, s := range scored {
		if _, dup := seen[s.ChannelID]; dup {
			continue
		}
		d, ok := details[s.ChannelID]
		if !ok {
			continue
		}
		seen[s.ChannelID] = struct{}{}

		out = append(out, model.RankedChannel{
			ChannelID:        d.ID,
			Title:            d.Title,
			Description:      d.Description,
			ThumbnailURL:     d.ThumbnailURL,
			SubscriberCount:  max(d.SubscriberCount, 0),
			VideoCount:       max(d.VideoCount, 0),
			ViewCount:        max(d.ViewCount, 0),
			CustomURL:        d.CustomURL,
			Country:          d.Country,
			PublishedAt:      d.PublishedAt,
			LatestUploadDate: latest[s.ChannelID],
			Topics:           TopicLabels(d.TopicCategories),
		})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].SubscriberCount > out[j].SubscriberCount })
	return out
}
