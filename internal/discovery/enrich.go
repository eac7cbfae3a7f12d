package discovery

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/yt-analytics/yt-analytics-go/internal/metrics"
	"github.com/yt-analytics/yt-analytics-go/internal/youtube"
)

// UploadLookup fetches the newest upload time of an uploads playlist.
type UploadLookup interface {
	LatestUpload(ctx context.Context, playlistID string) (time.Time, error)
}

// Enrich looks up the latest upload of every channel concurrently. Each channel
// gets an entry; a failed or empty lookup, or a channel without an uploads
// playlist, maps to nil. No lookup affects its siblings.
func Enrich(ctx context.Context, lookup UploadLookup, channels []youtube.ChannelDetail, log zerolog.Logger) map[string]*time.Time {
	slots := make([]*time.Time, len(channels))

	var g errgroup.Group
	for i, ch := range channels {
		if ch.UploadsPlaylistID == "" {
			continue
		}
		g.Go(func() error {
			ts, err := lookup.LatestUpload(ctx, ch.UploadsPlaylistID)
			if err != nil {
				metrics.EnrichmentFailures.Inc()
				log.Debug().Err(err).Str("channel_id", ch.ID).Msg("latest upload unavailable")
				return nil
			}
			slots[i] = &ts
			return nil
		})
	}
	_ = g.Wait()

	out := make(map[string]*time.Time, len(channels))
	for i, ch := range channels {
		out[ch.ID] = slots[i]
	}
	return out
}
