package discovery

import (
	"context"
	"fmt"

	"github.com/yt-analytics/yt-analytics-go/internal/youtube"
)

// Searcher is the paged search call the collector drives.
type Searcher interface {
	SearchPage(ctx context.Context, req youtube.SearchRequest) (*youtube.SearchPage, error)
}

// CollectRequest describes one paginated walk of the search endpoint.
type CollectRequest struct {
	Query      string
	Mode       youtube.SearchType
	PageBudget int
	SeedToken  string
	Order      string
}

// Collect issues successive search calls, feeding each continuation token into
// the next request. It stops after PageBudget pages, on a page without a
// continuation token, or on an empty page. The returned token is the one carried
// by the last issued page, so callers can resume where the budget ran out.
func Collect(ctx context.Context, s Searcher, req CollectRequest) ([]youtube.SearchItem, string, error) {
	var (
		items []youtube.SearchItem
		token = req.SeedToken
	)

	for page := 0; page < req.PageBudget; page++ {
		resp, err := s.SearchPage(ctx, youtube.SearchRequest{
			Query:      req.Query,
			Type:       req.Mode,
			MaxResults: youtube.MaxPageSize,
			PageToken:  token,
			Order:      req.Order,
		})
		if err != nil {
			return nil, "", fmt.Errorf("collect %s page %d: %w", req.Mode, page+1, err)
		}

		token = resp.NextPageToken
		if len(resp.Items) == 0 {
			break
		}
		items = append(items, resp.Items...)
		if token == "" {
			break
		}
	}

	return items, token, nil
}
