package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Kinds of stored search results.
const (
	KindSearch   = "search"
	KindTrending = "trending"
)

// RetentionDays bounds how long day-scoped results are kept.
const RetentionDays = 30

// StoredResult is one day-scoped result row. ChannelsData is the raw JSON array.
type StoredResult struct {
	Kind         string
	Query        string
	SearchDate   time.Time
	MaxResults   int
	ResultCount  int
	ChannelsData json.RawMessage
	CreatedAt    time.Time
}

type SearchResultRepo struct {
	pool *pgxpool.Pool
}

func NewSearchResultRepo(pool *pgxpool.Pool) *SearchResultRepo {
	return &SearchResultRepo{pool: pool}
}

// FindForDay returns the most recent row stored for (kind, query, maxResults)
// on day, or nil when there is none.
func (r *SearchResultRepo) FindForDay(ctx context.Context, kind, query string, maxResults int, day time.Time) (*StoredResult, error) {
	sql := `
		SELECT kind, search_query, search_date, max_results, result_count, channels_data, created_at
		FROM search_results
		WHERE kind = $1 AND search_query = $2 AND search_date = $3 AND max_results = $4
		ORDER BY created_at DESC
		LIMIT 1`

	var res StoredResult
	var data []byte
	err := r.pool.QueryRow(ctx, sql, kind, query, dateOnly(day), maxResults).Scan(
		&res.Kind, &res.Query, &res.SearchDate, &res.MaxResults, &res.ResultCount, &data, &res.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find %s result: %w", kind, err)
	}
	res.ChannelsData = data
	return &res, nil
}

// Save stores channels for day and prunes rows older than RetentionDays, in a
// single transaction.
func (r *SearchResultRepo) Save(ctx context.Context, kind, query string, maxResults int, day time.Time, channels any, count int) error {
	data, err := json.Marshal(channels)
	if err != nil {
		return fmt.Errorf("marshal %s channels: %w", kind, err)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	cutoff := dateOnly(day).AddDate(0, 0, -RetentionDays)
	if _, err := tx.Exec(ctx, `DELETE FROM search_results WHERE search_date < $1`, cutoff); err != nil {
		return fmt.Errorf("prune search results: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO search_results (kind, search_query, search_date, max_results, result_count, channels_data)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		kind, query, dateOnly(day), maxResults, count, data)
	if err != nil {
		return fmt.Errorf("insert %s result: %w", kind, err)
	}

	return tx.Commit(ctx)
}

// dateOnly drops the clock part of t, keeping its calendar date.
func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
