package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yt-analytics/yt-analytics-go/internal/model"
)

type TopChannelRepo struct {
	pool *pgxpool.Pool
}

func NewTopChannelRepo(pool *pgxpool.Pool) *TopChannelRepo {
	return &TopChannelRepo{pool: pool}
}

// ReplaceCountry swaps a country's rows for channels in one transaction. Ranks
// follow slice order starting at 1. A channel already stored under another
// country moves to this one.
func (r *TopChannelRepo) ReplaceCountry(ctx context.Context, countryCode string, channels []model.TopChannel) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM top_channels WHERE country_code = $1`, countryCode); err != nil {
		return fmt.Errorf("clear %s top channels: %w", countryCode, err)
	}

	batch := &pgx.Batch{}
	for i, ch := range channels {
		batch.Queue(`
			INSERT INTO top_channels (country_code, channel_id, title, description, thumbnail_url,
				subscriber_count, video_count, view_count, custom_url, published_at, rank)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			ON CONFLICT (channel_id) DO UPDATE SET
				country_code = EXCLUDED.country_code,
				title = EXCLUDED.title,
				description = EXCLUDED.description,
				thumbnail_url = EXCLUDED.thumbnail_url,
				subscriber_count = EXCLUDED.subscriber_count,
				video_count = EXCLUDED.video_count,
				view_count = EXCLUDED.view_count,
				custom_url = EXCLUDED.custom_url,
				published_at = EXCLUDED.published_at,
				rank = EXCLUDED.rank,
				updated_at = NOW(),
				created_at = NOW()`,
			countryCode, ch.ChannelID, ch.Title, ch.Description, ch.ThumbnailURL,
			ch.SubscriberCount, ch.VideoCount, ch.ViewCount, ch.CustomURL, ch.PublishedAt, i+1)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert %s top channels: %w", countryCode, err)
	}

	return tx.Commit(ctx)
}

// ListSince returns rows created at or after since, ordered by country then rank.
func (r *TopChannelRepo) ListSince(ctx context.Context, since time.Time) ([]model.TopChannel, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT country_code, channel_id, title, COALESCE(description, ''), COALESCE(thumbnail_url, ''),
		       subscriber_count, video_count, view_count, COALESCE(custom_url, ''),
		       COALESCE(published_at, ''), rank, updated_at
		FROM top_channels
		WHERE created_at >= $1
		ORDER BY country_code, rank`, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.TopChannel
	for rows.Next() {
		var ch model.TopChannel
		var updated time.Time
		if err := rows.Scan(
			&ch.CountryCode, &ch.ChannelID, &ch.Title, &ch.Description, &ch.ThumbnailURL,
			&ch.SubscriberCount, &ch.VideoCount, &ch.ViewCount, &ch.CustomURL,
			&ch.PublishedAt, &ch.Rank, &updated,
		); err != nil {
			return nil, err
		}
		ch.UpdatedAt = &updated
		out = append(out, ch)
	}
	return out, rows.Err()
}

// CountSince reports how many rows were created at or after since.
func (r *TopChannelRepo) CountSince(ctx context.Context, since time.Time) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM top_channels WHERE created_at >= $1`, since).Scan(&n)
	return n, err
}
