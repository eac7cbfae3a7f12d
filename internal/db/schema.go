package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schema is applied at startup. Statements are idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS search_results (
		id            BIGSERIAL PRIMARY KEY,
		kind          VARCHAR(16)  NOT NULL,
		search_query  VARCHAR(255) NOT NULL,
		search_date   DATE         NOT NULL,
		max_results   INTEGER      NOT NULL,
		result_count  INTEGER      NOT NULL,
		channels_data JSONB        NOT NULL,
		created_at    TIMESTAMPTZ  NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_search_results_lookup
		ON search_results (kind, search_query, search_date, max_results)`,
	`CREATE INDEX IF NOT EXISTS idx_search_results_date ON search_results (search_date)`,

	`CREATE TABLE IF NOT EXISTS top_channels (
		id               BIGSERIAL PRIMARY KEY,
		country_code     VARCHAR(2)   NOT NULL,
		channel_id       VARCHAR(255) NOT NULL UNIQUE,
		title            VARCHAR(255) NOT NULL,
		description      TEXT,
		thumbnail_url    VARCHAR(500),
		subscriber_count BIGINT       NOT NULL,
		video_count      BIGINT       NOT NULL,
		view_count       BIGINT       NOT NULL,
		custom_url       VARCHAR(255),
		published_at     VARCHAR(50),
		rank             INTEGER      NOT NULL,
		updated_at       TIMESTAMPTZ  NOT NULL DEFAULT NOW(),
		created_at       TIMESTAMPTZ  NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_top_channels_country ON top_channels (country_code, rank)`,
	`CREATE INDEX IF NOT EXISTS idx_top_channels_created ON top_channels (created_at)`,
}

// EnsureSchema creates the tables the service needs if they are missing.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	for i, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema statement %d: %w", i+1, err)
		}
	}
	return nil
}
