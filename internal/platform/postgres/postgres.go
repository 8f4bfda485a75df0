package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// Schema creates the tables read by the asset and submission stores.
const Schema = `
CREATE TABLE IF NOT EXISTS assets (
	uid               TEXT PRIMARY KEY,
	name              TEXT NOT NULL DEFAULT '',
	version           TEXT NOT NULL DEFAULT '',
	content           JSONB NOT NULL,
	advanced_features JSONB NOT NULL DEFAULT '{}'::jsonb,
	updated_at        TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS submissions (
	id         BIGINT NOT NULL,
	asset_uid  TEXT NOT NULL REFERENCES assets(uid) ON DELETE CASCADE,
	data       JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (asset_uid, id)
);
`

// Open connects through the pgx database/sql driver and verifies the
// connection. Returns nil if url is empty.
func Open(ctx context.Context, url string) (*sql.DB, error) {
	if url == "" {
		return nil, nil
	}
	db, err := sql.Open("pgx", url)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}
	return db, nil
}

// Migrate applies Schema.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
