package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"formview/internal/asset/models"
	"formview/pkg/platform/sentinel"
	"formview/pkg/platform/tx"
)

// PostgresStore reads and writes the assets table. Content and advanced
// features are stored as jsonb.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Save(ctx context.Context, asset *models.Asset) error {
	if asset == nil || asset.UID == "" {
		return fmt.Errorf("asset uid is required")
	}
	content, err := json.Marshal(asset.Content)
	if err != nil {
		return fmt.Errorf("marshal asset content: %w", err)
	}
	features, err := json.Marshal(asset.AdvancedFeatures)
	if err != nil {
		return fmt.Errorf("marshal advanced features: %w", err)
	}
	query := `
		INSERT INTO assets (uid, name, version, content, advanced_features, updated_at)
		VALUES ($1, $2, $3, $4, $5, now())
		ON CONFLICT (uid) DO UPDATE SET
			name = EXCLUDED.name,
			version = EXCLUDED.version,
			content = EXCLUDED.content,
			advanced_features = EXCLUDED.advanced_features,
			updated_at = now()
	`
	if _, err := tx.QuerierFrom(ctx, s.db).ExecContext(ctx, query, asset.UID, asset.Name, asset.Version, content, features); err != nil {
		return fmt.Errorf("save asset: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByUID(ctx context.Context, uid string) (*models.Asset, error) {
	query := `SELECT uid, name, version, content, advanced_features, updated_at FROM assets WHERE uid = $1`
	var (
		asset    models.Asset
		content  []byte
		features []byte
	)
	err := tx.QuerierFrom(ctx, s.db).QueryRowContext(ctx, query, uid).Scan(
		&asset.UID, &asset.Name, &asset.Version, &content, &features, &asset.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("asset %s: %w", uid, sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find asset: %w", err)
	}
	if err := json.Unmarshal(content, &asset.Content); err != nil {
		return nil, fmt.Errorf("decode asset content: %w", err)
	}
	if err := json.Unmarshal(features, &asset.AdvancedFeatures); err != nil {
		return nil, fmt.Errorf("decode advanced features: %w", err)
	}
	return &asset, nil
}
