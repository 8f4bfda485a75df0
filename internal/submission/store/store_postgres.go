package store

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"formview/internal/submission/models"
	"formview/pkg/platform/sentinel"
	"formview/pkg/platform/tx"
)

// PostgresStore reads and writes the submissions table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Save(ctx context.Context, sub *models.Submission) error {
	if sub == nil || sub.AssetUID == "" {
		return fmt.Errorf("submission asset uid is required")
	}
	data, err := json.Marshal(sub.Data)
	if err != nil {
		return fmt.Errorf("marshal submission data: %w", err)
	}
	query := `
		INSERT INTO submissions (id, asset_uid, data)
		VALUES ($1, $2, $3)
		ON CONFLICT (asset_uid, id) DO UPDATE SET data = EXCLUDED.data
	`
	if _, err := tx.QuerierFrom(ctx, s.db).ExecContext(ctx, query, sub.ID, sub.AssetUID, data); err != nil {
		return fmt.Errorf("save submission: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, assetUID string, id int64) (*models.Submission, error) {
	var raw []byte
	err := tx.QuerierFrom(ctx, s.db).QueryRowContext(ctx,
		`SELECT data FROM submissions WHERE asset_uid = $1 AND id = $2`, assetUID, id,
	).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("submission %d of %s: %w", id, assetUID, sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find submission: %w", err)
	}
	data, err := decodeRecord(raw)
	if err != nil {
		return nil, err
	}
	return &models.Submission{ID: id, AssetUID: assetUID, Data: data}, nil
}

// FindMany loads every existing submission among ids in one query.
func (s *PostgresStore) FindMany(ctx context.Context, assetUID string, ids []int64) (map[int64]*models.Submission, error) {
	out := make(map[int64]*models.Submission, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := tx.QuerierFrom(ctx, s.db).QueryContext(ctx,
		`SELECT id, data FROM submissions WHERE asset_uid = $1 AND id = ANY($2)`,
		assetUID, pq.Array(ids),
	)
	if err != nil {
		return nil, fmt.Errorf("find submissions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id  int64
			raw []byte
		)
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, fmt.Errorf("scan submission: %w", err)
		}
		data, err := decodeRecord(raw)
		if err != nil {
			return nil, err
		}
		out[id] = &models.Submission{ID: id, AssetUID: assetUID, Data: data}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate submissions: %w", err)
	}
	return out, nil
}

// decodeRecord keeps numbers as json.Number so they render as submitted.
func decodeRecord(raw []byte) (models.Record, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var data models.Record
	if err := dec.Decode(&data); err != nil {
		return nil, fmt.Errorf("decode submission data: %w", err)
	}
	return data, nil
}
