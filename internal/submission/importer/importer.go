// Package importer loads an asset together with its submissions in one
// unit of work. The server uses it to seed stores from a fixture file.
package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	assetmodels "formview/internal/asset/models"
	"formview/internal/submission/models"
	dErrors "formview/pkg/domain-errors"
	"formview/pkg/platform/tx"
)

// Bundle is the fixture format: one asset and its submissions.
type Bundle struct {
	Asset       assetmodels.Asset   `json:"asset"`
	Submissions []models.Submission `json:"submissions"`
}

type AssetSaver interface {
	Save(ctx context.Context, asset *assetmodels.Asset) error
}

type SubmissionSaver interface {
	Save(ctx context.Context, sub *models.Submission) error
}

type Importer struct {
	assets      AssetSaver
	submissions SubmissionSaver
	runner      tx.Runner
	logger      *slog.Logger
}

// New builds an Importer. A nil runner saves without a transaction.
func New(assets AssetSaver, submissions SubmissionSaver, runner tx.Runner, logger *slog.Logger) *Importer {
	if runner == nil {
		runner = tx.Direct{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Importer{assets: assets, submissions: submissions, runner: runner, logger: logger}
}

// Import saves every bundle atomically where the runner supports it.
// Submissions inherit the bundle's asset UID.
func (i *Importer) Import(ctx context.Context, bundles ...Bundle) error {
	for _, b := range bundles {
		if b.Asset.UID == "" {
			return dErrors.New(dErrors.CodeValidation, "asset uid is required")
		}
	}
	return i.runner.RunInTx(ctx, func(ctx context.Context) error {
		for _, b := range bundles {
			asset := b.Asset
			if err := i.assets.Save(ctx, &asset); err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save asset")
			}
			for _, sub := range b.Submissions {
				sub.AssetUID = asset.UID
				if err := i.submissions.Save(ctx, &sub); err != nil {
					return dErrors.Wrap(err, dErrors.CodeInternal, fmt.Sprintf("failed to save submission %d", sub.ID))
				}
			}
			i.logger.InfoContext(ctx, "imported asset",
				"asset_uid", asset.UID,
				"submissions", len(b.Submissions),
			)
		}
		return nil
	})
}

// LoadFile reads a JSON array of bundles. Numbers are kept as json.Number
// so they display exactly as written.
func LoadFile(path string) ([]Bundle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()

	dec := json.NewDecoder(f)
	dec.UseNumber()
	var bundles []Bundle
	if err := dec.Decode(&bundles); err != nil {
		return nil, fmt.Errorf("decode seed file: %w", err)
	}
	return bundles, nil
}
