package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bobmcallan/fundmix/internal/models"
)

// IngestFile ingests a CSV file through the breakdown service.
func (a *App) IngestFile(ctx context.Context, filePath string) (*models.IngestionSummary, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", filePath, err)
	}
	defer f.Close()

	summary, err := a.BreakdownService.Ingest(ctx, filepath.Base(filePath), f)
	if err != nil {
		return nil, fmt.Errorf("failed to ingest %s: %w", filePath, err)
	}
	return summary, nil
}

// SeedFromConfig ingests the configured seed file, if any.
// A failing seed is logged and leaves the index empty.
func (a *App) SeedFromConfig(ctx context.Context) {
	path := a.Config.Ingest.SeedFile
	if path == "" {
		return
	}
	summary, err := a.IngestFile(ctx, path)
	if err != nil {
		a.Logger.Warn().Err(err).Str("path", path).Msg("Seed ingestion failed")
		return
	}
	a.Logger.Info().
		Str("path", path).
		Str("ingestion_id", summary.ID).
		Int("funds", len(summary.Funds)).
		Msg("Seed file ingested")
}
