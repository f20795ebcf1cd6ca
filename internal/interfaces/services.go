// Package interfaces defines service contracts for fundmix
package interfaces

import (
	"context"
	"io"
	"time"

	"github.com/bobmcallan/fundmix/internal/models"
)

// BreakdownService owns the current portfolio index and fund selection.
type BreakdownService interface {
	// Ingest parses CSV from r and, unless a later ingestion has started
	// meanwhile, replaces the current index with the result.
	Ingest(ctx context.Context, source string, r io.Reader) (*models.IngestionSummary, error)

	// ListFunds returns funds of the current index in first-appearance order.
	ListFunds(ctx context.Context) []string

	// SelectFund selects a fund; unknown funds are accepted and show nothing.
	SelectFund(ctx context.Context, fund string)

	// SelectedFund returns the selected fund, or "".
	SelectedFund(ctx context.Context) string

	// GetBreakdowns returns chart type -> sorted, colored entries for fund.
	// The map is empty for an unknown fund or an empty index.
	GetBreakdowns(ctx context.Context, fund string) map[string][]models.ChartEntry

	// GetCharts returns the same data as GetBreakdowns in chart type order.
	GetCharts(ctx context.Context, fund string) []models.Chart

	// GetSelectedCharts returns the selected fund with its charts, taken
	// from a single index so an upload cannot split the pair.
	GetSelectedCharts(ctx context.Context) (string, []models.Chart)

	// LastIngestion returns the summary of the current index, or nil.
	LastIngestion(ctx context.Context) *models.IngestionSummary
}

// MetricsRecorder receives ingestion measurements.
type MetricsRecorder interface {
	IngestionCompleted(summary *models.IngestionSummary)
	IngestionFailed(result string, elapsed time.Duration)
}
