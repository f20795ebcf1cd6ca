// Package report renders fund breakdowns as terminal tables, markdown or JSON
package report

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/bobmcallan/fundmix/internal/common"
	"github.com/bobmcallan/fundmix/internal/interfaces"
	"github.com/bobmcallan/fundmix/internal/models"
)

// Output formats.
const (
	FormatTable    = "table"
	FormatMarkdown = "markdown"
	FormatJSON     = "json"
)

// DefaultWidth is the word wrap width for rendered markdown.
const DefaultWidth = 80

// Options controls report rendering.
type Options struct {
	Format string // table, markdown or json; empty means table
	Raw    bool   // markdown only: emit source instead of terminal rendering
	Style  string // glamour style name; empty picks one from the terminal
	Width  int
}

// Report is a rendered breakdown report.
type Report struct {
	Fund        string         `json:"fund"`
	Charts      []models.Chart `json:"charts"`
	Format      string         `json:"format"`
	ContentType string         `json:"content_type"`
	Body        string         `json:"-"`
}

// Service renders reports from the current breakdown state.
type Service struct {
	breakdowns interfaces.BreakdownService
	logger     *common.Logger
}

// NewService creates a new report service
func NewService(breakdowns interfaces.BreakdownService, logger *common.Logger) *Service {
	return &Service{
		breakdowns: breakdowns,
		logger:     logger,
	}
}

// ParseFormat normalizes a format name, rejecting unknown ones.
func ParseFormat(format string) (string, error) {
	switch f := strings.ToLower(strings.TrimSpace(format)); f {
	case "", FormatTable:
		return FormatTable, nil
	case FormatMarkdown, "md":
		return FormatMarkdown, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown format %q (want table, markdown or json)", format)
	}
}

// GenerateReport renders the charts of fund. An empty fund means the
// selected fund. Unknown funds render an empty report.
func (s *Service) GenerateReport(ctx context.Context, fund string, options Options) (*Report, error) {
	format, err := ParseFormat(options.Format)
	if err != nil {
		return nil, err
	}
	var charts []models.Chart
	if fund == "" {
		fund, charts = s.breakdowns.GetSelectedCharts(ctx)
	} else {
		charts = s.breakdowns.GetCharts(ctx, fund)
	}
	if charts == nil {
		charts = []models.Chart{}
	}

	report := &Report{Fund: fund, Charts: charts, Format: format}

	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(struct {
			Fund   string         `json:"fund"`
			Charts []models.Chart `json:"charts"`
		}{fund, charts}, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to encode report: %w", err)
		}
		report.Body = string(data) + "\n"
		report.ContentType = "application/json"

	case FormatMarkdown:
		md := formatMarkdown(fund, charts)
		report.ContentType = "text/markdown; charset=utf-8"
		if options.Raw {
			report.Body = md
			break
		}
		width := options.Width
		if width <= 0 {
			width = DefaultWidth
		}
		rendered, err := renderMarkdown(md, options.Style, width)
		if err != nil {
			return nil, err
		}
		report.Body = rendered
		report.ContentType = "text/plain; charset=utf-8"

	default:
		report.Body = renderTable(fund, charts)
		report.ContentType = "text/plain; charset=utf-8"
	}

	s.logger.Debug().
		Str("fund", fund).
		Str("format", format).
		Int("charts", len(charts)).
		Msg("Report generated")

	return report, nil
}
