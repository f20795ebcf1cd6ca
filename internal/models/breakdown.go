// Package models defines data structures for fundmix
package models

import (
	"time"
)

// Row is one data line of an allocation CSV, fields matched by header name.
type Row struct {
	Line      int    `json:"line"` // 1-based CSV record number, header is line 1
	Fund      string `json:"fund"`
	ChartType string `json:"chart_type"`
	Category  string `json:"category"`
	Value     string `json:"value"` // raw, unparsed; "" when absent
}

// Entry is a category/value pair within one breakdown.
// Value is a percentage already expressed in [0,100] units.
type Entry struct {
	Category string  `json:"category"`
	Value    float64 `json:"value"`
}

// Breakdown is the ordered entry list of one chart type within one fund.
// Order is first-seen row order and is the ordinal used for palette colors.
type Breakdown []Entry

// ChartEntry is an entry ready for presentation.
type ChartEntry struct {
	Category string  `json:"category"`
	Value    float64 `json:"value"`
	Color    string  `json:"color"`
	Ordinal  int     `json:"ordinal"` // position in the source Breakdown
}

// Chart is one chart type of a fund, entries sorted by value descending.
type Chart struct {
	ChartType string       `json:"chart_type"`
	Title     string       `json:"title"`
	Entries   []ChartEntry `json:"entries"`
}

// ChartTitle returns the display title for a chart type.
func ChartTitle(chartType string) string {
	return "Breakdown across " + chartType
}

// IngestionSummary describes a published (or attempted) ingestion.
type IngestionSummary struct {
	ID             string        `json:"id"`
	Source         string        `json:"source"`
	Rows           int           `json:"rows"`
	Entries        int           `json:"entries"`
	DroppedEmpty   int           `json:"dropped_empty"`
	DroppedInvalid int           `json:"dropped_invalid"`
	Funds          []string      `json:"funds"`
	IngestedAt     time.Time     `json:"ingested_at"`
	Duration       time.Duration `json:"duration_ns"`
}

// Dropped returns the number of rows that produced no entry.
func (s *IngestionSummary) Dropped() int {
	return s.DroppedEmpty + s.DroppedInvalid
}
