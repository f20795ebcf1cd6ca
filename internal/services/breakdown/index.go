package breakdown

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/bobmcallan/fundmix/internal/models"
)

// IndexStats counts what BuildIndex did with its rows.
type IndexStats struct {
	Rows           int
	Entries        int
	DroppedEmpty   int
	DroppedInvalid int
}

type valueKind int

const (
	valueOK valueKind = iota
	valueEmpty
	valueInvalid
)

// parseValue classifies a raw Value field. Empty and non-numeric values are
// not errors; they mark rows that carry no entry. Values outside the float64
// range count as non-numeric.
func parseValue(raw string) (float64, valueKind) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, valueEmpty
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return 0, valueInvalid
	}
	v := d.InexactFloat64()
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, valueInvalid
	}
	return v, valueOK
}

// BuildIndex groups rows by fund then chart type. Fund and chart type buckets
// are created on first reference, so every fund in the input is listed even
// if none of its rows carries a value. Rows with an empty or unparseable
// Value are dropped without error.
func BuildIndex(rows []models.Row) (*models.PortfolioIndex, IndexStats) {
	b := models.NewIndexBuilder()
	stats := IndexStats{Rows: len(rows)}

	for _, row := range rows {
		b.Touch(row.Fund, row.ChartType)

		value, kind := parseValue(row.Value)
		switch kind {
		case valueEmpty:
			stats.DroppedEmpty++
			continue
		case valueInvalid:
			stats.DroppedInvalid++
			continue
		}

		b.Append(row.Fund, row.ChartType, models.Entry{
			Category: row.Category,
			Value:    value,
		})
		stats.Entries++
	}

	return b.Build(), stats
}
