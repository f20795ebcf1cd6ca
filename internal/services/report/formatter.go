package report

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/bobmcallan/fundmix/internal/models"
)

// FormatPercent prints a percentage value with two decimals and a % suffix.
func FormatPercent(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2) + "%"
}

// formatMarkdown generates the legend markdown for one fund: a heading per
// chart type followed by a swatch/category/percent table.
func formatMarkdown(fund string, charts []models.Chart) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# %s\n\n", escapeMarkdown(fund)))

	if len(charts) == 0 {
		sb.WriteString("_No breakdowns available._\n")
		return sb.String()
	}

	for _, chart := range charts {
		sb.WriteString(fmt.Sprintf("## %s\n\n", escapeMarkdown(chart.Title)))
		if len(chart.Entries) == 0 {
			sb.WriteString("_No entries._\n\n")
			continue
		}
		sb.WriteString("| | Category | % |\n")
		sb.WriteString("|---|---|---:|\n")
		for _, e := range chart.Entries {
			sb.WriteString(fmt.Sprintf("| `%s` | %s | %s |\n",
				e.Color, escapeCell(e.Category), FormatPercent(e.Value)))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// escapeCell keeps a value inside a single table cell.
func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	s = strings.ReplaceAll(s, "\r\n", " ")
	return strings.ReplaceAll(s, "\n", " ")
}

func escapeMarkdown(s string) string {
	s = strings.ReplaceAll(s, "\r\n", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.TrimSpace(s)
}
