package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/bobmcallan/fundmix/internal/models"
)

var (
	fundStyle   = lipgloss.NewStyle().Bold(true).Underline(true)
	titleStyle  = lipgloss.NewStyle().Bold(true).MarginTop(1)
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	mutedStyle  = lipgloss.NewStyle().Faint(true)
)

// swatch renders a two-cell block in the entry color.
func swatch(color string) string {
	return lipgloss.NewStyle().Background(lipgloss.Color(color)).Render("  ")
}

// renderTable renders one fund's charts as bordered terminal tables.
func renderTable(fund string, charts []models.Chart) string {
	var sb strings.Builder
	sb.WriteString(fundStyle.Render(fund))
	sb.WriteString("\n")

	if len(charts) == 0 {
		sb.WriteString(mutedStyle.Render("No breakdowns available."))
		sb.WriteString("\n")
		return sb.String()
	}

	for _, chart := range charts {
		sb.WriteString(titleStyle.Render(chart.Title))
		sb.WriteString("\n")

		rows := make([][]string, 0, len(chart.Entries))
		for _, e := range chart.Entries {
			rows = append(rows, []string{swatch(e.Color), e.Category, FormatPercent(e.Value)})
		}

		t := table.New().
			Border(lipgloss.RoundedBorder()).
			Headers("", "Category", "%").
			Rows(rows...).
			StyleFunc(func(row, col int) lipgloss.Style {
				if row == table.HeaderRow {
					return headerStyle
				}
				if col == 2 {
					return cellStyle.Align(lipgloss.Right)
				}
				return cellStyle
			})
		sb.WriteString(t.Render())
		sb.WriteString("\n")
	}

	return sb.String()
}

// renderMarkdown renders markdown for the terminal. style is a glamour
// standard style name such as "dark", "light" or "notty".
func renderMarkdown(md, style string, width int) (string, error) {
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(width)}
	if style == "" {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStandardStyle(style))
	}

	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return "", fmt.Errorf("failed to create markdown renderer: %w", err)
	}
	out, err := r.Render(md)
	if err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return out, nil
}
