package breakdown

import (
	"sort"

	"github.com/bobmcallan/fundmix/internal/models"
)

// SortedView orders a breakdown by value descending, ties keeping insertion
// order. Colors come from each entry's position in b, not its sorted rank,
// so palette colors follow the category across re-sorts.
func SortedView(chartType string, b models.Breakdown, resolver *ColorResolver) []models.ChartEntry {
	out := make([]models.ChartEntry, len(b))
	for i, e := range b {
		out[i] = models.ChartEntry{
			Category: e.Category,
			Value:    e.Value,
			Color:    resolver.Resolve(chartType, e.Category, i),
			Ordinal:  i,
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Value > out[j].Value
	})
	return out
}

// Charts builds the sorted views of every chart type of fund, in chart type order.
// An unknown fund yields no charts.
func Charts(index *models.PortfolioIndex, fund string, resolver *ColorResolver) []models.Chart {
	chartTypes := index.ChartTypes(fund)
	charts := make([]models.Chart, 0, len(chartTypes))
	for _, chartType := range chartTypes {
		b, _ := index.Breakdown(fund, chartType)
		charts = append(charts, models.Chart{
			ChartType: chartType,
			Title:     models.ChartTitle(chartType),
			Entries:   SortedView(chartType, b, resolver),
		})
	}
	return charts
}

// BreakdownMap is the map form of Charts: chart type -> sorted entries.
func BreakdownMap(index *models.PortfolioIndex, fund string, resolver *ColorResolver) map[string][]models.ChartEntry {
	return ChartMap(Charts(index, fund, resolver))
}

// ChartMap keys already built charts by chart type. The entry slices are
// shared with charts.
func ChartMap(charts []models.Chart) map[string][]models.ChartEntry {
	out := make(map[string][]models.ChartEntry, len(charts))
	for _, c := range charts {
		out[c.ChartType] = c.Entries
	}
	return out
}
