package models

// PortfolioIndex maps fund -> chart type -> Breakdown.
// Funds and chart types iterate in first-appearance order. An index is never
// mutated once built; a new upload produces a new index.
type PortfolioIndex struct {
	funds  []string
	byFund map[string]*fundBreakdowns
}

type fundBreakdowns struct {
	chartTypes []string
	byType     map[string]Breakdown
}

// EmptyIndex returns an index with no funds.
func EmptyIndex() *PortfolioIndex {
	return &PortfolioIndex{byFund: map[string]*fundBreakdowns{}}
}

// Funds returns fund identifiers in first-appearance order.
func (p *PortfolioIndex) Funds() []string {
	if p == nil {
		return []string{}
	}
	return append([]string{}, p.funds...)
}

// HasFund reports whether fund is present in the index.
func (p *PortfolioIndex) HasFund(fund string) bool {
	if p == nil {
		return false
	}
	_, ok := p.byFund[fund]
	return ok
}

// ChartTypes returns the chart types of fund in first-appearance order,
// or nil for an unknown fund.
func (p *PortfolioIndex) ChartTypes(fund string) []string {
	if p == nil {
		return nil
	}
	fb, ok := p.byFund[fund]
	if !ok {
		return nil
	}
	return append([]string{}, fb.chartTypes...)
}

// Breakdown returns a copy of the breakdown for (fund, chartType).
func (p *PortfolioIndex) Breakdown(fund, chartType string) (Breakdown, bool) {
	if p == nil {
		return nil, false
	}
	fb, ok := p.byFund[fund]
	if !ok {
		return nil, false
	}
	b, ok := fb.byType[chartType]
	if !ok {
		return nil, false
	}
	return append(Breakdown{}, b...), true
}

// Len returns the number of funds.
func (p *PortfolioIndex) Len() int {
	if p == nil {
		return 0
	}
	return len(p.funds)
}

// IndexBuilder accumulates breakdowns and produces a PortfolioIndex.
// The builder must not be used after Build.
type IndexBuilder struct {
	idx *PortfolioIndex
}

// NewIndexBuilder returns an empty builder.
func NewIndexBuilder() *IndexBuilder {
	return &IndexBuilder{idx: EmptyIndex()}
}

// Touch creates the fund and chart type buckets if they do not exist yet.
func (b *IndexBuilder) Touch(fund, chartType string) {
	fb, ok := b.idx.byFund[fund]
	if !ok {
		fb = &fundBreakdowns{byType: map[string]Breakdown{}}
		b.idx.byFund[fund] = fb
		b.idx.funds = append(b.idx.funds, fund)
	}
	if _, ok := fb.byType[chartType]; !ok {
		fb.byType[chartType] = Breakdown{}
		fb.chartTypes = append(fb.chartTypes, chartType)
	}
}

// Append adds an entry to the (fund, chartType) breakdown, creating buckets on first reference.
// Duplicate categories are kept as separate entries.
func (b *IndexBuilder) Append(fund, chartType string, e Entry) {
	b.Touch(fund, chartType)
	fb := b.idx.byFund[fund]
	fb.byType[chartType] = append(fb.byType[chartType], e)
}

// Build returns the finished index.
func (b *IndexBuilder) Build() *PortfolioIndex {
	idx := b.idx
	b.idx = nil
	return idx
}
