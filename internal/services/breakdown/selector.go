package breakdown

import "github.com/bobmcallan/fundmix/internal/models"

// Selector exposes the funds of an index and tracks the selected one.
// Selecting an unknown fund is allowed; it simply resolves to no breakdowns.
type Selector struct {
	index    *models.PortfolioIndex
	selected string
}

// NewSelector selects the first fund of index, or nothing for an empty index.
func NewSelector(index *models.PortfolioIndex) Selector {
	s := Selector{index: index}
	if funds := index.Funds(); len(funds) > 0 {
		s.selected = funds[0]
	}
	return s
}

// AvailableFunds returns funds in first-appearance order.
func (s Selector) AvailableFunds() []string {
	return s.index.Funds()
}

// Select returns a selector with fund selected.
func (s Selector) Select(fund string) Selector {
	s.selected = fund
	return s
}

// Selected returns the selected fund identifier, or "".
func (s Selector) Selected() string {
	return s.selected
}

// Known reports whether the selection names a fund in the index.
func (s Selector) Known() bool {
	return s.selected != "" && s.index.HasFund(s.selected)
}
