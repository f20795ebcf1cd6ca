package breakdown

import (
	"fmt"
	"strings"

	"github.com/bobmcallan/fundmix/internal/common"
)

// FallbackColor is returned whenever no policy yields a color.
const FallbackColor = "#000000"

// ColorPolicy is either a NameLookup or an IndexedPalette.
type ColorPolicy interface {
	color(category string, ordinal int) string
}

// NameLookup colors a category by name.
type NameLookup map[string]string

func (m NameLookup) color(category string, _ int) string {
	if c, ok := m[category]; ok && c != "" {
		return c
	}
	return FallbackColor
}

// IndexedPalette colors a category by its ordinal position, cycling through the palette.
type IndexedPalette []string

func (p IndexedPalette) color(_ string, ordinal int) string {
	if len(p) == 0 {
		return FallbackColor
	}
	i := ordinal % len(p)
	if i < 0 {
		i += len(p)
	}
	if p[i] == "" {
		return FallbackColor
	}
	return p[i]
}

// ColorResolver maps (chart type, category, ordinal) to a color.
// It holds no mutable state; the same arguments always give the same color.
type ColorResolver struct {
	policies map[string]ColorPolicy
}

// NewColorResolver returns a resolver over the given per-chart-type policies.
func NewColorResolver(policies map[string]ColorPolicy) *ColorResolver {
	copied := make(map[string]ColorPolicy, len(policies))
	for chartType, p := range policies {
		copied[chartType] = p
	}
	return &ColorResolver{policies: copied}
}

// Resolve returns the color for a category. Unknown chart types resolve to FallbackColor.
func (r *ColorResolver) Resolve(chartType, category string, ordinal int) string {
	if r == nil {
		return FallbackColor
	}
	p, ok := r.policies[chartType]
	if !ok || p == nil {
		return FallbackColor
	}
	return p.color(category, ordinal)
}

// DefaultPolicies returns the built-in color policies.
func DefaultPolicies() map[string]ColorPolicy {
	return map[string]ColorPolicy{
		"Asset classes": NameLookup{
			"Bonds":        "#007BC4",
			"Cash":         "#9FBEAF",
			"Equity":       "#de6106",
			"Alternatives": "#00adc6",
		},
		"Regions": NameLookup{
			"Emerging markets": "#027180",
			"US":               "#E196AA",
			"Europe":           "#678A81",
			"Asia":             "#862567",
			"Asia ex Japan":    "#862567",
			"UK":               "#9194B0",
			"Japan":            "#B5D2F0",
		},
		"Sectors": IndexedPalette{
			"#006698", "#00456e", "#66b0dc", "#268fcd", "#b5d0ee",
		},
		"Investment managers": IndexedPalette{
			"#006e80", "#9fbeaf", "#b5d0ee", "#e196aa", "#862567",
			"#914146", "#9190ac", "#58756d", "#4c9aa6", "#bcd1c7",
			"#d3e3f5", "#eab5c3", "#ac6996", "#a7676b", "#a7a6bd",
			"#85a199", "#80b7bf", "#cfded7", "#e1ecf8", "#fad6de",
		},
	}
}

// PoliciesFromConfig layers configured policies over the defaults.
// A configured chart type replaces the default policy for that chart type.
func PoliciesFromConfig(cfg common.ColorsConfig) (map[string]ColorPolicy, error) {
	policies := DefaultPolicies()
	for chartType, pc := range cfg {
		switch strings.ToLower(strings.TrimSpace(pc.Kind)) {
		case common.ColorKindLookup:
			lookup := make(NameLookup, len(pc.Names))
			for name, c := range pc.Names {
				lookup[name] = c
			}
			policies[chartType] = lookup
		case common.ColorKindPalette:
			policies[chartType] = append(IndexedPalette{}, pc.Palette...)
		default:
			return nil, fmt.Errorf("chart type %q: unknown color policy kind %q", chartType, pc.Kind)
		}
	}
	return policies, nil
}
