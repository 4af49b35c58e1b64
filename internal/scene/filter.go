package scene

import (
	"slices"

	"github.com/joshuaberetta/cvglobe/pkg/core"
)

// RegionTable maps a country name to the region it belongs to.
type RegionTable map[string]string

// Filter narrows the locations shown. Empty dimensions match everything and
// non-empty dimensions are combined with AND.
type Filter struct {
	Types     []core.LocationType `json:"types,omitempty"`
	Countries []string            `json:"countries,omitempty"`
	Regions   []string            `json:"regions,omitempty"`
}

// TypeFilter builds a filter on a single location type. An empty type clears it.
func TypeFilter(t core.LocationType) Filter {
	if t == "" {
		return Filter{}
	}
	return Filter{Types: []core.LocationType{t}}
}

// IsZero reports whether the filter matches everything.
func (f Filter) IsZero() bool {
	return len(f.Types) == 0 && len(f.Countries) == 0 && len(f.Regions) == 0
}

// Match reports whether l passes the filter. Region lookups go through regions;
// a country missing from the table belongs to no region.
func (f Filter) Match(l core.Location, regions RegionTable) bool {
	if len(f.Types) > 0 && !slices.Contains(f.Types, l.Type) {
		return false
	}
	if len(f.Countries) > 0 && !slices.Contains(f.Countries, l.Country) {
		return false
	}
	if len(f.Regions) > 0 {
		region, ok := regions[l.Country]
		if !ok || !slices.Contains(f.Regions, region) {
			return false
		}
	}
	return true
}

// ShowJourneys reports whether journeys are drawn under this filter: only when
// no type is selected or travel is one of the selected types.
func (f Filter) ShowJourneys() bool {
	return len(f.Types) == 0 || slices.Contains(f.Types, core.LocationTravel)
}

// Apply returns the locations passing the filter, in input order.
func (f Filter) Apply(locations []core.Location, regions RegionTable) []core.Location {
	if f.IsZero() {
		return locations
	}
	out := make([]core.Location, 0, len(locations))
	for _, l := range locations {
		if f.Match(l, regions) {
			out = append(out, l)
		}
	}
	return out
}
