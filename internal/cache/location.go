package cache

import (
	"github.com/joshuaberetta/cvglobe/pkg/core"
)

// LocationIndex resolves location IDs to locations. Journeys reference stops by
// ID, and every frame resolves them again, so lookups must be cheap.
//
// An index is read-only once built and safe for concurrent use. Replace it
// rather than mutating it when the locations change.
type LocationIndex struct {
	locations map[string]core.Location
}

// NewLocationIndex creates an index over the given locations. Later
// duplicates win.
func NewLocationIndex(locations []core.Location) *LocationIndex {
	m := make(map[string]core.Location, len(locations))
	for _, l := range locations {
		m[l.ID] = l
	}
	return &LocationIndex{locations: m}
}

// Get retrieves a location by ID
func (c *LocationIndex) Get(id string) (core.Location, bool) {
	l, ok := c.locations[id]
	return l, ok
}

// Resolve maps IDs to locations in order, skipping unknown IDs.
func (c *LocationIndex) Resolve(ids []string) []core.Location {
	out := make([]core.Location, 0, len(ids))
	for _, id := range ids {
		if l, ok := c.locations[id]; ok {
			out = append(out, l)
		}
	}
	return out
}

// Len returns the number of indexed locations.
func (c *LocationIndex) Len() int {
	return len(c.locations)
}
