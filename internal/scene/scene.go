package scene

import (
	"github.com/joshuaberetta/cvglobe/internal/cache"
	"github.com/joshuaberetta/cvglobe/internal/geo"
	"github.com/joshuaberetta/cvglobe/pkg/core"
)

// Layer identifies a drawing layer. Layers are drawn in ascending order.
type Layer int

const (
	LayerCountries Layer = iota
	LayerJourneys
	LayerMarkers
)

func (l Layer) String() string {
	switch l {
	case LayerCountries:
		return "countries"
	case LayerJourneys:
		return "journeys"
	case LayerMarkers:
		return "markers"
	default:
		return "unknown"
	}
}

// MarshalText encodes the layer by name.
func (l Layer) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// Layers returns the z-order, bottom first.
func Layers() []Layer {
	return []Layer{LayerCountries, LayerJourneys, LayerMarkers}
}

// Sphere is the globe silhouette drawn beneath the countries.
type Sphere struct {
	Center core.Point `json:"center"`
	Radius float64    `json:"radius"`
}

// Scene is everything the renderer needs for one frame.
type Scene struct {
	Mode      geo.Mode       `json:"mode"`
	Width     float64        `json:"width"`
	Height    float64        `json:"height"`
	Zoom      geo.Transform  `json:"zoom"`
	Sphere    *Sphere        `json:"sphere,omitempty"`
	Countries []CountryShape `json:"countries"`
	Segments  []Segment      `json:"segments"`
	Markers   []Marker       `json:"markers"`
	Layers    []Layer        `json:"layers"`

	// Skipped lists location IDs that could not be projected.
	Skipped []string `json:"-"`
}

// Input bundles the arguments of Compose.
type Input struct {
	State     geo.ProjectionState
	Data      core.GlobeData
	Index     *cache.LocationIndex
	Countries []Country
	Regions   RegionTable
	Filter    Filter
	Selection Selection
	Hover     Hover
}

// Compose builds the scene for a projection, data set and view state. It has
// no side effects; equal inputs give equal scenes.
func Compose(in Input) Scene {
	index := in.Index
	if index == nil {
		index = cache.NewLocationIndex(in.Data.Locations)
	}

	s := Scene{
		Mode:   in.State.Mode,
		Width:  in.State.Width,
		Height: in.State.Height,
		Zoom:   in.State.Zoom,
		Layers: Layers(),
	}
	if in.State.Mode == geo.Orthographic {
		s.Sphere = &Sphere{Center: in.State.Translate, Radius: in.State.Radius()}
	}

	filtered := in.Filter.Apply(in.Data.Locations, in.Regions)
	s.Countries = ComputeCountries(in.State, in.Countries, filtered)
	s.Segments = ComputeJourneySegments(in.State, in.Data.Journeys, index, in.Filter, in.Selection, in.Hover)
	s.Markers, s.Skipped = ComputeMarkers(in.State, in.Data.Locations, in.Filter, in.Regions, in.Selection, in.Hover)

	return s
}

// MarkerAt returns the topmost visible marker under p, if any.
func (s Scene) MarkerAt(p core.Point) (Marker, bool) {
	for i := len(s.Markers) - 1; i >= 0; i-- {
		m := s.Markers[i]
		if !m.Visible {
			continue
		}
		dx, dy := p.X-m.Position.X, p.Y-m.Position.Y
		if dx*dx+dy*dy <= m.Radius*m.Radius {
			return m, true
		}
	}
	return Marker{}, false
}

// Marker returns the marker for a location ID.
func (s Scene) Marker(id string) (Marker, bool) {
	for _, m := range s.Markers {
		if m.ID == id {
			return m, true
		}
	}
	return Marker{}, false
}
