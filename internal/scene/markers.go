package scene

import (
	"github.com/joshuaberetta/cvglobe/internal/geo"
	"github.com/joshuaberetta/cvglobe/pkg/core"
)

// Marker sizing.
const (
	SelectedScale = 1.5
	HoverScale    = 1.3
)

// Marker is a projected location ready to draw.
type Marker struct {
	ID          string            `json:"id"`
	Type        core.LocationType `json:"type"`
	Position    core.Point        `json:"position"`
	Radius      float64           `json:"radius"`
	Color       string            `json:"color"`
	Stroke      string            `json:"stroke"`
	StrokeWidth float64           `json:"strokeWidth"`
	Visible     bool              `json:"visible"`
	Selected    bool              `json:"selected"`
	Hovered     bool              `json:"hovered"`
}

// BaseRadius is the unselected marker radius for a location type.
func BaseRadius(t core.LocationType) float64 {
	switch t {
	case core.LocationDeployment:
		return 6
	case core.LocationTraining:
		return 5
	default:
		return 4
	}
}

// MarkerRadius applies selection and hover emphasis. On the globe a hovered
// marker grows to the hover scale of the selected size; on the flat map it
// grows from the base size.
func MarkerRadius(mode geo.Mode, t core.LocationType, selected, hovered bool) float64 {
	r := BaseRadius(t)
	switch {
	case hovered && mode == geo.Equirectangular:
		return r * HoverScale
	case hovered:
		return r * SelectedScale * HoverScale
	case selected:
		return r * SelectedScale
	}
	return r
}

// ComputeMarkers projects every location passing the filter. Locations that
// cannot be projected are skipped and their IDs returned. Markers on the far
// side of the globe keep their position but are hidden.
func ComputeMarkers(
	state geo.ProjectionState,
	locations []core.Location,
	filter Filter,
	regions RegionTable,
	sel Selection,
	hover Hover,
) (markers []Marker, skipped []string) {
	palette := PaletteFor(state.Mode)
	markers = make([]Marker, 0, len(locations))

	for _, l := range locations {
		if !filter.Match(l, regions) {
			continue
		}
		c := core.LonLat{Lon: l.Longitude, Lat: l.Latitude}
		p, ok := state.Project(c)
		if !ok {
			skipped = append(skipped, l.ID)
			continue
		}

		selected := sel.LocationID != "" && sel.LocationID == l.ID
		hovered := hover.LocationID != "" && hover.LocationID == l.ID
		m := Marker{
			ID:          l.ID,
			Type:        l.Type,
			Position:    p,
			Radius:      MarkerRadius(state.Mode, l.Type, selected, hovered),
			Color:       palette.Color(l.Type),
			Stroke:      "#ffffff",
			StrokeWidth: 1,
			Visible:     state.IsVisible(c),
			Selected:    selected,
			Hovered:     hovered,
		}
		if selected {
			m.StrokeWidth = 2
		}
		if !m.Visible {
			m.Color = "none"
			m.Stroke = "none"
		}
		markers = append(markers, m)
	}

	return markers, skipped
}
