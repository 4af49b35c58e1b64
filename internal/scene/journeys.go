package scene

import (
	"github.com/joshuaberetta/cvglobe/internal/cache"
	"github.com/joshuaberetta/cvglobe/internal/geo"
	"github.com/joshuaberetta/cvglobe/pkg/core"
)

// Journey stroke styles.
const (
	JourneyWidth         = 2.0
	JourneyWidthSelected = 3.0
	JourneyWidthHovered  = 4.0
	JourneyOpacity       = 0.6
	JourneyDash          = "4,2"
)

// Segment is one leg of a journey between consecutive stops.
type Segment struct {
	JourneyID string         `json:"journeyId"`
	FromID    string         `json:"fromId"`
	ToID      string         `json:"toId"`
	Runs      [][]core.Point `json:"runs"`
	Color     string         `json:"color"`
	Width     float64        `json:"width"`
	Opacity   float64        `json:"opacity"`
	Dash      string         `json:"dash"`
	Selected  bool           `json:"selected"`
}

// ComputeJourneySegments draws each journey as great-circle legs through its
// resolved stops. Unknown stop IDs are dropped; a journey with fewer than two
// resolved stops draws nothing. On the globe a leg is dropped only when both
// of its endpoints are on the far side.
func ComputeJourneySegments(
	state geo.ProjectionState,
	journeys []core.Journey,
	index *cache.LocationIndex,
	filter Filter,
	sel Selection,
	hover Hover,
) []Segment {
	if !filter.ShowJourneys() || index == nil {
		return nil
	}

	var segments []Segment
	for _, j := range journeys {
		stops := index.Resolve(j.Locations)
		if len(stops) < 2 {
			continue
		}

		selected := sel.JourneyID != "" && sel.JourneyID == j.ID
		color := j.Color
		if color == "" {
			color = JourneyColor
		}
		width, opacity := JourneyWidth, JourneyOpacity
		if selected {
			width, opacity = JourneyWidthSelected, 1
		}
		if hover.JourneyID != "" && hover.JourneyID == j.ID {
			width = JourneyWidthHovered
		}

		for i := 1; i < len(stops); i++ {
			a := core.LonLat{Lon: stops[i-1].Longitude, Lat: stops[i-1].Latitude}
			b := core.LonLat{Lon: stops[i].Longitude, Lat: stops[i].Latitude}
			if !geo.ValidLonLat(a.Lon, a.Lat) || !geo.ValidLonLat(b.Lon, b.Lat) {
				continue
			}
			if state.Mode == geo.Orthographic && !state.IsVisible(a) && !state.IsVisible(b) {
				continue
			}
			segments = append(segments, Segment{
				JourneyID: j.ID,
				FromID:    stops[i-1].ID,
				ToID:      stops[i].ID,
				Runs:      state.LinePath(a, b),
				Color:     color,
				Width:     width,
				Opacity:   opacity,
				Dash:      JourneyDash,
				Selected:  selected,
			})
		}
	}

	return segments
}
