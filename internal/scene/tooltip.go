package scene

import (
	"fmt"

	"github.com/joshuaberetta/cvglobe/internal/geo"
	"github.com/joshuaberetta/cvglobe/pkg/core"
)

// TooltipContent is the text shown next to a hovered entity.
type TooltipContent struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	Detail   string `json:"detail,omitempty"`
	Type     string `json:"type"`
}

// Tooltip is the hover popup state.
type Tooltip struct {
	Visible  bool           `json:"visible"`
	Position core.Point     `json:"position"`
	Content  TooltipContent `json:"content"`
}

// JourneyTooltipType is the content type of a journey tooltip.
const JourneyTooltipType = "journey"

// LocationTooltip builds the hover text for a location. The globe shows
// "name, country" over the date; the flat map shows the name over
// "country • date". An explicit title always wins.
func LocationTooltip(mode geo.Mode, l core.Location) TooltipContent {
	c := TooltipContent{Type: string(l.Type)}
	if mode == geo.Equirectangular {
		c.Title = l.Title
		if c.Title == "" {
			c.Title = l.Name
		}
		c.Subtitle = l.Country
		if l.Date != "" {
			c.Subtitle = l.Country + " • " + l.Date
		}
		return c
	}

	c.Title = l.Title
	if c.Title == "" {
		c.Title = l.Name + ", " + l.Country
	}
	c.Subtitle = l.Date
	return c
}

// JourneyTooltip builds the hover text for a journey through its resolved
// stops. IDs that did not resolve are not counted.
func JourneyTooltip(j core.Journey, stops []core.Location) TooltipContent {
	c := TooltipContent{
		Title:    j.Name,
		Subtitle: fmt.Sprintf("%d stops", len(stops)),
		Type:     JourneyTooltipType,
	}
	if len(stops) >= 2 {
		coords := make([]core.LonLat, len(stops))
		for i, s := range stops {
			coords[i] = core.LonLat{Lon: s.Longitude, Lat: s.Latitude}
		}
		c.Detail = fmt.Sprintf("%.0f km", geo.KilometresAlong(coords))
	}
	return c
}
