package scene

import (
	"github.com/joshuaberetta/cvglobe/internal/geo"
	"github.com/joshuaberetta/cvglobe/pkg/core"
)

// Palette maps location types to fill colours.
type Palette struct {
	Deployment string
	Training   string
	Travel     string
	Default    string
}

// GlobePalette is used on the orthographic globe.
var GlobePalette = Palette{
	Deployment: "#ef4444",
	Training:   "#3b82f6",
	Travel:     "#10b981",
	Default:    "#6b7280",
}

// FlatPalette is used on the flat world map.
var FlatPalette = Palette{
	Deployment: "#C34681",
	Training:   "#3388F8",
	Travel:     "#10b981",
	Default:    "#6A7A82",
}

// JourneyColor is the stroke of a journey without its own colour.
const JourneyColor = "#10b981"

// Color returns the fill for a location type.
func (p Palette) Color(t core.LocationType) string {
	switch t {
	case core.LocationDeployment:
		return p.Deployment
	case core.LocationTraining:
		return p.Training
	case core.LocationTravel:
		return p.Travel
	default:
		return p.Default
	}
}

// PaletteFor picks the palette for a projection mode.
func PaletteFor(mode geo.Mode) Palette {
	if mode == geo.Equirectangular {
		return FlatPalette
	}
	return GlobePalette
}
