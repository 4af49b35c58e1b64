// pkg/core/location.go
package core

// LocationType classifies a place on the map.
type LocationType string

const (
	LocationDeployment LocationType = "deployment"
	LocationTraining   LocationType = "training"
	LocationTravel     LocationType = "travel"
)

// Location is a single place of interest with geographic coordinates.
// Longitude is expected in [-180, 180] and Latitude in [-90, 90].
type Location struct {
	ID          string       `json:"id" yaml:"id"`
	Name        string       `json:"name" yaml:"name"`
	Country     string       `json:"country" yaml:"country"`
	Latitude    float64      `json:"latitude" yaml:"latitude"`
	Longitude   float64      `json:"longitude" yaml:"longitude"`
	Type        LocationType `json:"type" yaml:"type"`
	Title       string       `json:"title,omitempty" yaml:"title,omitempty"`
	Description string       `json:"description,omitempty" yaml:"description,omitempty"`
	Date        string       `json:"date,omitempty" yaml:"date,omitempty"`
	Images      []string     `json:"images,omitempty" yaml:"images,omitempty"`
	JourneyID   string       `json:"journeyId,omitempty" yaml:"journeyId,omitempty"`
	Tags        []string     `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// Journey is an ordered route through previously declared locations.
type Journey struct {
	ID          string   `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Date        string   `json:"date,omitempty" yaml:"date,omitempty"`
	Color       string   `json:"color,omitempty" yaml:"color,omitempty"`
	Locations   []string `json:"locations" yaml:"locations"`
	Images      []string `json:"images,omitempty" yaml:"images,omitempty"`
}

// GlobeData is the content document rendered by the globe and the flat map.
type GlobeData struct {
	Locations []Location `json:"locations"`
	Journeys  []Journey  `json:"journeys"`
}

// Empty reports whether there is nothing to draw.
func (g GlobeData) Empty() bool {
	return len(g.Locations) == 0 && len(g.Journeys) == 0
}
