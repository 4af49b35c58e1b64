// Package convert provides functions to convert between GORM models and core models
package convert

import (
	"encoding/json"

	"gorm.io/datatypes"

	"github.com/joshuaberetta/cvglobe/internal/cache"
	"github.com/joshuaberetta/cvglobe/internal/geo"
	"github.com/joshuaberetta/cvglobe/internal/model"
	"github.com/joshuaberetta/cvglobe/pkg/core"
)

// stringsToJSON converts a []string to datatypes.JSON for DB storage.
func stringsToJSON(values []string) datatypes.JSON {
	if len(values) == 0 {
		return datatypes.JSON("[]")
	}
	data, _ := json.Marshal(values)
	return datatypes.JSON(data)
}

// jsonToStrings is the inverse of stringsToJSON. Empty or invalid JSON
// yields nil.
func jsonToStrings(data datatypes.JSON) []string {
	if len(data) == 0 {
		return nil
	}
	var out []string
	if err := json.Unmarshal(data, &out); err != nil || len(out) == 0 {
		return nil
	}
	return out
}

// CoreToLocation converts a core.Location to a GORM model.Location.
// Locations whose coordinates have no web-mercator point keep an empty
// Position.
func CoreToLocation(l core.Location, order int) model.Location {
	pos, _ := geo.Point3857From4326(l.Longitude, l.Latitude)
	return model.Location{
		LocationID:  l.ID,
		SortOrder:   order,
		Name:        l.Name,
		Country:     l.Country,
		Latitude:    l.Latitude,
		Longitude:   l.Longitude,
		Position:    pos,
		Type:        string(l.Type),
		Title:       l.Title,
		Description: l.Description,
		Date:        l.Date,
		Images:      stringsToJSON(l.Images),
		JourneyID:   l.JourneyID,
		Tags:        stringsToJSON(l.Tags),
	}
}

// LocationToCore converts a GORM model.Location back to a core.Location.
func LocationToCore(l model.Location) core.Location {
	return core.Location{
		ID:          l.LocationID,
		Name:        l.Name,
		Country:     l.Country,
		Latitude:    l.Latitude,
		Longitude:   l.Longitude,
		Type:        core.LocationType(l.Type),
		Title:       l.Title,
		Description: l.Description,
		Date:        l.Date,
		Images:      jsonToStrings(l.Images),
		JourneyID:   l.JourneyID,
		Tags:        jsonToStrings(l.Tags),
	}
}

// CoreToJourney converts a core.Journey to a GORM model.Journey. Stops are
// resolved through index to build the route; a journey with fewer than two
// resolvable stops is stored without a route.
func CoreToJourney(j core.Journey, order int, index *cache.LocationIndex) model.Journey {
	m := model.Journey{
		JourneyID:   j.ID,
		SortOrder:   order,
		Name:        j.Name,
		Description: j.Description,
		Date:        j.Date,
		Color:       j.Color,
		Stops:       stringsToJSON(j.Locations),
		Images:      stringsToJSON(j.Images),
	}

	if index == nil {
		return m
	}
	resolved := index.Resolve(j.Locations)
	stops := make([]core.LonLat, 0, len(resolved))
	for _, l := range resolved {
		if geo.ValidLonLat(l.Longitude, l.Latitude) {
			stops = append(stops, core.LonLat{Lon: l.Longitude, Lat: l.Latitude})
		}
	}
	if route, err := geo.RouteLineString(stops); err == nil {
		m.Route = route
		m.LengthKm = geo.KilometresAlong(stops)
	}
	return m
}

// JourneyToCore converts a GORM model.Journey back to a core.Journey.
func JourneyToCore(j model.Journey) core.Journey {
	stops := jsonToStrings(j.Stops)
	if stops == nil {
		stops = []string{}
	}
	return core.Journey{
		ID:          j.JourneyID,
		Name:        j.Name,
		Description: j.Description,
		Date:        j.Date,
		Color:       j.Color,
		Locations:   stops,
		Images:      jsonToStrings(j.Images),
	}
}
