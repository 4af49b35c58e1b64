package geo

import (
	"fmt"

	"github.com/joshuaberetta/cvglobe/pkg/core"
	geom "github.com/peterstace/simplefeatures/geom"
	"github.com/wroge/wgs84"
)

// RouteLineString builds an EPSG:3857 line string through the given stops.
func RouteLineString(stops []core.LonLat) (geom.LineString, error) {
	if len(stops) < 2 {
		return geom.LineString{}, fmt.Errorf("route must have at least 2 points, got %d", len(stops))
	}

	f := wgs84.EPSG().Transform(4326, 3857)
	flatCoords := make([]float64, 0, len(stops)*2)
	for i, s := range stops {
		if !ValidLonLat(s.Lon, s.Lat) {
			return geom.LineString{}, fmt.Errorf("stop %d: %w", i, ErrInvalidCoordinates)
		}
		x, y, _ := f(s.Lon, s.Lat, 0)
		flatCoords = append(flatCoords, x, y)
	}

	ls, err := geom.NewLineString(geom.NewSequence(flatCoords, geom.DimXY))
	if err != nil {
		return geom.LineString{}, fmt.Errorf("building route: %w", err)
	}
	return ls, nil
}

// KilometresAlong sums the great-circle length of a route.
func KilometresAlong(stops []core.LonLat) float64 {
	var total float64
	for i := 1; i < len(stops); i++ {
		total += HaversineKm(stops[i-1], stops[i])
	}
	return total
}
