package scene

import (
	"github.com/joshuaberetta/cvglobe/internal/geo"
	"github.com/joshuaberetta/cvglobe/pkg/core"
	geom "github.com/peterstace/simplefeatures/geom"
)

// Country is a named world polygon in EPSG:4326 degrees.
type Country struct {
	Name     string
	Geometry geom.Geometry
	rings    [][]core.LonLat
}

// NewCountry extracts the drawable rings of a polygon or multipolygon.
// Other geometry types yield a country with no rings.
func NewCountry(name string, g geom.Geometry) Country {
	c := Country{Name: name, Geometry: g}
	switch g.Type() {
	case geom.TypePolygon:
		c.rings = polygonRings(g.MustAsPolygon())
	case geom.TypeMultiPolygon:
		mp := g.MustAsMultiPolygon()
		for i := 0; i < mp.NumPolygons(); i++ {
			c.rings = append(c.rings, polygonRings(mp.PolygonN(i))...)
		}
	}
	return c
}

// Rings returns the exterior and interior rings.
func (c Country) Rings() [][]core.LonLat {
	return c.rings
}

// Contains reports whether the location lies inside or on the country border.
func (c Country) Contains(l core.Location) bool {
	if c.Geometry.IsEmpty() || !geo.ValidLonLat(l.Longitude, l.Latitude) {
		return false
	}
	pt, err := geom.NewPoint(geom.Coordinates{XY: geom.XY{X: l.Longitude, Y: l.Latitude}, Type: geom.DimXY})
	if err != nil {
		return false
	}
	return geom.Intersects(c.Geometry, pt.AsGeometry())
}

func polygonRings(p geom.Polygon) [][]core.LonLat {
	rings := [][]core.LonLat{lineCoords(p.ExteriorRing())}
	for i := 0; i < p.NumInteriorRings(); i++ {
		rings = append(rings, lineCoords(p.InteriorRingN(i)))
	}
	return rings
}

func lineCoords(ls geom.LineString) []core.LonLat {
	seq := ls.Coordinates()
	out := make([]core.LonLat, seq.Length())
	for i := range out {
		xy := seq.GetXY(i)
		out[i] = core.LonLat{Lon: xy.X, Lat: xy.Y}
	}
	return out
}

// CountryShape is a projected country outline.
type CountryShape struct {
	Name        string         `json:"name"`
	Runs        [][]core.Point `json:"runs"`
	Highlighted bool           `json:"highlighted"`
}

// ComputeCountries projects country outlines. On the flat map a country is
// highlighted when any of the given locations lies inside it.
func ComputeCountries(state geo.ProjectionState, countries []Country, locations []core.Location) []CountryShape {
	shapes := make([]CountryShape, 0, len(countries))
	for _, c := range countries {
		var runs [][]core.Point
		for _, ring := range c.rings {
			runs = append(runs, state.RingPath(ring)...)
		}
		if len(runs) == 0 {
			continue
		}

		shape := CountryShape{Name: c.Name, Runs: runs}
		if state.Mode == geo.Equirectangular {
			for _, l := range locations {
				if c.Contains(l) {
					shape.Highlighted = true
					break
				}
			}
		}
		shapes = append(shapes, shape)
	}
	return shapes
}
