package content

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	geojson "github.com/paulmach/go.geojson"
	"github.com/peterstace/simplefeatures/geom"

	"github.com/joshuaberetta/cvglobe/internal/scene"
)

// nameKeys are the feature properties tried, in order, for a country name.
var nameKeys = []string{"name", "NAME", "ADMIN", "admin", "name_long"}

// DecodeWorld decodes a GeoJSON FeatureCollection of country outlines.
// Features that are not polygons, or whose geometry is rejected, are
// returned by name in skipped.
func DecodeWorld(r io.Reader) (countries []scene.Country, skipped []string, err error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, fmt.Errorf("reading world data: %w", err)
	}
	fc, err := geojson.UnmarshalFeatureCollection(raw)
	if err != nil {
		return nil, nil, fmt.Errorf("decoding world data: %w", err)
	}

	for i, f := range fc.Features {
		name := featureName(f, i)
		if f.Geometry == nil || !(f.Geometry.IsPolygon() || f.Geometry.IsMultiPolygon()) {
			skipped = append(skipped, name)
			continue
		}
		b, err := json.Marshal(f.Geometry)
		if err != nil {
			skipped = append(skipped, name)
			continue
		}
		g, err := geom.UnmarshalGeoJSON(b)
		if err != nil {
			skipped = append(skipped, name)
			continue
		}
		countries = append(countries, scene.NewCountry(name, g))
	}
	return countries, skipped, nil
}

// LoadWorldFile reads country outlines from a GeoJSON file.
func LoadWorldFile(path string) ([]scene.Country, []string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open world data: %w", err)
	}
	defer f.Close()
	return DecodeWorld(f)
}

func featureName(f *geojson.Feature, i int) string {
	for _, key := range nameKeys {
		if s, err := f.PropertyString(key); err == nil && s != "" {
			return s
		}
	}
	if f.ID != nil {
		return fmt.Sprint(f.ID)
	}
	return fmt.Sprintf("feature-%d", i)
}
