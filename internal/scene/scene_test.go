package scene

import (
	"encoding/json"
	"testing"

	"github.com/joshuaberetta/cvglobe/internal/cache"
	"github.com/joshuaberetta/cvglobe/internal/geo"
	"github.com/joshuaberetta/cvglobe/pkg/core"
	geom "github.com/peterstace/simplefeatures/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixtureData() core.GlobeData {
	return core.GlobeData{
		Locations: []core.Location{
			{ID: "nbo", Name: "Nairobi", Country: "Kenya", Longitude: 36.82, Latitude: -1.29, Type: core.LocationDeployment, Date: "2021"},
			{ID: "kla", Name: "Kampala", Country: "Uganda", Longitude: 32.58, Latitude: 0.35, Type: core.LocationTraining},
			{ID: "kgl", Name: "Kigali", Country: "Rwanda", Longitude: 29.87, Latitude: -1.94, Type: core.LocationTravel},
			{ID: "sfo", Name: "San Francisco", Country: "USA", Longitude: -122.42, Latitude: 37.77, Type: core.LocationTravel},
		},
		Journeys: []core.Journey{
			{ID: "ea", Name: "East Africa", Locations: []string{"nbo", "kla", "kgl"}},
			{ID: "broken", Name: "Broken", Locations: []string{"nbo", "nowhere"}},
		},
	}
}

func globe() geo.ProjectionState {
	return geo.NewOrthographic(800, 800, geo.DefaultGlobeOptions())
}

func TestComputeMarkers_Globe(t *testing.T) {
	data := fixtureData()
	markers, skipped := ComputeMarkers(globe(), data.Locations, Filter{}, nil, SelectLocation("nbo"), Hover{})

	require.Len(t, markers, 4)
	assert.Empty(t, skipped)

	nbo := markers[0]
	assert.True(t, nbo.Visible)
	assert.True(t, nbo.Selected)
	assert.Equal(t, 9.0, nbo.Radius)
	assert.Equal(t, "#ef4444", nbo.Color)

	kla := markers[1]
	assert.Equal(t, 5.0, kla.Radius)
	assert.Equal(t, "#3b82f6", kla.Color)
	assert.False(t, kla.Selected)

	sfo := markers[3]
	assert.False(t, sfo.Visible)
	assert.Equal(t, "none", sfo.Color)
	assert.Equal(t, 4.0, sfo.Radius)
}

func TestComputeMarkers_FlatPaletteAndVisibility(t *testing.T) {
	data := fixtureData()
	markers, _ := ComputeMarkers(geo.NewEquirectangular(650, 390), data.Locations, Filter{}, nil, Selection{}, Hover{})

	require.Len(t, markers, 4)
	for _, m := range markers {
		assert.True(t, m.Visible, m.ID)
	}
	assert.Equal(t, "#C34681", markers[0].Color)
	assert.Equal(t, "#3388F8", markers[1].Color)
	assert.Equal(t, "#10b981", markers[2].Color)
}

func TestComputeMarkers_SkipsMalformed(t *testing.T) {
	locations := []core.Location{
		{ID: "bad", Longitude: 10, Latitude: 200, Type: core.LocationTravel},
		{ID: "ok", Longitude: 10, Latitude: 20, Type: core.LocationTravel},
	}
	markers, skipped := ComputeMarkers(globe(), locations, Filter{}, nil, Selection{}, Hover{})

	require.Len(t, markers, 1)
	assert.Equal(t, "ok", markers[0].ID)
	assert.Equal(t, []string{"bad"}, skipped)
}

func TestMarkerRadius(t *testing.T) {
	tests := []struct {
		name     string
		mode     geo.Mode
		typ      core.LocationType
		selected bool
		hovered  bool
		want     float64
	}{
		{"deployment", geo.Orthographic, core.LocationDeployment, false, false, 6},
		{"training selected", geo.Orthographic, core.LocationTraining, true, false, 7.5},
		{"travel hovered", geo.Orthographic, core.LocationTravel, false, true, 4 * 1.5 * 1.3},
		{"globe hover uses selected size", geo.Orthographic, core.LocationDeployment, false, true, 6 * 1.5 * 1.3},
		{"globe selected and hovered", geo.Orthographic, core.LocationDeployment, true, true, 6 * 1.5 * 1.3},
		{"flat hover uses base size", geo.Equirectangular, core.LocationDeployment, true, true, 6 * 1.3},
		{"unknown type", geo.Orthographic, core.LocationType("other"), false, false, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, MarkerRadius(tt.mode, tt.typ, tt.selected, tt.hovered), 1e-9)
		})
	}
}

func TestComputeJourneySegments_ConsecutivePairs(t *testing.T) {
	data := fixtureData()
	idx := cache.NewLocationIndex(data.Locations)

	segs := ComputeJourneySegments(globe(), data.Journeys, idx, Filter{}, Selection{}, Hover{})

	require.Len(t, segs, 2)
	assert.Equal(t, "nbo", segs[0].FromID)
	assert.Equal(t, "kla", segs[0].ToID)
	assert.Equal(t, "kla", segs[1].FromID)
	assert.Equal(t, "kgl", segs[1].ToID)
	for _, s := range segs {
		assert.Equal(t, "ea", s.JourneyID)
		assert.Equal(t, JourneyColor, s.Color)
		assert.Equal(t, 2.0, s.Width)
		assert.Equal(t, 0.6, s.Opacity)
		assert.Equal(t, "4,2", s.Dash)
		assert.NotEmpty(t, s.Runs)
	}
}

func TestComputeJourneySegments_SelectedAndCustomColor(t *testing.T) {
	data := fixtureData()
	data.Journeys[0].Color = "#f59e0b"
	idx := cache.NewLocationIndex(data.Locations)

	segs := ComputeJourneySegments(globe(), data.Journeys, idx, Filter{}, SelectJourney("ea"), Hover{})

	require.Len(t, segs, 2)
	assert.True(t, segs[0].Selected)
	assert.Equal(t, 3.0, segs[0].Width)
	assert.Equal(t, 1.0, segs[0].Opacity)
	assert.Equal(t, "#f59e0b", segs[0].Color)
}

func TestComputeJourneySegments_Hovered(t *testing.T) {
	data := fixtureData()
	idx := cache.NewLocationIndex(data.Locations)

	segs := ComputeJourneySegments(globe(), data.Journeys, idx, Filter{}, Selection{}, Hover{JourneyID: "ea"})
	require.NotEmpty(t, segs)
	assert.Equal(t, 4.0, segs[0].Width)
}

func TestComputeJourneySegments_TypeFilter(t *testing.T) {
	data := fixtureData()
	idx := cache.NewLocationIndex(data.Locations)

	assert.Empty(t, ComputeJourneySegments(globe(), data.Journeys, idx, TypeFilter(core.LocationDeployment), Selection{}, Hover{}))
	assert.Len(t, ComputeJourneySegments(globe(), data.Journeys, idx, TypeFilter(core.LocationTravel), Selection{}, Hover{}), 2)
}

func TestComputeJourneySegments_FarSideDropped(t *testing.T) {
	locations := []core.Location{
		{ID: "a", Longitude: -150, Latitude: -20},
		{ID: "b", Longitude: -140, Latitude: -25},
		{ID: "c", Longitude: 30, Latitude: 20},
	}
	journeys := []core.Journey{{ID: "j", Locations: []string{"a", "b", "c"}}}

	segs := ComputeJourneySegments(globe(), journeys, cache.NewLocationIndex(locations), Filter{}, Selection{}, Hover{})

	require.Len(t, segs, 1)
	assert.Equal(t, "b", segs[0].FromID)
	assert.Equal(t, "c", segs[0].ToID)
}

func TestComputeJourneySegments_FlatKeepsAll(t *testing.T) {
	data := fixtureData()
	data.Journeys = append(data.Journeys, core.Journey{ID: "pacific", Locations: []string{"sfo", "nbo"}})
	idx := cache.NewLocationIndex(data.Locations)

	segs := ComputeJourneySegments(geo.NewEquirectangular(650, 390), data.Journeys, idx, Filter{}, Selection{}, Hover{})
	assert.Len(t, segs, 3)
}

func TestComputeCountries_HighlightOnFlat(t *testing.T) {
	g, err := geom.UnmarshalWKT("POLYGON((33 -5,42 -5,42 5,33 5,33 -5))")
	require.NoError(t, err)
	countries := []Country{NewCountry("Kenya", g)}
	data := fixtureData()

	flat := ComputeCountries(geo.NewEquirectangular(650, 390), countries, data.Locations)
	require.Len(t, flat, 1)
	assert.True(t, flat[0].Highlighted)

	none := ComputeCountries(geo.NewEquirectangular(650, 390), countries, data.Locations[1:])
	require.Len(t, none, 1)
	assert.False(t, none[0].Highlighted)

	onGlobe := ComputeCountries(globe(), countries, data.Locations)
	require.Len(t, onGlobe, 1)
	assert.False(t, onGlobe[0].Highlighted)
}

func TestNewCountry_MultiPolygonRings(t *testing.T) {
	g, err := geom.UnmarshalWKT("MULTIPOLYGON(((0 0,1 0,1 1,0 0)),((5 5,6 5,6 6,5 5),(5.2 5.1,5.8 5.1,5.8 5.5,5.2 5.1)))")
	require.NoError(t, err)

	c := NewCountry("Islands", g)
	require.Len(t, c.Rings(), 3)
	assert.Len(t, c.Rings()[0], 4)
}

func TestCompose_LayersAndDeterminism(t *testing.T) {
	in := Input{
		State:     globe(),
		Data:      fixtureData(),
		Selection: SelectLocation("kla"),
	}

	a := Compose(in)
	b := Compose(in)
	assert.Equal(t, a, b)

	require.NotNil(t, a.Sphere)
	assert.Equal(t, core.Point{X: 400, Y: 400}, a.Sphere.Center)
	assert.Len(t, a.Markers, 4)
	assert.Len(t, a.Segments, 2)
	assert.Equal(t, []Layer{LayerCountries, LayerJourneys, LayerMarkers}, a.Layers)

	raw, err := json.Marshal(a)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"layers":["countries","journeys","markers"]`)
}

func TestCompose_EmptyData(t *testing.T) {
	s := Compose(Input{State: geo.NewEquirectangular(650, 390)})
	assert.Nil(t, s.Sphere)
	assert.Empty(t, s.Markers)
	assert.Empty(t, s.Segments)
	assert.Empty(t, s.Countries)
}

func TestScene_MarkerAt(t *testing.T) {
	s := Compose(Input{State: globe(), Data: fixtureData()})
	nbo, ok := s.Marker("nbo")
	require.True(t, ok)

	hit, ok := s.MarkerAt(core.Point{X: nbo.Position.X + 1, Y: nbo.Position.Y})
	require.True(t, ok)
	assert.Equal(t, "nbo", hit.ID)

	sfo, ok := s.Marker("sfo")
	require.True(t, ok)
	_, ok = s.MarkerAt(sfo.Position)
	assert.False(t, ok, "hidden markers are not hit")
}
