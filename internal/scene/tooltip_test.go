package scene

import (
	"testing"

	"github.com/joshuaberetta/cvglobe/internal/cache"
	"github.com/joshuaberetta/cvglobe/internal/geo"
	"github.com/joshuaberetta/cvglobe/pkg/core"
	"github.com/stretchr/testify/assert"
)

func TestLocationTooltip(t *testing.T) {
	l := core.Location{Name: "Nairobi", Country: "Kenya", Date: "2021", Type: core.LocationDeployment}

	globeTip := LocationTooltip(geo.Orthographic, l)
	assert.Equal(t, "Nairobi, Kenya", globeTip.Title)
	assert.Equal(t, "2021", globeTip.Subtitle)
	assert.Equal(t, "deployment", globeTip.Type)

	flatTip := LocationTooltip(geo.Equirectangular, l)
	assert.Equal(t, "Nairobi", flatTip.Title)
	assert.Equal(t, "Kenya • 2021", flatTip.Subtitle)

	l.Title = "Field office"
	l.Date = ""
	assert.Equal(t, "Field office", LocationTooltip(geo.Orthographic, l).Title)
	assert.Equal(t, "Kenya", LocationTooltip(geo.Equirectangular, l).Subtitle)
}

func TestJourneyTooltip(t *testing.T) {
	data := fixtureData()
	j := data.Journeys[0]

	tip := JourneyTooltip(j, data.Locations[:3])
	assert.Equal(t, "East Africa", tip.Title)
	assert.Equal(t, "3 stops", tip.Subtitle)
	assert.Equal(t, JourneyTooltipType, tip.Type)
	assert.Contains(t, tip.Detail, "km")

	assert.Empty(t, JourneyTooltip(j, nil).Detail)
}

func TestJourneyTooltip_CountsResolvedStops(t *testing.T) {
	data := fixtureData()
	idx := cache.NewLocationIndex(data.Locations)
	j := core.Journey{ID: "gap", Name: "Gap", Locations: []string{"nbo", "ghost", "kla"}}

	tip := JourneyTooltip(j, idx.Resolve(j.Locations))
	assert.Equal(t, "2 stops", tip.Subtitle)
	assert.NotEmpty(t, tip.Detail)

	lone := core.Journey{ID: "lone", Locations: []string{"nbo", "ghost"}}
	assert.Equal(t, "1 stops", JourneyTooltip(lone, idx.Resolve(lone.Locations)).Subtitle)
}
