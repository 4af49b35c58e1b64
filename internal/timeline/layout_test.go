package timeline

import (
	"testing"

	"github.com/joshuaberetta/cvglobe/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixtureIntervals() []core.WorkInterval {
	return []core.WorkInterval{
		{Kind: core.IntervalWork, Position: "Intern", Organization: "Acme", StartDate: "06/2019", EndDate: "12/2019"},
		{Kind: core.IntervalWork, Position: "Analyst", Organization: "Beta", StartDate: "2018", EndDate: "05/2019"},
		{Kind: core.IntervalVolunteer, Position: "Mentor", Organization: "Code Club", StartDate: "03/2021", EndDate: "current"},
		{Kind: core.IntervalWork, Position: "Engineer", Organization: "Acme", StartDate: "01/2020", EndDate: "Current"},
	}
}

func TestLayout_Axis(t *testing.T) {
	c, err := Layout(fixtureIntervals(), testNow)
	require.NoError(t, err)

	assert.Equal(t, 2018, c.AxisStart.Year())
	assert.True(t, testNow.Equal(c.AxisEnd))
	assert.InDelta(t, 2357.5, c.TotalDays, 1e-9)
	assert.Equal(t, 4, c.Count())
}

func TestLayout_YearMarkers(t *testing.T) {
	c, err := Layout(fixtureIntervals(), testNow)
	require.NoError(t, err)

	require.Len(t, c.Years, 7)
	assert.Equal(t, 2024, c.Years[0].Year)
	assert.Equal(t, "2018", c.Years[6].Label)
	assert.Equal(t, 31, c.Years[0].Date.Day())
	assert.Less(t, c.Years[0].Left, PaddingPercent, "31 Dec of the current year lies right of now")
	for i := 1; i < len(c.Years); i++ {
		assert.Greater(t, c.Years[i].Left, c.Years[i-1].Left)
	}
}

func TestLayout_SectionsAndGrouping(t *testing.T) {
	c, err := Layout(fixtureIntervals(), testNow)
	require.NoError(t, err)

	require.Len(t, c.Sections, 2)
	work := c.Sections[0]
	assert.Equal(t, core.IntervalWork, work.Kind)
	require.Len(t, work.Groups, 2)
	assert.Equal(t, "Acme", work.Groups[0].Organization)
	assert.Equal(t, "Beta", work.Groups[1].Organization)
	require.Len(t, work.Groups[0].Bars, 2)
	assert.Equal(t, "Engineer", work.Groups[0].Bars[0].Position)
	assert.Equal(t, "Intern", work.Groups[0].Bars[1].Position)

	vol := c.Sections[1]
	assert.Equal(t, core.IntervalVolunteer, vol.Kind)
	require.Len(t, vol.Groups, 1)
	assert.Equal(t, "Code Club", vol.Groups[0].Organization)
}

func TestLayout_BarGeometry(t *testing.T) {
	c, err := Layout(fixtureIntervals(), testNow)
	require.NoError(t, err)

	engineer := c.Sections[0].Groups[0].Bars[0]
	assert.True(t, engineer.Current)
	assert.InDelta(t, 2.5, engineer.Left, 1e-9)
	assert.InDelta(t, 1627.5/2357.5*95, engineer.Width, 1e-9)
	assert.Equal(t, "Jan 2020 - Present", engineer.DateLabel)
	assert.Equal(t, "4y 6m", engineer.Duration)

	analyst := c.Sections[0].Groups[1].Bars[0]
	assert.False(t, analyst.Current)
	assert.InDelta(t, 95+2.5, analyst.Left+analyst.Width, 1e-9, "earliest bar reaches the right padding")
	assert.Equal(t, "1y 4m", analyst.Duration)
}

func TestLayout_MinimumWidth(t *testing.T) {
	intervals := []core.WorkInterval{
		{Position: "Long", Organization: "A", StartDate: "1990", EndDate: "current"},
		{Position: "Blip", Organization: "B", StartDate: "03/2020", EndDate: "03/2020"},
	}
	c, err := Layout(intervals, testNow)
	require.NoError(t, err)

	blip := c.Sections[0].Groups[0].Bars[0]
	assert.Equal(t, "Blip", blip.Position)
	assert.Equal(t, MinBarPercent, blip.Width)
	assert.Equal(t, core.IntervalWork, blip.Kind, "missing kind defaults to work")
}

func TestLayout_Empty(t *testing.T) {
	c, err := Layout(nil, testNow)
	require.NoError(t, err)
	assert.Empty(t, c.Sections)
	assert.Empty(t, c.Years)
	assert.Zero(t, c.Count())
}

func TestLayout_StartingNow(t *testing.T) {
	c, err := Layout([]core.WorkInterval{{Position: "New", Organization: "A", StartDate: "current", EndDate: "current"}}, testNow)
	require.NoError(t, err)
	assert.Equal(t, 1.0, c.TotalDays)
	assert.Equal(t, MinBarPercent, c.Sections[0].Groups[0].Bars[0].Width)
}

func TestLayout_InvalidDate(t *testing.T) {
	_, err := Layout([]core.WorkInterval{{Position: "X", StartDate: "soon", EndDate: "current"}}, testNow)
	assert.ErrorIs(t, err, ErrInvalidDate)

	_, err = Layout([]core.WorkInterval{{Position: "X", StartDate: "2020", EndDate: "later"}}, testNow)
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestLayout_NormalizesKinds(t *testing.T) {
	intervals := []core.WorkInterval{
		{Kind: core.IntervalWork, Position: "Officer", Organization: "Acme", StartDate: "01/2020", EndDate: "06/2021"},
		{Kind: "Volunteer", Position: "Driver", Organization: "Red Cross", StartDate: "2019", EndDate: "current"},
		{Kind: " VOLUNTEER ", Position: "Coach", Organization: "Club", StartDate: "2017", EndDate: "2018"},
		{Kind: "contract", Position: "Consultant", Organization: "Beta", StartDate: "2016", EndDate: "2017"},
		{Position: "Clerk", Organization: "Gamma", StartDate: "2015", EndDate: "2016"},
	}

	c, err := Layout(intervals, testNow)
	require.NoError(t, err)
	assert.Equal(t, len(intervals), c.Count())

	counts := map[core.IntervalKind]int{}
	for _, s := range c.Sections {
		for _, g := range s.Groups {
			for _, b := range g.Bars {
				assert.Equal(t, s.Kind, b.Kind)
				counts[s.Kind]++
			}
		}
	}
	assert.Equal(t, map[core.IntervalKind]int{core.IntervalWork: 3, core.IntervalVolunteer: 2}, counts)
}
