package timeline

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/joshuaberetta/cvglobe/pkg/core"
)

// Horizontal layout in percent of the timeline column.
const (
	PaddingPercent = 2.5
	SpanPercent    = 95.0
	MinBarPercent  = 0.5
)

// Bar is one positioned interval. The axis runs right to left: now sits at the
// left padding and the earliest start at the right.
type Bar struct {
	Kind         core.IntervalKind `json:"kind"`
	Position     string            `json:"position"`
	Organization string            `json:"organization"`
	Start        time.Time         `json:"start"`
	End          time.Time         `json:"end"`
	Current      bool              `json:"current"`
	Left         float64           `json:"left"`
	Width        float64           `json:"width"`
	DateLabel    string            `json:"dateLabel"`
	Duration     string            `json:"duration"`
}

// Group collects the bars of one organization, newest first.
type Group struct {
	Organization string `json:"organization"`
	Bars         []Bar  `json:"bars"`
}

// Section is the work or volunteer block of the chart.
type Section struct {
	Kind   core.IntervalKind `json:"kind"`
	Groups []Group           `json:"groups"`
}

// YearMarker is an axis tick anchored at 31 December of its year.
type YearMarker struct {
	Year  int       `json:"year"`
	Label string    `json:"label"`
	Date  time.Time `json:"date"`
	Left  float64   `json:"left"`
}

// Chart is the laid-out timeline.
type Chart struct {
	AxisStart time.Time    `json:"axisStart"`
	AxisEnd   time.Time    `json:"axisEnd"`
	TotalDays float64      `json:"totalDays"`
	Years     []YearMarker `json:"years"`
	Sections  []Section    `json:"sections"`
}

// Count returns the number of bars in the chart.
func (c Chart) Count() int {
	n := 0
	for _, s := range c.Sections {
		for _, g := range s.Groups {
			n += len(g.Bars)
		}
	}
	return n
}

// left converts a date to its offset from the left edge.
func (c Chart) left(t time.Time) float64 {
	return PaddingPercent + days(c.AxisEnd.Sub(t))/c.TotalDays*SpanPercent
}

// Layout positions work and volunteer intervals on a shared axis from the
// earliest start to now. Empty input gives an empty chart.
func Layout(intervals []core.WorkInterval, now time.Time) (Chart, error) {
	if len(intervals) == 0 {
		return Chart{}, nil
	}

	bars := make([]Bar, 0, len(intervals))
	for i, iv := range intervals {
		start, err := ParseDate(iv.StartDate, now)
		if err != nil {
			return Chart{}, fmt.Errorf("interval %d (%s) start: %w", i, iv.Position, err)
		}
		current := IsCurrent(iv.EndDate)
		end, err := ParseDate(iv.EndDate, now)
		if err != nil {
			return Chart{}, fmt.Errorf("interval %d (%s) end: %w", i, iv.Position, err)
		}
		kind := normalizeKind(iv.Kind)
		bars = append(bars, Bar{
			Kind:         kind,
			Position:     iv.Position,
			Organization: iv.Organization,
			Start:        start,
			End:          end,
			Current:      current,
			DateLabel:    FormatRange(start, end, current),
			Duration:     FormatDuration(start, end),
		})
	}

	c := Chart{AxisStart: bars[0].Start, AxisEnd: now}
	for _, b := range bars[1:] {
		if b.Start.Before(c.AxisStart) {
			c.AxisStart = b.Start
		}
	}
	// one-day floor when every interval starts now
	c.TotalDays = math.Max(days(c.AxisEnd.Sub(c.AxisStart)), 1)

	for i := range bars {
		bars[i].Left = c.left(bars[i].End)
		bars[i].Width = math.Max(days(bars[i].End.Sub(bars[i].Start))/c.TotalDays*SpanPercent, MinBarPercent)
	}

	for y := now.Year(); y >= c.AxisStart.Year(); y-- {
		d := time.Date(y, time.December, 31, 0, 0, 0, 0, now.Location())
		c.Years = append(c.Years, YearMarker{
			Year:  y,
			Label: fmt.Sprintf("%d", y),
			Date:  d,
			Left:  c.left(d),
		})
	}

	for _, kind := range []core.IntervalKind{core.IntervalWork, core.IntervalVolunteer} {
		if groups := groupByOrganization(bars, kind); len(groups) > 0 {
			c.Sections = append(c.Sections, Section{Kind: kind, Groups: groups})
		}
	}

	return c, nil
}

// normalizeKind folds case and whitespace. Anything that is not volunteering
// is laid out as work so every interval lands in a section.
func normalizeKind(k core.IntervalKind) core.IntervalKind {
	if core.IntervalKind(strings.ToLower(strings.TrimSpace(string(k)))) == core.IntervalVolunteer {
		return core.IntervalVolunteer
	}
	return core.IntervalWork
}

// groupByOrganization groups bars of one kind, ordering groups by their latest
// start and bars within a group by start, both newest first.
func groupByOrganization(bars []Bar, kind core.IntervalKind) []Group {
	index := make(map[string]int)
	var groups []Group
	for _, b := range bars {
		if b.Kind != kind {
			continue
		}
		i, ok := index[b.Organization]
		if !ok {
			i = len(groups)
			index[b.Organization] = i
			groups = append(groups, Group{Organization: b.Organization})
		}
		groups[i].Bars = append(groups[i].Bars, b)
	}

	for i := range groups {
		sort.SliceStable(groups[i].Bars, func(a, b int) bool {
			return groups[i].Bars[a].Start.After(groups[i].Bars[b].Start)
		})
	}
	sort.SliceStable(groups, func(a, b int) bool {
		return groups[a].Bars[0].Start.After(groups[b].Bars[0].Start)
	})

	return groups
}
