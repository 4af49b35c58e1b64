package geo

import (
	"math"

	"github.com/joshuaberetta/cvglobe/pkg/core"
)

// pathStepDegrees is the great-circle sampling interval for line paths.
const pathStepDegrees = 2.0

// LinePath samples the great circle from a to b and projects it. The result is
// split into runs wherever the path leaves the visible hemisphere (globe) or
// wraps the antimeridian (flat map). Runs with fewer than two points are dropped.
func (s ProjectionState) LinePath(a, b core.LonLat) [][]core.Point {
	if !ValidLonLat(a.Lon, a.Lat) || !ValidLonLat(b.Lon, b.Lat) {
		return nil
	}

	n := int(math.Ceil(Distance(a, b) * degrees / pathStepDegrees))
	if n < 1 {
		n = 1
	}

	interp := Interpolate(a, b)
	samples := make([]core.LonLat, 0, n+1)
	for i := 0; i <= n; i++ {
		samples = append(samples, interp(float64(i)/float64(n)))
	}
	return s.runs(samples)
}

// RingPath projects a polygon ring vertex by vertex with the same splitting rules
// as LinePath.
func (s ProjectionState) RingPath(ring []core.LonLat) [][]core.Point {
	return s.runs(ring)
}

func (s ProjectionState) runs(coords []core.LonLat) [][]core.Point {
	var out [][]core.Point
	var run []core.Point

	flush := func() {
		if len(run) >= 2 {
			out = append(out, run)
		}
		run = nil
	}

	for i, c := range coords {
		p, ok := s.Project(c)
		if !ok || !s.IsVisible(c) {
			flush()
			continue
		}
		if s.Mode == Equirectangular && i > 0 && math.Abs(c.Lon-coords[i-1].Lon) > 180 {
			flush()
		}
		run = append(run, p)
	}
	flush()

	return out
}
