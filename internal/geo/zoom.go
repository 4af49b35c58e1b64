package geo

import (
	"math"

	"github.com/joshuaberetta/cvglobe/pkg/core"
)

// Flat map zoom limits and button factors.
const (
	MinZoom       = 1.0
	MaxZoom       = 8.0
	ZoomInFactor  = 1.5
	ZoomOutFactor = 0.67
)

// Transform is a pan/zoom transform: screen = point*K + (X, Y).
type Transform struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	K float64 `json:"k"`
}

// Identity is the unzoomed transform.
var Identity = Transform{K: 1}

// Apply maps an untransformed point to screen space.
func (t Transform) Apply(p core.Point) core.Point {
	return core.Point{X: p.X*t.K + t.X, Y: p.Y*t.K + t.Y}
}

// Invert maps a screen point back to untransformed space.
func (t Transform) Invert(p core.Point) core.Point {
	return core.Point{X: (p.X - t.X) / t.K, Y: (p.Y - t.Y) / t.K}
}

// WithZoom returns a copy with t applied after clamping K to [MinZoom, MaxZoom]
// and the translation to the pannable extent. Globe projections ignore zoom.
func (s ProjectionState) WithZoom(t Transform) ProjectionState {
	if s.Mode != Equirectangular {
		return s
	}
	if t.K <= 0 || math.IsNaN(t.K) {
		t.K = MinZoom
	}
	t.K = math.Max(MinZoom, math.Min(MaxZoom, t.K))
	s.Zoom = s.constrain(t)
	return s
}

// ZoomBy scales the flat map by factor around anchor, which stays fixed on screen.
func (s ProjectionState) ZoomBy(factor float64, anchor core.Point) ProjectionState {
	if s.Mode != Equirectangular {
		return s
	}
	t := s.Zoom
	k := math.Max(MinZoom, math.Min(MaxZoom, t.K*factor))
	u := t.Invert(anchor)
	return s.WithZoom(Transform{X: anchor.X - u.X*k, Y: anchor.Y - u.Y*k, K: k})
}

// Pan moves the flat map by (dx, dy) pixels.
func (s ProjectionState) Pan(dx, dy float64) ProjectionState {
	if s.Mode != Equirectangular {
		return s
	}
	t := s.Zoom
	t.X += dx
	t.Y += dy
	return s.WithZoom(t)
}

// ResetZoom returns to the identity transform.
func (s ProjectionState) ResetZoom() ProjectionState {
	if s.Mode != Equirectangular {
		return s
	}
	s.Zoom = Identity
	return s
}

// constrain keeps the translated map inside [-w/2, -h/2]..[1.5w, 1.5h].
func (s ProjectionState) constrain(t Transform) Transform {
	ex0, ey0 := -0.5*s.Width, -0.5*s.Height
	ex1, ey1 := 1.5*s.Width, 1.5*s.Height

	dx0 := (0-t.X)/t.K - ex0
	dx1 := (s.Width-t.X)/t.K - ex1
	dy0 := (0-t.Y)/t.K - ey0
	dy1 := (s.Height-t.Y)/t.K - ey1

	var tx, ty float64
	if dx1 > dx0 {
		tx = (dx0 + dx1) / 2
	} else if m := math.Min(0, dx0); m != 0 {
		tx = m
	} else {
		tx = math.Max(0, dx1)
	}
	if dy1 > dy0 {
		ty = (dy0 + dy1) / 2
	} else if m := math.Min(0, dy0); m != 0 {
		ty = m
	} else {
		ty = math.Max(0, dy1)
	}

	return Transform{X: t.X + t.K*tx, Y: t.Y + t.K*ty, K: t.K}
}
