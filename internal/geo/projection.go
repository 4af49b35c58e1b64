package geo

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/joshuaberetta/cvglobe/pkg/core"
)

// Mode selects the map projection.
type Mode string

const (
	Orthographic    Mode = "orthographic"
	Equirectangular Mode = "equirectangular"
)

var ErrUnknownMode = errors.New("unknown projection mode")

// ParseMode accepts a mode name in any case. "globe" and "flat" are aliases.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "orthographic", "globe":
		return Orthographic, nil
	case "equirectangular", "flat", "map":
		return Equirectangular, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

// Flat map constants.
const (
	FlatScaleDivisor = 6.5
	FlatCenterLat    = 10.0
	FlatMaxHeight    = 500.0
	FlatHeightRatio  = 0.6
)

// GlobeOptions tunes the orthographic projection.
type GlobeOptions struct {
	ScaleDivisor  float64 `json:"scaleDivisor" mapstructure:"scaleDivisor"`
	Tilt          float64 `json:"tilt" mapstructure:"tilt"`
	InitialLambda float64 `json:"initialLambda" mapstructure:"initialLambda"`
}

// DefaultGlobeOptions matches the portfolio globe: scale width/2.3, tilted 20 degrees.
func DefaultGlobeOptions() GlobeOptions {
	return GlobeOptions{
		ScaleDivisor:  2.3,
		Tilt:          -20,
		InitialLambda: -30,
	}
}

// ProjectionState is an immutable description of a projection. All methods are
// pure; "mutating" methods return a modified copy.
type ProjectionState struct {
	Mode         Mode        `json:"mode"`
	Width        float64     `json:"width"`
	Height       float64     `json:"height"`
	Scale        float64     `json:"scale"`
	ScaleDivisor float64     `json:"scaleDivisor"`
	Translate    core.Point  `json:"translate"`
	Rotation     Rotation    `json:"rotation"`
	Center       core.LonLat `json:"center"`
	Zoom         Transform   `json:"zoom"`
}

// NewOrthographic builds the globe projection for a square-ish viewport.
func NewOrthographic(width, height float64, opts GlobeOptions) ProjectionState {
	if opts.ScaleDivisor <= 0 {
		opts.ScaleDivisor = DefaultGlobeOptions().ScaleDivisor
	}
	return ProjectionState{
		Mode:         Orthographic,
		Width:        width,
		Height:       height,
		Scale:        width / opts.ScaleDivisor,
		ScaleDivisor: opts.ScaleDivisor,
		Translate:    core.Point{X: width / 2, Y: height / 2},
		Rotation:     Rotation{Lambda: opts.InitialLambda, Phi: opts.Tilt},
		Zoom:         Identity,
	}
}

// NewEquirectangular builds the flat world map projection centred at 10°N.
func NewEquirectangular(width, height float64) ProjectionState {
	return ProjectionState{
		Mode:         Equirectangular,
		Width:        width,
		Height:       height,
		Scale:        width / FlatScaleDivisor,
		ScaleDivisor: FlatScaleDivisor,
		Translate:    core.Point{X: width / 2, Y: height / 2},
		Center:       core.LonLat{Lon: 0, Lat: FlatCenterLat},
		Zoom:         Identity,
	}
}

// FlatMapHeight returns the flat map height for a container width.
func FlatMapHeight(width float64) float64 {
	return math.Min(width*FlatHeightRatio, FlatMaxHeight)
}

// WithRotation returns a copy rotated to r. Flat maps ignore rotation.
func (s ProjectionState) WithRotation(r Rotation) ProjectionState {
	if s.Mode != Orthographic {
		return s
	}
	s.Rotation = r
	return s
}

// WithSize rebuilds scale and translate for a new viewport, keeping rotation and zoom.
func (s ProjectionState) WithSize(width, height float64) ProjectionState {
	s.Width = width
	s.Height = height
	s.Scale = width / s.ScaleDivisor
	s.Translate = core.Point{X: width / 2, Y: height / 2}
	if s.Mode == Equirectangular {
		s = s.WithZoom(s.Zoom)
	}
	return s
}

// Radius is the on-screen radius of the globe silhouette.
func (s ProjectionState) Radius() float64 {
	return s.Scale
}

// Project maps a geographic coordinate to screen space. It reports false when
// the coordinate is malformed. Far-side globe points still project; cull them
// with IsVisible.
func (s ProjectionState) Project(c core.LonLat) (core.Point, bool) {
	if !ValidLonLat(c.Lon, c.Lat) {
		return core.Point{}, false
	}

	switch s.Mode {
	case Orthographic:
		l, p := s.Rotation.rotate(c.Lon*radians, c.Lat*radians)
		x := math.Cos(p) * math.Sin(l)
		y := math.Sin(p)
		return core.Point{
			X: s.Translate.X + x*s.Scale,
			Y: s.Translate.Y - y*s.Scale,
		}, true
	case Equirectangular:
		x := s.Translate.X + s.Scale*(c.Lon-s.Center.Lon)*radians
		y := s.Translate.Y - s.Scale*(c.Lat-s.Center.Lat)*radians
		return s.Zoom.Apply(core.Point{X: x, Y: y}), true
	}
	return core.Point{}, false
}

// Invert maps a screen point back to a geographic coordinate. It reports false
// outside the globe silhouette or outside the flat world bounds.
func (s ProjectionState) Invert(p core.Point) (core.LonLat, bool) {
	if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsInf(p.X, 0) || math.IsInf(p.Y, 0) || s.Scale == 0 {
		return core.LonLat{}, false
	}

	switch s.Mode {
	case Orthographic:
		x := (p.X - s.Translate.X) / s.Scale
		y := (s.Translate.Y - p.Y) / s.Scale
		z2 := x*x + y*y
		if z2 > 1+1e-12 {
			return core.LonLat{}, false
		}
		cc := math.Sqrt(math.Max(0, 1-z2))
		l, ph := s.Rotation.unrotate(math.Atan2(x, cc), asin(y))
		return core.LonLat{Lon: l * degrees, Lat: ph * degrees}, true
	case Equirectangular:
		u := s.Zoom.Invert(p)
		lon := (u.X-s.Translate.X)/s.Scale*degrees + s.Center.Lon
		lat := -(u.Y-s.Translate.Y)/s.Scale*degrees + s.Center.Lat
		if !ValidLonLat(lon, lat) {
			return core.LonLat{}, false
		}
		return core.LonLat{Lon: lon, Lat: lat}, true
	}
	return core.LonLat{}, false
}

// ViewCenter is the coordinate currently under the viewport centre.
func (s ProjectionState) ViewCenter() (core.LonLat, bool) {
	return s.Invert(s.Translate)
}

// IsVisible reports whether c is on the visible hemisphere of the globe.
// Every valid coordinate is visible on the flat map.
func (s ProjectionState) IsVisible(c core.LonLat) bool {
	if !ValidLonLat(c.Lon, c.Lat) {
		return false
	}
	if s.Mode != Orthographic {
		return true
	}
	center, ok := s.ViewCenter()
	if !ok {
		return false
	}
	return Distance(c, center) <= math.Pi/2
}
