package geo

import (
	"math"

	"github.com/jftuga/geodist"
	"github.com/joshuaberetta/cvglobe/pkg/core"
)

const (
	radians = math.Pi / 180
	degrees = 180 / math.Pi
)

func haversin(x float64) float64 {
	s := math.Sin(x / 2)
	return s * s
}

// Distance returns the great-circle angular distance between a and b in radians.
func Distance(a, b core.LonLat) float64 {
	l0, p0 := a.Lon*radians, a.Lat*radians
	l1, p1 := b.Lon*radians, b.Lat*radians

	dl := l1 - l0
	sinDl, cosDl := math.Sin(dl), math.Cos(dl)
	sinP0, cosP0 := math.Sin(p0), math.Cos(p0)
	sinP1, cosP1 := math.Sin(p1), math.Cos(p1)

	x := cosP1 * sinDl
	y := cosP0*sinP1 - sinP0*cosP1*cosDl
	z := sinP0*sinP1 + cosP0*cosP1*cosDl
	return math.Atan2(math.Sqrt(x*x+y*y), z)
}

// Interpolate returns a function that walks the great circle from a (t=0) to b (t=1).
func Interpolate(a, b core.LonLat) func(t float64) core.LonLat {
	x0, y0 := a.Lon*radians, a.Lat*radians
	x1, y1 := b.Lon*radians, b.Lat*radians

	cy0, sy0 := math.Cos(y0), math.Sin(y0)
	cy1, sy1 := math.Cos(y1), math.Sin(y1)
	kx0, ky0 := cy0*math.Cos(x0), cy0*math.Sin(x0)
	kx1, ky1 := cy1*math.Cos(x1), cy1*math.Sin(x1)

	d := 2 * math.Asin(math.Sqrt(haversin(y1-y0)+cy0*cy1*haversin(x1-x0)))
	k := math.Sin(d)

	if d == 0 || k == 0 {
		return func(float64) core.LonLat { return a }
	}

	return func(t float64) core.LonLat {
		t *= d
		bb := math.Sin(t) / k
		aa := math.Sin(d-t) / k
		x := aa*kx0 + bb*kx1
		y := aa*ky0 + bb*ky1
		z := aa*sy0 + bb*sy1
		return core.LonLat{
			Lon: math.Atan2(y, x) * degrees,
			Lat: math.Atan2(z, math.Sqrt(x*x+y*y)) * degrees,
		}
	}
}

// HaversineKm returns the surface distance between a and b in kilometres.
func HaversineKm(a, b core.LonLat) float64 {
	_, km := geodist.HaversineDistance(
		geodist.Coord{Lat: a.Lat, Lon: a.Lon},
		geodist.Coord{Lat: b.Lat, Lon: b.Lon},
	)
	return km
}

// Rotation holds Euler angles in degrees: yaw (lambda), pitch (phi) and roll (gamma).
type Rotation struct {
	Lambda float64 `json:"lambda"`
	Phi    float64 `json:"phi"`
	Gamma  float64 `json:"gamma"`
}

func wrapLambda(l float64) float64 {
	if l > math.Pi {
		return l - 2*math.Pi
	}
	if l < -math.Pi {
		return l + 2*math.Pi
	}
	return l
}

// rotate applies r to a coordinate given in radians.
func (r Rotation) rotate(l, p float64) (float64, float64) {
	l = wrapLambda(l + r.lambda())
	if r.Phi == 0 && r.Gamma == 0 {
		return l, p
	}

	cosDp, sinDp := math.Cos(r.Phi*radians), math.Sin(r.Phi*radians)
	cosDg, sinDg := math.Cos(r.Gamma*radians), math.Sin(r.Gamma*radians)

	cosP := math.Cos(p)
	x := math.Cos(l) * cosP
	y := math.Sin(l) * cosP
	z := math.Sin(p)
	k := z*cosDp + x*sinDp

	return math.Atan2(y*cosDg-k*sinDg, x*cosDp-z*sinDp), asin(k*cosDg + y*sinDg)
}

// unrotate is the inverse of rotate.
func (r Rotation) unrotate(l, p float64) (float64, float64) {
	if r.Phi != 0 || r.Gamma != 0 {
		cosDp, sinDp := math.Cos(r.Phi*radians), math.Sin(r.Phi*radians)
		cosDg, sinDg := math.Cos(r.Gamma*radians), math.Sin(r.Gamma*radians)

		cosP := math.Cos(p)
		x := math.Cos(l) * cosP
		y := math.Sin(l) * cosP
		z := math.Sin(p)
		k := z*cosDg - y*sinDg

		l = math.Atan2(y*cosDg+z*sinDg, x*cosDp+k*sinDp)
		p = asin(k*cosDp - x*sinDp)
	}
	return wrapLambda(l - r.lambda()), p
}

// lambda is the yaw in radians reduced to (-2π, 2π).
func (r Rotation) lambda() float64 {
	return math.Mod(r.Lambda*radians, 2*math.Pi)
}

func asin(x float64) float64 {
	if x > 1 {
		return math.Pi / 2
	}
	if x < -1 {
		return -math.Pi / 2
	}
	return math.Asin(x)
}
