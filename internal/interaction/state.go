package interaction

import (
	"math"
	"time"

	"github.com/joshuaberetta/cvglobe/internal/geo"
)

// State is the pointer/animation state of a view.
type State int

const (
	Idle State = iota
	Spinning
	Dragging
	Animating
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Spinning:
		return "spinning"
	case Dragging:
		return "dragging"
	case Animating:
		return "animating"
	default:
		return "unknown"
	}
}

// easeCubicInOut is the symmetric cubic easing used for focus animations.
func easeCubicInOut(t float64) float64 {
	t *= 2
	if t <= 1 {
		return t * t * t / 2
	}
	t -= 2
	return (t*t*t + 2) / 2
}

// tween interpolates a rotation over a fixed duration. The start time is
// taken from the first frame that samples it.
type tween struct {
	from, to geo.Rotation
	start    time.Time
	duration time.Duration
}

func newTween(from, to geo.Rotation, d time.Duration) *tween {
	from.Lambda = normalizeDegrees(from.Lambda)
	to.Lambda = nearestTurn(to.Lambda, from.Lambda)
	return &tween{from: from, to: to, duration: d}
}

// at samples the tween. done reports that the end rotation was reached.
func (tw *tween) at(now time.Time) (r geo.Rotation, done bool) {
	if tw.start.IsZero() {
		tw.start = now
	}
	if tw.duration <= 0 {
		return tw.to, true
	}
	t := float64(now.Sub(tw.start)) / float64(tw.duration)
	if t >= 1 {
		return tw.to, true
	}
	if t < 0 {
		t = 0
	}
	e := easeCubicInOut(t)
	return geo.Rotation{
		Lambda: tw.from.Lambda + (tw.to.Lambda-tw.from.Lambda)*e,
		Phi:    tw.from.Phi + (tw.to.Phi-tw.from.Phi)*e,
		Gamma:  tw.from.Gamma + (tw.to.Gamma-tw.from.Gamma)*e,
	}, false
}

// normalizeDegrees reduces an angle to (-180, 180].
func normalizeDegrees(a float64) float64 {
	a = math.Mod(a, 360)
	if a > 180 {
		a -= 360
	} else if a <= -180 {
		a += 360
	}
	return a
}

// nearestTurn returns target shifted by whole turns to lie within 180° of ref.
func nearestTurn(target, ref float64) float64 {
	return ref + normalizeDegrees(target-ref)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
