package interaction

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/joshuaberetta/cvglobe/internal/cache"
	"github.com/joshuaberetta/cvglobe/internal/geo"
	"github.com/joshuaberetta/cvglobe/internal/scene"
	"github.com/joshuaberetta/cvglobe/pkg/core"
)

var (
	ErrUnknownLocation = errors.New("unknown location")
	ErrUnknownJourney  = errors.New("unknown journey")
)

// Config tunes the controller.
type Config struct {
	Globe           geo.GlobeOptions `json:"globe" mapstructure:"globe"`
	SpinSpeed       float64          `json:"spinSpeed" mapstructure:"spinSpeed"`             // degrees per millisecond
	DragSensitivity float64          `json:"dragSensitivity" mapstructure:"dragSensitivity"` // degrees per pixel
	MinPhi          float64          `json:"minPhi" mapstructure:"minPhi"`
	MaxPhi          float64          `json:"maxPhi" mapstructure:"maxPhi"`
	FocusDuration   time.Duration    `json:"focusDuration" mapstructure:"focusDuration"`
	FocusLatOffset  float64          `json:"focusLatOffset" mapstructure:"focusLatOffset"`
	AutoSpin        bool             `json:"autoSpin" mapstructure:"autoSpin"`
}

// DefaultConfig returns the portfolio globe settings.
func DefaultConfig() Config {
	return Config{
		Globe:           geo.DefaultGlobeOptions(),
		SpinSpeed:       0.006,
		DragSensitivity: 0.4,
		MinPhi:          -60,
		MaxPhi:          60,
		FocusDuration:   1000 * time.Millisecond,
		FocusLatOffset:  10,
		AutoSpin:        true,
	}
}

// Content is the data a view draws.
type Content struct {
	Data      core.GlobeData
	Index     *cache.LocationIndex
	Countries []scene.Country
	Regions   scene.RegionTable
}

// ContentSource supplies the current content. It may change between frames.
type ContentSource interface {
	Content() Content
}

// FrameSample describes one composed frame.
type FrameSample struct {
	Time     time.Time
	Mode     geo.Mode
	State    State
	Markers  int
	Segments int
	Skipped  int
	Duration time.Duration
}

// FrameRecorder receives frame samples.
type FrameRecorder interface {
	RecordFrame(FrameSample)
}

// View is a snapshot of the controller's user-visible state.
type View struct {
	State      State               `json:"-"`
	StateName  string              `json:"state"`
	Projection geo.ProjectionState `json:"projection"`
	Selection  scene.Selection     `json:"selection"`
	Tooltip    scene.Tooltip       `json:"tooltip"`
	Filter     scene.Filter        `json:"filter"`
}

// Controller owns the projection, selection and tooltip of one view and
// applies pointer input and frame ticks to them. All methods are safe for
// concurrent use.
type Controller struct {
	mu sync.Mutex

	cfg      Config
	source   ContentSource
	recorder FrameRecorder
	logger   *slog.Logger

	proj      geo.ProjectionState
	state     State
	selection scene.Selection
	hover     scene.Hover
	tooltip   scene.Tooltip
	filter    scene.Filter
	tween     *tween

	spinStart  time.Time
	spinLambda float64
}

// Option configures a Controller.
type Option func(*Controller)

// WithRecorder reports every composed frame to r.
func WithRecorder(r FrameRecorder) Option {
	return func(c *Controller) {
		c.recorder = r
	}
}

// WithLogger sets the controller logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = l
	}
}

// New creates a controller for a viewport. Globe views start spinning when
// cfg.AutoSpin is set; flat views start idle.
func New(cfg Config, mode geo.Mode, width, height float64, source ContentSource, opts ...Option) *Controller {
	c := &Controller{
		cfg:    cfg,
		source: source,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.setMode(mode, width, height)
	return c
}

func (c *Controller) setMode(mode geo.Mode, width, height float64) {
	c.tween = nil
	c.spinStart = time.Time{}
	if mode == geo.Equirectangular {
		if height <= 0 {
			height = geo.FlatMapHeight(width)
		}
		c.proj = geo.NewEquirectangular(width, height)
		c.state = Idle
		return
	}
	if height <= 0 {
		height = width
	}
	c.proj = geo.NewOrthographic(width, height, c.cfg.Globe)
	c.spinLambda = c.proj.Rotation.Lambda
	c.state = Idle
	if c.cfg.AutoSpin {
		c.state = Spinning
	}
}

// SetMode switches between the globe and the flat map, keeping selection and filter.
func (c *Controller) SetMode(mode geo.Mode) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.proj.Mode == mode {
		return
	}
	c.setMode(mode, c.proj.Width, 0)
	c.hover = scene.Hover{}
	c.tooltip = scene.Tooltip{}
}

// State returns the current interaction state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Projection returns the current projection.
func (c *Controller) Projection() geo.ProjectionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.proj
}

// Selection returns the current selection.
func (c *Controller) Selection() scene.Selection {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selection
}

// Tooltip returns the current tooltip.
func (c *Controller) Tooltip() scene.Tooltip {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tooltip
}

// View returns a snapshot of the user-visible state.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return View{
		State:      c.state,
		StateName:  c.state.String(),
		Projection: c.proj,
		Selection:  c.selection,
		Tooltip:    c.tooltip,
		Filter:     c.filter,
	}
}

// Tick advances auto-spin or the focus animation to now. It reports whether the
// projection changed.
func (c *Controller) Tick(now time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case Spinning:
		if c.spinStart.IsZero() {
			c.spinStart = now
		}
		elapsed := float64(now.Sub(c.spinStart)) / float64(time.Millisecond)
		r := c.proj.Rotation
		r.Lambda = c.spinLambda + c.cfg.SpinSpeed*elapsed
		c.proj = c.proj.WithRotation(r)
		return true
	case Animating:
		if c.tween == nil {
			c.state = Idle
			return false
		}
		r, done := c.tween.at(now)
		c.proj = c.proj.WithRotation(r)
		if done {
			c.tween = nil
			c.state = Idle
		}
		return true
	default:
		return false
	}
}

// stopMotion cancels spin and any in-flight animation.
func (c *Controller) stopMotion() {
	c.tween = nil
	c.spinStart = time.Time{}
}

// DragStart begins a drag, cancelling spin and animation.
func (c *Controller) DragStart() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopMotion()
	c.state = Dragging
}

// Drag applies a pointer movement in pixels. The globe rotates with phi
// clamped; the flat map pans. Ignored outside a drag.
func (c *Controller) Drag(dx, dy float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Dragging {
		return
	}
	if c.proj.Mode == geo.Equirectangular {
		c.proj = c.proj.Pan(dx, dy)
		return
	}
	r := c.proj.Rotation
	r.Lambda += dx * c.cfg.DragSensitivity
	r.Phi = clamp(r.Phi-dy*c.cfg.DragSensitivity, c.cfg.MinPhi, c.cfg.MaxPhi)
	c.proj = c.proj.WithRotation(r)
}

// DragEnd finishes a drag. Spin stays off until TogglePlay.
func (c *Controller) DragEnd() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == Dragging {
		c.state = Idle
	}
}

// TogglePlay starts or stops auto-spin. Starting resumes from the current
// rotation. Flat maps do not spin.
func (c *Controller) TogglePlay() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.proj.Mode != geo.Orthographic {
		return c.state
	}
	if c.state == Spinning {
		c.stopMotion()
		c.state = Idle
		return c.state
	}
	c.stopMotion()
	c.spinLambda = c.proj.Rotation.Lambda
	c.state = Spinning
	return c.state
}

// ClickMarker selects a location. On the globe it also starts the focus
// animation that brings the location to the centre. Clicks on markers hidden
// behind the globe are ignored.
func (c *Controller) ClickMarker(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	content := c.content()
	loc, ok := content.Index.Get(id)
	if !ok {
		return ErrUnknownLocation
	}
	ll := core.LonLat{Lon: loc.Longitude, Lat: loc.Latitude}
	if !c.proj.IsVisible(ll) {
		return nil
	}

	c.selection = scene.SelectLocation(id)

	if c.proj.Mode == geo.Equirectangular {
		c.tooltip = scene.Tooltip{}
		return nil
	}

	c.stopMotion()
	target := geo.Rotation{Lambda: -loc.Longitude, Phi: -loc.Latitude + c.cfg.FocusLatOffset}
	c.tween = newTween(c.proj.Rotation, target, c.cfg.FocusDuration)
	c.state = Animating
	return nil
}

// ClickJourney selects a journey without animating.
func (c *Controller) ClickJourney(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := findJourney(c.content().Data.Journeys, id); !ok {
		return ErrUnknownJourney
	}
	c.selection = scene.SelectJourney(id)
	return nil
}

// ClickBackground clears the selection. Spin state is unchanged.
func (c *Controller) ClickBackground() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selection = scene.Selection{}
}

// HoverMarker shows the tooltip for a location at pos.
func (c *Controller) HoverMarker(id string, pos core.Point) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	loc, ok := c.content().Index.Get(id)
	if !ok {
		return ErrUnknownLocation
	}
	if !c.proj.IsVisible(core.LonLat{Lon: loc.Longitude, Lat: loc.Latitude}) {
		return nil
	}
	c.hover = scene.Hover{LocationID: id}
	c.tooltip = scene.Tooltip{
		Visible:  true,
		Position: pos,
		Content:  scene.LocationTooltip(c.proj.Mode, loc),
	}
	return nil
}

// HoverJourney shows the tooltip for a journey at pos.
func (c *Controller) HoverJourney(id string, pos core.Point) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	content := c.content()
	j, ok := findJourney(content.Data.Journeys, id)
	if !ok {
		return ErrUnknownJourney
	}
	c.hover = scene.Hover{JourneyID: id}
	c.tooltip = scene.Tooltip{
		Visible:  true,
		Position: pos,
		Content:  scene.JourneyTooltip(j, content.Index.Resolve(j.Locations)),
	}
	return nil
}

// HoverEnd hides the tooltip.
func (c *Controller) HoverEnd() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hover = scene.Hover{}
	c.tooltip = scene.Tooltip{}
}

// SetFilter replaces the filter. Rotation and zoom are kept.
func (c *Controller) SetFilter(f scene.Filter) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.filter = f
}

// Resize rebuilds the projection for a new viewport, keeping rotation and zoom.
// A zero height gives a square globe or the default flat map aspect.
func (c *Controller) Resize(width, height float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if height <= 0 {
		height = width
		if c.proj.Mode == geo.Equirectangular {
			height = geo.FlatMapHeight(width)
		}
	}
	c.proj = c.proj.WithSize(width, height)
}

// ZoomBy zooms the flat map around the viewport centre.
func (c *Controller) ZoomBy(factor float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.proj = c.proj.ZoomBy(factor, c.proj.Translate)
}

// ZoomIn zooms the flat map in one step.
func (c *Controller) ZoomIn() { c.ZoomBy(geo.ZoomInFactor) }

// ZoomOut zooms the flat map out one step.
func (c *Controller) ZoomOut() { c.ZoomBy(geo.ZoomOutFactor) }

// ResetZoom returns the flat map to the identity transform.
func (c *Controller) ResetZoom() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.proj = c.proj.ResetZoom()
}

// ResetRotation returns the globe to its initial orientation.
func (c *Controller) ResetRotation() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.proj.Mode != geo.Orthographic {
		return
	}
	c.stopMotion()
	c.proj = c.proj.WithRotation(geo.Rotation{Lambda: c.cfg.Globe.InitialLambda, Phi: c.cfg.Globe.Tilt})
	c.spinLambda = c.cfg.Globe.InitialLambda
	if c.state == Animating || c.state == Dragging {
		c.state = Idle
	}
}

// Scene composes the current frame.
func (c *Controller) Scene() scene.Scene {
	c.mu.Lock()
	in := c.sceneInput()
	state := c.state
	c.mu.Unlock()

	start := time.Now()
	s := scene.Compose(in)
	if len(s.Skipped) > 0 {
		c.logger.Debug("skipped unprojectable locations", "ids", s.Skipped)
	}
	if c.recorder != nil {
		c.recorder.RecordFrame(FrameSample{
			Time:     start,
			Mode:     s.Mode,
			State:    state,
			Markers:  len(s.Markers),
			Segments: len(s.Segments),
			Skipped:  len(s.Skipped),
			Duration: time.Since(start),
		})
	}
	return s
}

// MarkerAt returns the ID of the topmost visible marker under the screen
// point p in the current view.
func (c *Controller) MarkerAt(p core.Point) (string, bool) {
	c.mu.Lock()
	in := c.sceneInput()
	c.mu.Unlock()

	m, ok := scene.Compose(in).MarkerAt(p)
	return m.ID, ok
}

// sceneInput must be called with c.mu held.
func (c *Controller) sceneInput() scene.Input {
	content := c.content()
	return scene.Input{
		State:     c.proj,
		Data:      content.Data,
		Index:     content.Index,
		Countries: content.Countries,
		Regions:   content.Regions,
		Filter:    c.filter,
		Selection: c.selection,
		Hover:     c.hover,
	}
}

// content must be called with c.mu held.
func (c *Controller) content() Content {
	var content Content
	if c.source != nil {
		content = c.source.Content()
	}
	if content.Index == nil {
		content.Index = cache.NewLocationIndex(content.Data.Locations)
	}
	return content
}

func findJourney(journeys []core.Journey, id string) (core.Journey, bool) {
	for _, j := range journeys {
		if j.ID == id {
			return j, true
		}
	}
	return core.Journey{}, false
}
