package stream

import (
	"errors"
	"fmt"

	"github.com/joshuaberetta/cvglobe/internal/dispatcher"
	"github.com/joshuaberetta/cvglobe/internal/geo"
	"github.com/joshuaberetta/cvglobe/internal/scene"
	"github.com/joshuaberetta/cvglobe/pkg/streaming"
)

var errZoom = errors.New("zoom needs a positive factor or a direction")

// action wraps a handler that neither reads a payload nor returns a result.
func action(fn func()) dispatcher.HandlerFunc {
	return func(dispatcher.Event) (any, error) {
		fn()
		return nil, nil
	}
}

// registerHandlers maps every client message type to a controller call.
func (s *session) registerHandlers() {
	d := s.disp

	d.Register(streaming.TypeDragStart, action(s.ctrl.DragStart))
	d.Register(streaming.TypeDrag, dispatcher.Typed(func(p streaming.DragPayload) (any, error) {
		s.ctrl.Drag(p.DX, p.DY)
		return nil, nil
	}))
	d.Register(streaming.TypeDragEnd, action(s.ctrl.DragEnd))

	d.Register(streaming.TypeClickMarker, dispatcher.Typed(func(p streaming.ClickPayload) (any, error) {
		if p.ID == "" && p.Position != nil {
			id, ok := s.ctrl.MarkerAt(*p.Position)
			if !ok {
				s.ctrl.ClickBackground()
				s.sendSelection()
				return nil, nil
			}
			p.ID = id
		}
		if err := s.ctrl.ClickMarker(p.ID); err != nil {
			return nil, fmt.Errorf("%w: %s", err, p.ID)
		}
		s.sendSelection()
		s.sendTooltip()
		return nil, nil
	}), dispatcher.Logged())
	d.Register(streaming.TypeClickJourney, dispatcher.Typed(func(p streaming.ClickPayload) (any, error) {
		if err := s.ctrl.ClickJourney(p.ID); err != nil {
			return nil, fmt.Errorf("%w: %s", err, p.ID)
		}
		s.sendSelection()
		return nil, nil
	}), dispatcher.Logged())
	d.Register(streaming.TypeClickBackground, action(func() {
		s.ctrl.ClickBackground()
		s.sendSelection()
	}))

	d.Register(streaming.TypeHoverMarker, dispatcher.Typed(func(p streaming.HoverPayload) (any, error) {
		if p.ID == "" {
			id, ok := s.ctrl.MarkerAt(p.Position)
			if !ok {
				s.ctrl.HoverEnd()
				s.sendTooltip()
				return nil, nil
			}
			p.ID = id
		}
		if err := s.ctrl.HoverMarker(p.ID, p.Position); err != nil {
			return nil, fmt.Errorf("%w: %s", err, p.ID)
		}
		s.sendTooltip()
		return nil, nil
	}))
	d.Register(streaming.TypeHoverJourney, dispatcher.Typed(func(p streaming.HoverPayload) (any, error) {
		if err := s.ctrl.HoverJourney(p.ID, p.Position); err != nil {
			return nil, fmt.Errorf("%w: %s", err, p.ID)
		}
		s.sendTooltip()
		return nil, nil
	}))
	d.Register(streaming.TypeHoverEnd, action(func() {
		s.ctrl.HoverEnd()
		s.sendTooltip()
	}))

	d.Register(streaming.TypeZoom, dispatcher.Typed(func(p streaming.ZoomPayload) (any, error) {
		switch {
		case p.Factor > 0:
			s.ctrl.ZoomBy(p.Factor)
		case p.Direction == streaming.ZoomIn:
			s.ctrl.ZoomIn()
		case p.Direction == streaming.ZoomOut:
			s.ctrl.ZoomOut()
		default:
			return nil, errZoom
		}
		return nil, nil
	}))
	d.Register(streaming.TypeResetZoom, action(s.ctrl.ResetZoom))
	d.Register(streaming.TypeResetRotation, action(s.ctrl.ResetRotation))
	d.Register(streaming.TypeTogglePlay, func(dispatcher.Event) (any, error) {
		return s.ctrl.TogglePlay().String(), nil
	}, dispatcher.Logged())

	d.Register(streaming.TypeFilter, dispatcher.Typed(func(p streaming.FilterPayload) (any, error) {
		s.ctrl.SetFilter(scene.Filter{Types: p.Types, Countries: p.Countries, Regions: p.Regions})
		return nil, nil
	}), dispatcher.Logged())
	d.Register(streaming.TypeResize, dispatcher.Typed(func(p streaming.ResizePayload) (any, error) {
		// A zero height falls back to the mode's default aspect.
		if p.Width <= 0 || p.Width > MaxViewport || p.Height < 0 || p.Height > MaxViewport {
			return nil, fmt.Errorf("invalid viewport %gx%g", p.Width, p.Height)
		}
		s.ctrl.Resize(p.Width, p.Height)
		return nil, nil
	}))
	d.Register(streaming.TypeMode, dispatcher.Typed(func(p streaming.ModePayload) (any, error) {
		mode, err := geo.ParseMode(p.Mode)
		if err != nil {
			return nil, err
		}
		s.ctrl.SetMode(mode)
		s.sendTooltip()
		return nil, nil
	}), dispatcher.Logged())
}
