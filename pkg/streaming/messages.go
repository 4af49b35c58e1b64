package streaming

import (
	"encoding/json"
	"fmt"

	"github.com/joshuaberetta/cvglobe/pkg/core"
)

// Server to client message types.
const (
	TypeScene     = "scene"
	TypeSelection = "selection"
	TypeTooltip   = "tooltip"
	TypeTimeline  = "timeline"
	TypeStatus    = "status"
	TypeError     = "error"
)

// Client to server message types.
const (
	TypeDragStart       = "drag_start"
	TypeDrag            = "drag"
	TypeDragEnd         = "drag_end"
	TypeClickMarker     = "click_marker"
	TypeClickJourney    = "click_journey"
	TypeClickBackground = "click_background"
	TypeHoverMarker     = "hover_marker"
	TypeHoverJourney    = "hover_journey"
	TypeHoverEnd        = "hover_end"
	TypeZoom            = "zoom"
	TypeResetZoom       = "reset_zoom"
	TypeResetRotation   = "reset_rotation"
	TypeTogglePlay      = "toggle_play"
	TypeFilter          = "filter"
	TypeResize          = "resize"
	TypeMode            = "mode"
)

// ClientTypes lists every message type a client may send.
var ClientTypes = []string{
	TypeDragStart, TypeDrag, TypeDragEnd,
	TypeClickMarker, TypeClickJourney, TypeClickBackground,
	TypeHoverMarker, TypeHoverJourney, TypeHoverEnd,
	TypeZoom, TypeResetZoom, TypeResetRotation,
	TypeTogglePlay, TypeFilter, TypeResize, TypeMode,
}

// Envelope wraps all messages sent over the WebSocket.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// DragPayload carries a pointer delta in pixels.
type DragPayload struct {
	DX float64 `json:"dx"`
	DY float64 `json:"dy"`
}

// ClickPayload names the clicked marker or journey. A marker click may send
// only the pointer position and let the server hit-test it.
type ClickPayload struct {
	ID       string      `json:"id"`
	Position *core.Point `json:"position,omitempty"`
}

// HoverPayload names the hovered entity and the pointer position. An empty
// marker ID is resolved from the position.
type HoverPayload struct {
	ID       string     `json:"id"`
	Position core.Point `json:"position"`
}

// Zoom directions.
const (
	ZoomIn  = "in"
	ZoomOut = "out"
)

// ZoomPayload zooms by Factor, or by the fixed step for Direction when
// Factor is zero.
type ZoomPayload struct {
	Factor    float64 `json:"factor,omitempty"`
	Direction string  `json:"direction,omitempty"`
}

// FilterPayload replaces the active location filter.
type FilterPayload struct {
	Types     []core.LocationType `json:"types,omitempty"`
	Countries []string            `json:"countries,omitempty"`
	Regions   []string            `json:"regions,omitempty"`
}

// ResizePayload carries the new viewport size.
type ResizePayload struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// ModePayload switches between globe and flat map.
type ModePayload struct {
	Mode string `json:"mode"`
}

// StatusPayload reports the session state.
type StatusPayload struct {
	State   string `json:"state"`
	Mode    string `json:"mode"`
	Content string `json:"content"`
}

// ErrorPayload reports a rejected client message.
type ErrorPayload struct {
	For     string `json:"for"`
	Message string `json:"message"`
}

// Marshal builds an encoded envelope around payload. A nil payload produces
// an envelope without one.
func Marshal(msgType string, payload any) ([]byte, error) {
	env := Envelope{Type: msgType}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal %s payload: %w", msgType, err)
		}
		env.Payload = raw
	}
	return json.Marshal(env)
}

// Unmarshal decodes an envelope.
func Unmarshal(data []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return env, fmt.Errorf("decode envelope: %w", err)
	}
	if env.Type == "" {
		return env, fmt.Errorf("decode envelope: missing type")
	}
	return env, nil
}
