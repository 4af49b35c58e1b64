package stream

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	ws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuaberetta/cvglobe/internal/content"
	"github.com/joshuaberetta/cvglobe/internal/dispatcher"
	"github.com/joshuaberetta/cvglobe/internal/geo"
	"github.com/joshuaberetta/cvglobe/internal/interaction"
	"github.com/joshuaberetta/cvglobe/internal/scene"
	"github.com/joshuaberetta/cvglobe/internal/timeline"
	"github.com/joshuaberetta/cvglobe/pkg/core"
	"github.com/joshuaberetta/cvglobe/pkg/streaming"
)

var _ Source = (*content.Context)(nil)

type countingRecorder struct {
	mu sync.Mutex
	n  int
}

func (r *countingRecorder) RecordFrame(interaction.FrameSample) {
	r.mu.Lock()
	r.n++
	r.mu.Unlock()
}

func (r *countingRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.n
}

func testContent() *content.Context {
	c := content.NewContext()
	c.SetGlobeData(core.GlobeData{
		Locations: []core.Location{
			{ID: "kabul", Name: "Kabul", Country: "Afghanistan", Latitude: 34.5, Longitude: 69.2, Type: core.LocationDeployment},
			{ID: "nairobi", Name: "Nairobi", Country: "Kenya", Latitude: -1.3, Longitude: 36.8, Type: core.LocationTraining},
			{ID: "cairo", Name: "Cairo", Country: "Egypt", Latitude: 30.0, Longitude: 31.2, Type: core.LocationTravel},
		},
		Journeys: []core.Journey{
			{ID: "overland", Name: "Overland", Locations: []string{"cairo", "nairobi"}},
		},
	})
	c.SetWorkHistory([]core.WorkInterval{
		{Kind: core.IntervalWork, Position: "Officer", Organization: "UN", StartDate: "01/2019", EndDate: "current"},
		{Kind: core.IntervalVolunteer, Position: "Guide", Organization: "Scouts", StartDate: "2015", EndDate: "2017"},
	})
	return c
}

func testConfig(mode geo.Mode) Config {
	ctrl := interaction.DefaultConfig()
	ctrl.AutoSpin = false
	return Config{
		Controller: ctrl,
		Mode:       mode,
		Width:      800,
		Height:     800,
		FPS:        100,
	}
}

func startServer(t *testing.T, cfg Config, opts ...Option) (*Server, *httptest.Server) {
	t.Helper()
	now := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	opts = append([]Option{WithClock(func() time.Time { return now })}, opts...)
	srv := NewServer(cfg, testContent(), slog.New(slog.NewTextHandler(io.Discard, nil)), opts...)
	hs := httptest.NewServer(srv)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Close(ctx)
		hs.Close()
	})
	return srv, hs
}

func dial(t *testing.T, hs *httptest.Server, query string) *ws.Conn {
	t.Helper()
	u := "ws" + strings.TrimPrefix(hs.URL, "http") + "/ws"
	if query != "" {
		u += "?" + query
	}
	conn, _, err := ws.DefaultDialer.Dial(u, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func send(t *testing.T, conn *ws.Conn, msgType string, payload any) {
	t.Helper()
	data, err := streaming.Marshal(msgType, payload)
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(ws.TextMessage, data))
}

// readUntil reads envelopes until one of msgType arrives.
func readUntil(t *testing.T, conn *ws.Conn, msgType string) streaming.Envelope {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	for {
		_, data, err := conn.ReadMessage()
		require.NoError(t, err, "waiting for %s", msgType)
		env, err := streaming.Unmarshal(data)
		require.NoError(t, err)
		if env.Type == msgType {
			return env
		}
	}
}

// readSceneWhere reads scenes until one satisfies ok. Frames composed before
// an input may still be in flight when it is applied.
func readSceneWhere(t *testing.T, conn *ws.Conn, ok func(scene.Scene) bool) scene.Scene {
	t.Helper()
	for {
		sc := decode[scene.Scene](t, readUntil(t, conn, streaming.TypeScene))
		if ok(sc) {
			return sc
		}
	}
}

func decode[T any](t *testing.T, env streaming.Envelope) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(env.Payload, &v))
	return v
}

func TestSession_InitialMessages(t *testing.T) {
	_, hs := startServer(t, testConfig(geo.Orthographic))
	conn := dial(t, hs, "")

	status := decode[streaming.StatusPayload](t, readUntil(t, conn, streaming.TypeStatus))
	assert.Equal(t, "orthographic", status.Mode)
	assert.Equal(t, "idle", status.State)
	assert.Equal(t, "ready", status.Content)

	chart := decode[timeline.Chart](t, readUntil(t, conn, streaming.TypeTimeline))
	assert.Equal(t, 2, chart.Count())

	sc := decode[scene.Scene](t, readUntil(t, conn, streaming.TypeScene))
	assert.Equal(t, geo.Orthographic, sc.Mode)
	assert.Len(t, sc.Markers, 3)
	require.NotNil(t, sc.Sphere)
}

func TestSession_ViewportQuery(t *testing.T) {
	_, hs := startServer(t, testConfig(geo.Orthographic))
	conn := dial(t, hs, "mode=flat&width=1000")

	sc := decode[scene.Scene](t, readUntil(t, conn, streaming.TypeScene))
	assert.Equal(t, geo.Equirectangular, sc.Mode)
	assert.Equal(t, 1000.0, sc.Width)
	assert.Nil(t, sc.Sphere)
}

func TestSession_BadViewportRejected(t *testing.T) {
	_, hs := startServer(t, testConfig(geo.Orthographic))
	u := "ws" + strings.TrimPrefix(hs.URL, "http") + "/ws?mode=mercator"

	_, resp, err := ws.DefaultDialer.Dial(u, nil)
	require.ErrorIs(t, err, ws.ErrBadHandshake)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSession_ClickMarkerSelects(t *testing.T) {
	_, hs := startServer(t, testConfig(geo.Equirectangular))
	conn := dial(t, hs, "")

	send(t, conn, streaming.TypeClickMarker, streaming.ClickPayload{ID: "nairobi"})
	sel := decode[scene.Selection](t, readUntil(t, conn, streaming.TypeSelection))
	assert.Equal(t, "nairobi", sel.LocationID)
	assert.Empty(t, sel.JourneyID)

	send(t, conn, streaming.TypeClickJourney, streaming.ClickPayload{ID: "overland"})
	sel = decode[scene.Selection](t, readUntil(t, conn, streaming.TypeSelection))
	assert.Equal(t, "overland", sel.JourneyID)
	assert.Empty(t, sel.LocationID)

	send(t, conn, streaming.TypeClickBackground, nil)
	sel = decode[scene.Selection](t, readUntil(t, conn, streaming.TypeSelection))
	assert.True(t, sel.Empty())
}

func TestSession_ClickMarkerAnimatesGlobe(t *testing.T) {
	_, hs := startServer(t, testConfig(geo.Orthographic))
	conn := dial(t, hs, "")
	readUntil(t, conn, streaming.TypeScene)

	send(t, conn, streaming.TypeClickMarker, streaming.ClickPayload{ID: "cairo"})
	status := decode[streaming.StatusPayload](t, readUntil(t, conn, streaming.TypeStatus))
	assert.Equal(t, "animating", status.State)

	status = decode[streaming.StatusPayload](t, readUntil(t, conn, streaming.TypeStatus))
	assert.Equal(t, "idle", status.State)
}

func TestSession_HoverTooltip(t *testing.T) {
	_, hs := startServer(t, testConfig(geo.Equirectangular))
	conn := dial(t, hs, "")

	send(t, conn, streaming.TypeHoverMarker, streaming.HoverPayload{ID: "kabul", Position: core.Point{X: 10, Y: 20}})
	tip := decode[scene.Tooltip](t, readUntil(t, conn, streaming.TypeTooltip))
	assert.True(t, tip.Visible)
	assert.Equal(t, "Kabul", tip.Content.Title)
	assert.Equal(t, core.Point{X: 10, Y: 20}, tip.Position)

	send(t, conn, streaming.TypeHoverEnd, nil)
	tip = decode[scene.Tooltip](t, readUntil(t, conn, streaming.TypeTooltip))
	assert.False(t, tip.Visible)
}

func TestSession_PointerHitTesting(t *testing.T) {
	_, hs := startServer(t, testConfig(geo.Equirectangular))
	conn := dial(t, hs, "")

	sc := decode[scene.Scene](t, readUntil(t, conn, streaming.TypeScene))
	kabul, ok := sc.Marker("kabul")
	require.True(t, ok)

	send(t, conn, streaming.TypeHoverMarker, streaming.HoverPayload{Position: kabul.Position})
	tip := decode[scene.Tooltip](t, readUntil(t, conn, streaming.TypeTooltip))
	assert.True(t, tip.Visible)
	assert.Equal(t, "Kabul", tip.Content.Title)

	send(t, conn, streaming.TypeHoverMarker, streaming.HoverPayload{Position: core.Point{X: 1, Y: 1}})
	tip = decode[scene.Tooltip](t, readUntil(t, conn, streaming.TypeTooltip))
	assert.False(t, tip.Visible)

	send(t, conn, streaming.TypeClickMarker, streaming.ClickPayload{Position: &kabul.Position})
	sel := decode[scene.Selection](t, readUntil(t, conn, streaming.TypeSelection))
	assert.Equal(t, "kabul", sel.LocationID)

	send(t, conn, streaming.TypeClickMarker, streaming.ClickPayload{Position: &core.Point{X: 1, Y: 1}})
	sel = decode[scene.Selection](t, readUntil(t, conn, streaming.TypeSelection))
	assert.True(t, sel.Empty())
}

func TestSession_ResizeZeroHeightGlobe(t *testing.T) {
	_, hs := startServer(t, testConfig(geo.Orthographic))
	conn := dial(t, hs, "")
	readUntil(t, conn, streaming.TypeScene)

	send(t, conn, streaming.TypeResize, streaming.ResizePayload{Width: 600})
	sc := readSceneWhere(t, conn, func(sc scene.Scene) bool { return sc.Width == 600 })
	assert.Equal(t, 600.0, sc.Height)
	require.NotNil(t, sc.Sphere)
	assert.Equal(t, core.Point{X: 300, Y: 300}, sc.Sphere.Center)
}

func TestSession_Errors(t *testing.T) {
	tests := []struct {
		name    string
		msgType string
		payload any
		wantFor string
		wantMsg string
	}{
		{name: "unknown command", msgType: "teleport", wantFor: "teleport", wantMsg: "unknown command"},
		{name: "unknown marker", msgType: streaming.TypeClickMarker, payload: streaming.ClickPayload{ID: "atlantis"}, wantFor: streaming.TypeClickMarker, wantMsg: "unknown location"},
		{name: "unknown journey", msgType: streaming.TypeHoverJourney, payload: streaming.HoverPayload{ID: "nowhere"}, wantFor: streaming.TypeHoverJourney, wantMsg: "unknown journey"},
		{name: "bad zoom", msgType: streaming.TypeZoom, payload: streaming.ZoomPayload{}, wantFor: streaming.TypeZoom, wantMsg: "zoom needs"},
		{name: "bad resize", msgType: streaming.TypeResize, payload: streaming.ResizePayload{Width: -1}, wantFor: streaming.TypeResize, wantMsg: "invalid viewport"},
		{name: "bad mode", msgType: streaming.TypeMode, payload: streaming.ModePayload{Mode: "mercator"}, wantFor: streaming.TypeMode, wantMsg: "unknown projection mode"},
		{name: "bad payload", msgType: streaming.TypeDrag, payload: "left", wantFor: streaming.TypeDrag, wantMsg: "decoding drag payload"},
	}

	_, hs := startServer(t, testConfig(geo.Equirectangular))
	conn := dial(t, hs, "")

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			send(t, conn, tt.msgType, tt.payload)
			p := decode[streaming.ErrorPayload](t, readUntil(t, conn, streaming.TypeError))
			assert.Equal(t, tt.wantFor, p.For)
			assert.Contains(t, p.Message, tt.wantMsg)
		})
	}
}

func TestSession_MalformedEnvelope(t *testing.T) {
	_, hs := startServer(t, testConfig(geo.Equirectangular))
	conn := dial(t, hs, "")

	require.NoError(t, conn.WriteMessage(ws.TextMessage, []byte("not json")))
	p := decode[streaming.ErrorPayload](t, readUntil(t, conn, streaming.TypeError))
	assert.Empty(t, p.For)
	assert.Contains(t, p.Message, "decode envelope")
}

func TestSession_TogglePlayAndMode(t *testing.T) {
	_, hs := startServer(t, testConfig(geo.Orthographic))
	conn := dial(t, hs, "")
	readUntil(t, conn, streaming.TypeScene)

	send(t, conn, streaming.TypeTogglePlay, nil)
	status := decode[streaming.StatusPayload](t, readUntil(t, conn, streaming.TypeStatus))
	assert.Equal(t, "spinning", status.State)

	send(t, conn, streaming.TypeMode, streaming.ModePayload{Mode: "flat"})
	status = decode[streaming.StatusPayload](t, readUntil(t, conn, streaming.TypeStatus))
	assert.Equal(t, "equirectangular", status.Mode)
	assert.Equal(t, "idle", status.State)

	sc := readSceneWhere(t, conn, func(sc scene.Scene) bool { return sc.Mode == geo.Equirectangular })
	assert.Nil(t, sc.Sphere)
}

func TestSession_FilterRedraws(t *testing.T) {
	_, hs := startServer(t, testConfig(geo.Equirectangular))
	conn := dial(t, hs, "")
	readUntil(t, conn, streaming.TypeScene)

	send(t, conn, streaming.TypeFilter, streaming.FilterPayload{Types: []core.LocationType{core.LocationDeployment}})
	sc := readSceneWhere(t, conn, func(sc scene.Scene) bool { return len(sc.Markers) < 3 })
	require.Len(t, sc.Markers, 1)
	assert.Equal(t, "kabul", sc.Markers[0].ID)
	assert.Empty(t, sc.Segments)
}

func TestSession_ZoomAndReset(t *testing.T) {
	_, hs := startServer(t, testConfig(geo.Equirectangular))
	conn := dial(t, hs, "")
	readUntil(t, conn, streaming.TypeScene)

	send(t, conn, streaming.TypeZoom, streaming.ZoomPayload{Direction: streaming.ZoomIn})
	sc := readSceneWhere(t, conn, func(sc scene.Scene) bool { return sc.Zoom.K != 1 })
	assert.InDelta(t, geo.ZoomInFactor, sc.Zoom.K, 1e-9)

	send(t, conn, streaming.TypeResetZoom, nil)
	sc = readSceneWhere(t, conn, func(sc scene.Scene) bool { return sc.Zoom.K == 1 })
	assert.Equal(t, 0.0, sc.Zoom.X)
}

func TestServer_RecorderAndSessions(t *testing.T) {
	rec := &countingRecorder{}
	srv, hs := startServer(t, testConfig(geo.Equirectangular), WithRecorder(rec))
	conn := dial(t, hs, "")
	readUntil(t, conn, streaming.TypeScene)

	assert.Eventually(t, func() bool { return srv.Sessions() == 1 }, time.Second, 5*time.Millisecond)
	assert.GreaterOrEqual(t, rec.count(), 1)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, srv.Close(ctx))
	assert.Equal(t, 0, srv.Sessions())

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			assert.True(t, ws.IsCloseError(err, ws.CloseNormalClosure), "got %v", err)
			break
		}
	}
}

func TestCheckOrigin(t *testing.T) {
	tests := []struct {
		name    string
		allowed []string
		origin  string
		want    bool
	}{
		{name: "no origin", origin: "", want: true},
		{name: "same host", origin: "http://example.test", want: true},
		{name: "foreign", origin: "http://evil.test", want: false},
		{name: "listed", allowed: []string{"http://cv.test"}, origin: "http://cv.test", want: true},
		{name: "wildcard", allowed: []string{"*"}, origin: "http://evil.test", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewServer(Config{AllowedOrigins: tt.allowed}, nil, nil)
			r := httptest.NewRequest(http.MethodGet, "http://example.test/ws", nil)
			if tt.origin != "" {
				r.Header.Set("Origin", tt.origin)
			}
			assert.Equal(t, tt.want, s.checkOrigin(r))
		})
	}
}

func TestApplyViewport(t *testing.T) {
	base := Config{Mode: geo.Orthographic, Width: 800, Height: 800}

	tests := []struct {
		name    string
		query   string
		want    Config
		wantErr bool
	}{
		{name: "empty", query: "", want: base},
		{name: "flat drops height", query: "mode=equirectangular", want: Config{Mode: geo.Equirectangular, Width: 800}},
		{name: "flat with height", query: "mode=flat&height=300", want: Config{Mode: geo.Equirectangular, Width: 800, Height: 300}},
		{name: "size", query: "width=640&height=480", want: Config{Mode: geo.Orthographic, Width: 640, Height: 480}},
		{name: "bad mode", query: "mode=mercator", wantErr: true},
		{name: "bad width", query: "width=abc", wantErr: true},
		{name: "zero height", query: "height=0", wantErr: true},
		{name: "huge width", query: "width=100000", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := url.ParseQuery(tt.query)
			require.NoError(t, err)
			cfg := base
			err = ApplyViewport(&cfg, q)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg)
		})
	}
}

func TestRegisterHandlers_CoversClientTypes(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s, err := newSession("s1", nil, testConfig(geo.Orthographic), testContent(), nil, logger, time.Now)
	require.NoError(t, err)
	defer s.disp.Close()

	for _, typ := range streaming.ClientTypes {
		_, err := s.disp.Dispatch(dispatcher.Event{Command: typ})
		assert.NotErrorIs(t, err, dispatcher.ErrUnknownCommand, typ)
	}
}
