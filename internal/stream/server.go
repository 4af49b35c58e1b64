// Package stream serves interactive globe sessions over WebSocket.
package stream

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	ws "github.com/gorilla/websocket"

	"github.com/joshuaberetta/cvglobe/internal/content"
	"github.com/joshuaberetta/cvglobe/internal/geo"
	"github.com/joshuaberetta/cvglobe/internal/interaction"
	"github.com/joshuaberetta/cvglobe/internal/logging"
	"github.com/joshuaberetta/cvglobe/pkg/core"
)

const (
	sendChSize     = 256
	writeWait      = 10 * time.Second
	maxMessageSize = 64 * 1024
)

// Source is the content every session draws from.
type Source interface {
	interaction.ContentSource
	WorkHistory() []core.WorkInterval
	Status() (content.Status, error)
	LoadedAt() time.Time
}

// Config holds per-session settings.
type Config struct {
	Controller     interaction.Config
	Mode           geo.Mode
	Width          float64
	Height         float64
	FPS            int
	AllowedOrigins []string
	SendBuffer     int
}

// Server upgrades HTTP requests and runs one session per connection.
type Server struct {
	cfg      Config
	source   Source
	recorder interaction.FrameRecorder
	logger   *slog.Logger
	upgrader ws.Upgrader
	now      func() time.Time

	nextID   atomic.Uint64
	mu       sync.Mutex
	sessions map[string]*session
	closed   bool
}

// Option configures a Server.
type Option func(*Server)

// WithRecorder reports composed frames of every session to r.
func WithRecorder(r interaction.FrameRecorder) Option {
	return func(s *Server) {
		s.recorder = r
	}
}

// WithClock overrides the clock used for timeline layout.
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		s.now = now
	}
}

// NewServer creates a stream server.
func NewServer(cfg Config, source Source, logger *slog.Logger, opts ...Option) *Server {
	if cfg.SendBuffer <= 0 {
		cfg.SendBuffer = sendChSize
	}
	if cfg.Mode == "" {
		cfg.Mode = geo.Orthographic
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		cfg:      cfg,
		source:   source,
		logger:   logger,
		now:      time.Now,
		sessions: make(map[string]*session),
	}
	s.upgrader = ws.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 16384,
		CheckOrigin:     s.checkOrigin,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// checkOrigin accepts same-host requests, requests without an Origin header
// and any origin listed in AllowedOrigins. "*" allows everything.
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	if slices.Contains(s.cfg.AllowedOrigins, "*") || slices.Contains(s.cfg.AllowedOrigins, origin) {
		return true
	}
	return origin == "http://"+r.Host || origin == "https://"+r.Host
}

// ServeHTTP upgrades the connection and blocks until the session ends. The
// query parameters mode, width and height override the configured viewport.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	cfg := s.cfg
	if err := ApplyViewport(&cfg, r.URL.Query()); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("WebSocket upgrade failed", "error", err, "remote", r.RemoteAddr)
		return
	}

	id := fmt.Sprintf("s%d", s.nextID.Add(1))
	sess, err := newSession(id, conn, cfg, s.source, s.recorder, s.logger.With("session", id), s.now)
	if err != nil {
		s.logger.Error("Failed to create session", "error", err)
		_ = conn.Close()
		return
	}

	if !s.add(sess) {
		sess.close()
		return
	}
	defer s.remove(id)

	ctx := logging.ContextWith(r.Context(), slog.String("session", id), slog.String("remote", r.RemoteAddr))
	s.logger.InfoContext(ctx, "Session started", "mode", cfg.Mode, "width", cfg.Width)
	sess.run(ctx)
	s.logger.InfoContext(ctx, "Session ended")
}

func (s *Server) add(sess *session) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.sessions[sess.id] = sess
	return true
}

func (s *Server) remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// Sessions returns the number of connected sessions.
func (s *Server) Sessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Close ends every session and rejects new ones.
func (s *Server) Close(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	open := make([]*session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		open = append(open, sess)
	}
	s.mu.Unlock()

	for _, sess := range open {
		sess.close()
	}

	for s.Sessions() > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(10 * time.Millisecond):
		}
	}
	return nil
}
