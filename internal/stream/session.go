package stream

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	ws "github.com/gorilla/websocket"

	"github.com/joshuaberetta/cvglobe/internal/channel"
	"github.com/joshuaberetta/cvglobe/internal/dispatcher"
	"github.com/joshuaberetta/cvglobe/internal/interaction"
	"github.com/joshuaberetta/cvglobe/internal/timeline"
	"github.com/joshuaberetta/cvglobe/pkg/streaming"
)

// session is one connected view: a controller driven by client input and a
// frame ticker, with a single write goroutine draining the outbound queue.
type session struct {
	id     string
	conn   *ws.Conn
	source Source
	ctrl   *interaction.Controller
	ticker interaction.Ticker
	disp   *dispatcher.Dispatcher
	out    channel.Channel[[]byte]
	logger *slog.Logger
	now    func() time.Time

	dirty      atomic.Bool
	mu         sync.Mutex
	lastStatus streaming.StatusPayload
	loadedAt   time.Time

	done      chan struct{}
	closeOnce sync.Once
}

func newSession(
	id string,
	conn *ws.Conn,
	cfg Config,
	source Source,
	recorder interaction.FrameRecorder,
	logger *slog.Logger,
	now func() time.Time,
) (*session, error) {
	opts := []interaction.Option{interaction.WithLogger(logger)}
	if recorder != nil {
		opts = append(opts, interaction.WithRecorder(recorder))
	}

	disp, err := dispatcher.New(logger)
	if err != nil {
		return nil, err
	}

	s := &session{
		id:     id,
		conn:   conn,
		source: source,
		ctrl:   interaction.New(cfg.Controller, cfg.Mode, cfg.Width, cfg.Height, source, opts...),
		ticker: interaction.NewFrameTicker(cfg.FPS),
		disp:   disp,
		out:    channel.New[[]byte](cfg.SendBuffer),
		logger: logger,
		now:    now,
		done:   make(chan struct{}),
	}
	s.registerHandlers()
	return s, nil
}

// run sends the initial state, starts the frame loop and reads client
// messages until the connection or ctx ends.
func (s *session) run(ctx context.Context) {
	go s.writeLoop()

	s.mu.Lock()
	s.loadedAt = s.source.LoadedAt()
	s.mu.Unlock()

	s.sendStatus(true)
	s.sendTimeline()
	s.sendScene()

	s.ticker.Start(ctx, s.frame)

	go func() {
		select {
		case <-ctx.Done():
			s.close()
		case <-s.done:
		}
	}()

	s.readLoop()
	s.close()
}

// frame runs on every tick. A scene is sent when the projection moved or
// input or a content reload invalidated the last one.
func (s *session) frame(now time.Time) {
	changed := s.ctrl.Tick(now)
	if s.contentReloaded() {
		changed = true
	}
	if s.dirty.Swap(false) {
		changed = true
	}
	if changed {
		s.sendScene()
	}
	s.sendStatus(false)
}

func (s *session) contentReloaded() bool {
	at := s.source.LoadedAt()
	s.mu.Lock()
	defer s.mu.Unlock()
	if at.Equal(s.loadedAt) {
		return false
	}
	s.loadedAt = at
	return true
}

// readLoop decodes client envelopes and dispatches them to the controller.
func (s *session) readLoop() {
	s.conn.SetReadLimit(maxMessageSize)
	for {
		_, message, err := s.conn.ReadMessage()
		if err != nil {
			select {
			case <-s.done:
			default:
				if ws.IsUnexpectedCloseError(err, ws.CloseNormalClosure, ws.CloseGoingAway) {
					s.logger.Warn("WebSocket read error", "error", err)
				}
			}
			return
		}

		env, err := streaming.Unmarshal(message)
		if err != nil {
			s.sendError("", err)
			continue
		}

		_, err = s.disp.Dispatch(dispatcher.Event{Command: env.Type, Payload: env.Payload})
		if errors.Is(err, dispatcher.ErrClosed) {
			return
		}
		if err != nil {
			s.sendError(env.Type, err)
			continue
		}
		s.dirty.Store(true)
		s.sendStatus(false)
	}
}

// writeLoop drains the outbound queue and writes messages to the WebSocket.
func (s *session) writeLoop() {
	for {
		select {
		case <-s.done:
			return
		case data, ok := <-s.out.Receive():
			if !ok {
				return
			}
			if err := s.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				s.logger.Warn("WebSocket SetWriteDeadline error", "error", err)
				go s.close()
				return
			}
			if err := s.conn.WriteMessage(ws.TextMessage, data); err != nil {
				s.logger.Warn("WebSocket write error", "error", err)
				go s.close()
				return
			}
		}
	}
}

// send queues a message. Non-blocking; drops if the queue is full.
func (s *session) send(msgType string, payload any) {
	select {
	case <-s.done:
		return
	default:
	}

	data, err := streaming.Marshal(msgType, payload)
	if err != nil {
		s.logger.Error("Failed to encode message", "type", msgType, "error", err)
		return
	}
	if !s.out.TrySend(data) {
		s.logger.Warn("WebSocket send channel full, dropping message", "type", msgType)
	}
}

func (s *session) sendScene() {
	s.send(streaming.TypeScene, s.ctrl.Scene())
}

func (s *session) sendSelection() {
	s.send(streaming.TypeSelection, s.ctrl.Selection())
}

func (s *session) sendTooltip() {
	s.send(streaming.TypeTooltip, s.ctrl.Tooltip())
}

func (s *session) sendTimeline() {
	chart, err := timeline.Layout(s.source.WorkHistory(), s.now())
	if err != nil {
		s.logger.Warn("Failed to lay out timeline", "error", err)
		s.sendError(streaming.TypeTimeline, err)
		return
	}
	s.send(streaming.TypeTimeline, chart)
}

// sendStatus sends the session status when it changed, or always when force
// is set.
func (s *session) sendStatus(force bool) {
	view := s.ctrl.View()
	status, _ := s.source.Status()
	p := streaming.StatusPayload{
		State:   view.StateName,
		Mode:    string(view.Projection.Mode),
		Content: string(status),
	}

	s.mu.Lock()
	if !force && p == s.lastStatus {
		s.mu.Unlock()
		return
	}
	s.lastStatus = p
	s.mu.Unlock()

	s.send(streaming.TypeStatus, p)
}

func (s *session) sendError(forType string, err error) {
	s.send(streaming.TypeError, streaming.ErrorPayload{For: forType, Message: err.Error()})
}

// close sends a close frame and shuts down the session goroutines.
func (s *session) close() {
	s.closeOnce.Do(func() {
		close(s.done)
		s.ticker.Stop()
		s.out.Close()
		if n := s.out.Dropped(); n > 0 {
			s.logger.Info("Session dropped outbound messages", "dropped", n)
		}
		if err := s.disp.Close(); err != nil {
			s.logger.Debug("Dispatcher close error", "error", err)
		}
		_ = s.conn.WriteControl(
			ws.CloseMessage,
			ws.FormatCloseMessage(ws.CloseNormalClosure, ""),
			time.Now().Add(writeWait),
		)
		_ = s.conn.Close()
	})
}
