package server

import (
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/ostraka/segstream/inference"
	"github.com/ostraka/segstream/pipeline"
	"github.com/ostraka/segstream/render"
)

// Session is one client's connection and everything owned during it: the
// inference engine, the renderer, the admission controls, and the
// visualization settings. Three goroutines serve it — a read pump, a write
// pump, and a dispatch worker — and only the dispatch worker mutates
// session state, so no field here needs a lock.
type Session struct {
	server *Server
	conn   *websocket.Conn
	id     string

	engine   *inference.Engine
	renderer *render.Renderer
	admitter *pipeline.Admitter

	// Visualization settings, dispatch-owned.
	vizMode render.VizMode
	opacity float64
	filter  map[int]bool // nil = all classes pass

	inbound chan *Envelope
	send    chan interface{}

	registered chan struct{} // closed by the hub on admission
	done       chan struct{} // closed when teardown begins
	closeOnce  sync.Once
	state      atomic.Int32

	frames      atomic.Int64 // segmentation replies enqueued
	connectedAt time.Time
}

func newSession(srv *Server, conn *websocket.Conn) *Session {
	cfg := srv.cfg
	return &Session{
		server:      srv,
		conn:        conn,
		id:          uuid.NewString(),
		engine:      inference.NewEngine(srv.pool, cfg.Session.WarmupIterations),
		admitter:    pipeline.NewAdmitter(cfg.Pipeline.MaxInFlight, cfg.Pipeline.MinFrameInterval()),
		vizMode:     render.VizFilled,
		opacity:     0.6,
		inbound:     make(chan *Envelope, cfg.Pipeline.MaxInFlight),
		send:        make(chan interface{}, sendQueueSize),
		registered:  make(chan struct{}),
		done:        make(chan struct{}),
		connectedAt: time.Now(),
	}
}

func (s *Session) sessionState() SessionState {
	return SessionState(s.state.Load())
}

func (s *Session) setSessionState(st SessionState) {
	s.state.Store(int32(st))
}

func (s *Session) isClosing() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

// beginClose starts teardown exactly once: the done channel unblocks the
// pumps and the dispatch worker, and closing the socket unblocks a read in
// progress. Safe to call from any goroutine, any number of times.
func (s *Session) beginClose() {
	s.closeOnce.Do(func() {
		s.setSessionState(StateClosing)
		close(s.done)
		s.conn.Close()
	})
}

func (s *Session) framesProcessed() int64 {
	return s.frames.Load()
}

// trySend queues a message for the write pump. It never blocks and never
// fails loudly: a closing session or a full queue drops the message and
// reports false. Send failure is evidence the peer is gone, not an error —
// this is what keeps an error reply from cascading into another error.
func (s *Session) trySend(msg interface{}) bool {
	if s.isClosing() {
		return false
	}
	select {
	case s.send <- msg:
		return true
	case <-s.done:
		return false
	default:
		s.server.logger.Warnw("Session send queue full, dropping message",
			"session_id", s.id,
		)
		return false
	}
}

// run initializes the session and then dispatches until teardown. Failures
// before READY close the connection without a client-visible error: the
// socket may already be half-open, and an error envelope at that point is
// exactly the double-fault the safe-send discipline exists to prevent.
func (s *Session) run() {
	defer func() {
		s.beginClose()
		s.setSessionState(StateClosed)
		select {
		case s.server.unregister <- s:
		case <-s.server.ctx.Done():
		}
	}()

	// Wait for the hub's admission verdict; a session rejected by the cap
	// must never reach READY or emit a connected envelope.
	select {
	case <-s.registered:
	case <-s.done:
		return
	case <-s.server.ctx.Done():
		return
	}

	s.setSessionState(StateInitializing)
	if err := s.initialize(); err != nil {
		s.server.logger.Errorw("Session initialization failed",
			"session_id", s.id,
			"error", err,
		)
		return
	}

	s.setSessionState(StateReady)
	s.dispatchLoop()
}

// initialize brings the engine to the default mode, warms it (a no-op on
// every session after the first for that mode), and announces READY.
func (s *Session) initialize() error {
	mode, err := s.server.defaultMode()
	if err != nil {
		return err
	}

	if err := s.engine.SetMode(s.server.ctx, mode); err != nil {
		return err
	}
	if err := s.engine.WarmUp(s.server.ctx, false); err != nil {
		return err
	}
	s.renderer = render.NewRenderer(mode.Profile().Vocabulary)

	s.trySend(ConnectedMessage{
		Type:            "connected",
		Status:          "ready",
		AvailableModels: availableModels(),
		ClassLabels:     mode.Labels(),
		CurrentModel:    mode.String(),
	})
	return nil
}

// dispatchLoop is the session's single worker: every envelope is handled
// here, one at a time, which is what makes replies FIFO and session state
// lock-free. The inactivity timer only guards the window between READY and
// the first inbound message.
func (s *Session) dispatchLoop() {
	timeout := s.server.cfg.Session.InactivityTimeout()
	var idleC <-chan time.Time
	var idle *time.Timer
	if timeout > 0 {
		idle = time.NewTimer(timeout)
		defer idle.Stop()
		idleC = idle.C
	}
	sawFirst := false

	for {
		select {
		case <-s.done:
			return
		case <-s.server.ctx.Done():
			return
		case <-idleC:
			s.server.logger.Infow("Session idle before first message, closing",
				"session_id", s.id,
				"timeout", timeout,
			)
			return
		case env := <-s.inbound:
			if !sawFirst {
				sawFirst = true
				if idle != nil {
					idle.Stop()
				}
			}
			s.route(env)
		}
	}
}

// route dispatches one envelope by type. Unknown types are logged and
// ignored; they never terminate the session.
func (s *Session) route(env *Envelope) {
	switch env.Type {
	case "frame":
		s.handleFrame(env)
	case "change_mode":
		s.handleChangeMode(env)
	case "update_viz":
		s.handleUpdateViz(env)
	case "get_stats":
		s.handleGetStats()
	case "ping":
		// Deadline refresh is handled by the pong handler.
	default:
		s.server.logger.Debugw("Unknown message type",
			"type", env.Type,
			"session_id", s.id,
		)
	}
}

// sendError reports a recoverable failure for one request. If the error
// reply itself cannot be sent, the failure is swallowed — the peer is gone
// and the close sequence is already underway.
func (s *Session) sendError(code, message string) {
	s.trySend(ErrorMessage{
		Type:        "error",
		Code:        code,
		Message:     message,
		Recoverable: true,
	})
}

// readPump reads envelopes off the socket and feeds the dispatch worker.
// Frame admission happens here, before decode: refused frames cost one
// JSON parse and nothing else.
func (s *Session) readPump() {
	defer s.beginClose()

	s.conn.SetReadLimit(maxMessageSize)
	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		s.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	s.server.logger.Debugw("Read pump started", "session_id", s.id)

	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			s.handleReadError(err)
			return
		}

		var env Envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			s.server.logger.Warnw("JSON unmarshal error",
				"error", err.Error(),
				"session_id", s.id,
			)
			continue
		}

		if env.Type == "frame" {
			if !s.admitter.Admit() {
				metricFramesDropped.Inc()
				continue
			}
		}

		select {
		case s.inbound <- &env:
		case <-s.done:
			return
		}
	}
}

// handleReadError logs unexpected WebSocket read errors. Expected closure
// codes (going away, abnormal, no status) are silently ignored.
func (s *Session) handleReadError(err error) {
	if websocket.IsUnexpectedCloseError(err,
		websocket.CloseGoingAway,
		websocket.CloseAbnormalClosure,
		websocket.CloseNoStatusReceived,
	) {
		s.server.logger.Warnw("WebSocket read error",
			"error", err.Error(),
			"session_id", s.id,
		)
	}
}

// writePump is the session's single socket writer. A write that fails
// because the peer closed begins teardown; nothing is retried.
func (s *Session) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.beginClose()
	}()

	s.server.logger.Debugw("Write pump started", "session_id", s.id)

	for {
		select {
		case <-s.done:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			s.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case msg := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteJSON(msg); err != nil {
				s.server.logger.Debugw("Write error, closing session",
					"error", err.Error(),
					"session_id", s.id,
				)
				return
			}
		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
