// Package server owns the gateway's network surface: the WebSocket session
// engine, per-session dispatch, the wire protocol, and the small HTTP
// surface (health, metrics).
package server

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/ostraka/segstream/config"
	"github.com/ostraka/segstream/model"
)

// Server accepts WebSocket clients and runs one session per connection.
// Sessions share nothing but the model pool; the server itself only tracks
// membership for the session cap, the health endpoint, and shutdown.
type Server struct {
	cfg    *config.Config
	pool   *model.Pool
	logger *zap.SugaredLogger

	sessions   map[*Session]bool
	mu         sync.RWMutex
	register   chan *Session
	unregister chan *Session

	httpServer *http.Server

	// Lifecycle management
	ctx    context.Context    // Cancellation context for graceful shutdown
	cancel context.CancelFunc // Cancels all session goroutines
	wg     sync.WaitGroup     // Tracks active goroutines for clean shutdown
	state  atomic.Int32       // Server state (Running/Draining/Stopped)
}

// NewServer creates a server over the given pool. The pool is shared,
// process-wide state constructed by the caller; the server never clears it.
func NewServer(cfg *config.Config, pool *model.Pool, logger *zap.SugaredLogger) *Server {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		cfg:        cfg,
		pool:       pool,
		logger:     logger,
		sessions:   make(map[*Session]bool),
		register:   make(chan *Session),
		unregister: make(chan *Session),
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Run is the hub event loop: session registration and removal flow through
// here so the membership map has a single writer.
func (s *Server) Run() {
	for {
		select {
		case <-s.ctx.Done():
			s.logger.Debugw("Session hub stopping due to context cancellation")
			return
		case sess := <-s.register:
			s.handleSessionRegister(sess)
		case sess := <-s.unregister:
			s.handleSessionUnregister(sess)
		}
	}
}

// handleSessionRegister admits a new session, enforcing the concurrent
// session cap. Refused sessions are closed before they reach READY; the
// peer sees the socket drop, not an error envelope.
func (s *Server) handleSessionRegister(sess *Session) {
	maxSessions := s.cfg.GetMaxSessions()

	s.mu.Lock()
	if len(s.sessions) >= maxSessions {
		s.mu.Unlock()
		s.logger.Warnw("Max sessions reached, rejecting connection",
			"session_id", sess.id,
			"max_sessions", maxSessions,
		)
		sess.beginClose()
		return
	}
	s.sessions[sess] = true
	total := len(s.sessions)
	s.mu.Unlock()

	close(sess.registered)
	metricActiveSessions.Set(float64(total))
	metricSessionsTotal.Inc()

	s.logger.Infow("Session connected",
		"session_id", sess.id,
		"total_sessions", total,
	)
}

// handleSessionUnregister removes a departed session.
func (s *Server) handleSessionUnregister(sess *Session) {
	s.mu.Lock()
	if _, ok := s.sessions[sess]; !ok {
		s.mu.Unlock()
		return
	}
	delete(s.sessions, sess)
	total := len(s.sessions)
	s.mu.Unlock()

	metricActiveSessions.Set(float64(total))

	s.logger.Infow("Session disconnected",
		"session_id", sess.id,
		"total_sessions", total,
		"duration", time.Since(sess.connectedAt),
		"frames_processed", sess.framesProcessed(),
		"frames_dropped", sess.admitter.Dropped(),
	)
}

// ActiveSessions returns the number of registered sessions.
func (s *Server) ActiveSessions() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// getState returns the current server state
func (s *Server) getState() ServerState {
	return ServerState(s.state.Load())
}

// setState atomically updates the server state
func (s *Server) setState(newState ServerState) {
	s.state.Store(int32(newState))
	s.logger.Infow("Server state changed", "new_state", stateString(newState))
}

// stateString returns human-readable state name
func stateString(state ServerState) string {
	switch state {
	case ServerStateRunning:
		return "running"
	case ServerStateDraining:
		return "draining"
	case ServerStateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}
