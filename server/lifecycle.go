package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/ostraka/segstream/config"
	"github.com/ostraka/segstream/errors"
)

// ErrListen marks a startup failure to bind any probed port. Callers branch
// on it to pick the listen-failure exit code.
var ErrListen = errors.New("no available listen port")

// Start binds a port, starts the session hub, and serves until Stop or a
// listener error. Blocks for the server's lifetime; a clean Stop returns nil.
func (s *Server) Start() (err error) {
	s.setState(ServerStateRunning)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.Run()
	}()

	listener, port, err := s.listen()
	if err != nil {
		return err
	}

	s.httpServer = &http.Server{Handler: s.routes()}

	s.logger.Infow("Server ready",
		"url", fmt.Sprintf("ws://localhost:%d/ws", port),
		"port", port,
		"max_sessions", s.cfg.GetMaxSessions(),
		"default_mode", s.cfg.Model.DefaultMode,
	)

	if err := s.httpServer.Serve(listener); !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "http server")
	}
	return nil
}

// listen binds the configured port, probing sequentially past it when busy.
// The listener is bound here rather than availability-checked so the port
// cannot be stolen between probe and serve.
func (s *Server) listen() (net.Listener, int, error) {
	base := s.cfg.GetPort()
	for i := 0; i <= config.MaxPortProbes; i++ {
		port := base + i
		listener, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
		if err != nil {
			continue
		}
		if i > 0 {
			s.logger.Infow("Port in use, using alternative",
				"requested_port", base,
				"actual_port", port,
			)
		}
		return listener, port, nil
	}
	return nil, 0, errors.Wrapf(ErrListen, "ports %d-%d all in use", base, base+config.MaxPortProbes)
}

// Stop drains the server: refuse new connections, close every session, and
// wait for their goroutines within ShutdownTimeout.
func (s *Server) Stop() error {
	s.logger.Infow("Initiating server shutdown")
	s.setState(ServerStateDraining)

	if s.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.logger.Warnw("HTTP server shutdown error", "error", err.Error())
		}
	}

	// Close sockets before cancelling the context so read pumps unblock and
	// sessions run their normal teardown path.
	s.mu.Lock()
	open := make([]*Session, 0, len(s.sessions))
	for sess := range s.sessions {
		open = append(open, sess)
	}
	s.mu.Unlock()

	if len(open) > 0 {
		s.logger.Infow("Closing sessions", "count", len(open))
		for _, sess := range open {
			sess.beginClose()
		}
	}

	s.cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		s.logger.Infow("All goroutines stopped cleanly")
	case <-time.After(ShutdownTimeout):
		s.logger.Warnw("Goroutine shutdown timed out, forcing exit",
			"timeout", ShutdownTimeout,
		)
	}

	s.setState(ServerStateStopped)
	s.logger.Infow("Server shutdown complete")
	return nil
}
