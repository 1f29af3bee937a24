package server

import (
	"net/http"

	"github.com/ostraka/segstream/model"
	"github.com/ostraka/segstream/version"
)

// HandleWebSocket upgrades the connection and hands it to a new session.
// The version envelope goes out before the pumps start so it is the first
// thing a client sees and cannot race the write pump.
func (s *Server) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	if s.getState() != ServerStateRunning {
		writeError(w, http.StatusServiceUnavailable, "server is shutting down")
		return
	}

	upgrader := s.upgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Errorw("WebSocket upgrade failed",
			"remote_addr", r.RemoteAddr,
			"error", err.Error(),
		)
		return
	}

	sess := newSession(s, conn)

	info := version.Get()
	if err := conn.WriteJSON(VersionMessage{
		Type:      "version",
		Version:   info.Version,
		Commit:    info.Short(),
		BuildTime: info.BuildTime,
	}); err != nil {
		s.logger.Debugw("Failed to send version info",
			"session_id", sess.id,
			"error", err.Error(),
		)
	}

	select {
	case s.register <- sess:
	case <-s.ctx.Done():
		conn.Close()
		return
	}

	s.wg.Add(3)
	go func() {
		defer s.wg.Done()
		sess.readPump()
	}()
	go func() {
		defer s.wg.Done()
		sess.writePump()
	}()
	go func() {
		defer s.wg.Done()
		sess.run()
	}()
}

// HandleHealth reports liveness plus enough for a dashboard: the session
// count and the mode table.
func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	status := "healthy"
	if s.getState() != ServerStateRunning {
		status = "draining"
	}

	writeJSON(w, http.StatusOK, HealthResponse{
		Status:         status,
		ActiveSessions: s.ActiveSessions(),
		AvailableModes: model.ModeNames(),
		Version:        version.Get().Version,
	})
}
