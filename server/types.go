package server

import (
	"encoding/json"
	"time"
)

// WebSocket timeout constants following Gorilla best practices
// See: https://github.com/gorilla/websocket/blob/master/examples/chat/client.go
const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = 54 * time.Second

	// Maximum message size allowed from peer (4MB: a base64 webcam JPEG
	// plus envelope overhead)
	maxMessageSize = 4 * 1024 * 1024

	// sendQueueSize is the per-session outbound buffer. Replies are bounded
	// by the in-flight cap, so a small queue only has to absorb control
	// replies arriving between writes.
	sendQueueSize = 16

	// ShutdownTimeout is how long Stop waits for session goroutines
	ShutdownTimeout = 10 * time.Second
)

// ServerState represents the server lifecycle state
type ServerState int

const (
	ServerStateRunning  ServerState = iota // Normal operation
	ServerStateDraining                    // Graceful shutdown in progress
	ServerStateStopped                     // Shutdown complete
)

// SessionState tracks one connection through its lifecycle. Transitions are
// one-way; a session that leaves READY never returns to it.
type SessionState int32

const (
	StateConnecting   SessionState = iota // socket accepted, nothing allocated
	StateInitializing                     // engine/renderer allocated, default mode loading
	StateReady                            // serving frames and control messages
	StateClosing                          // teardown begun, in-flight frame may finish
	StateClosed                           // resources released
)

func (s SessionState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateInitializing:
		return "initializing"
	case StateReady:
		return "ready"
	case StateClosing:
		return "closing"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Envelope is the inbound wire message. Every message carries a type
// discriminator; the remaining fields are type-specific.
type Envelope struct {
	Type      string       `json:"type"`
	Data      string       `json:"data,omitempty"`       // frame: base64 JPEG
	Timestamp int64        `json:"timestamp,omitempty"`  // frame: client-local ms
	ModelMode string       `json:"model_mode,omitempty"` // change_mode
	Settings  *VizSettings `json:"settings,omitempty"`   // update_viz
}

// VizSettings carries update_viz fields. Pointers distinguish "absent" from
// zero values so clients can update any subset. ClassFilter stays raw
// because its three states differ on the wire: absent (unchanged), null
// (clear the filter), list (replace it).
type VizSettings struct {
	VisualizationMode *string         `json:"visualization_mode,omitempty"`
	OverlayOpacity    *float64        `json:"overlay_opacity,omitempty"`
	ClassFilter       json.RawMessage `json:"class_filter,omitempty"`
}

// ConnectedMessage confirms a session reached READY.
type ConnectedMessage struct {
	Type            string   `json:"type"` // "connected"
	Status          string   `json:"status"`
	AvailableModels []string `json:"available_models"`
	ClassLabels     []string `json:"class_labels"`
	CurrentModel    string   `json:"current_model"`
}

// SegmentationMessage is the rendered reply to one frame.
type SegmentationMessage struct {
	Type      string      `json:"type"` // "segmentation"
	Timestamp int64       `json:"timestamp"`
	Data      string      `json:"data"` // base64 JPEG
	Metadata  SegMetadata `json:"metadata"`
}

// SegMetadata describes the prediction behind a segmentation reply.
type SegMetadata struct {
	InferenceTimeMS float64  `json:"inference_time_ms"`
	TotalTimeMS     float64  `json:"total_time_ms"`
	ModelMode       string   `json:"model_mode"`
	FPS             float64  `json:"fps"`
	AvgInferenceMS  float64  `json:"avg_inference_ms"`
	DetectedClasses []string `json:"detected_classes"`
}

// ModeChangedMessage confirms a change_mode request.
type ModeChangedMessage struct {
	Type        string   `json:"type"` // "mode_changed"
	ModelMode   string   `json:"model_mode"`
	ClassLabels []string `json:"class_labels"`
}

// VizUpdatedMessage echoes the applied visualization settings.
type VizUpdatedMessage struct {
	Type     string             `json:"type"` // "viz_updated"
	Settings AppliedVizSettings `json:"settings"`
}

// AppliedVizSettings is the canonical settings state after an update.
type AppliedVizSettings struct {
	VisualizationMode string  `json:"visualization_mode"`
	OverlayOpacity    float64 `json:"overlay_opacity"`
	ClassFilter       []int   `json:"class_filter"` // nil = all classes
}

// StatsMessage is the reply to get_stats. avg_inference_ms is an EWMA with
// smoothing factor 0.1; fps is 1000 over that average.
type StatsMessage struct {
	Type           string  `json:"type"` // "stats"
	FPS            float64 `json:"fps"`
	AvgInferenceMS float64 `json:"avg_inference_ms"`
	MinInferenceMS float64 `json:"min_inference_ms"`
	MaxInferenceMS float64 `json:"max_inference_ms"`
	FramesInFlight int     `json:"frames_in_flight"`
	FramesDropped  int64   `json:"frames_dropped"`
}

// ErrorMessage reports a recoverable per-request failure.
type ErrorMessage struct {
	Type        string `json:"type"` // "error"
	Code        string `json:"code"`
	Message     string `json:"message"`
	Recoverable bool   `json:"recoverable"`
}

// VersionMessage is pushed right after the upgrade, before connected.
// Clients may ignore it.
type VersionMessage struct {
	Type      string `json:"type"` // "version"
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"build_time"`
}

// HealthResponse is the GET /health payload.
type HealthResponse struct {
	Status         string   `json:"status"`
	ActiveSessions int      `json:"active_sessions"`
	AvailableModes []string `json:"available_modes"`
	Version        string   `json:"version"`
}
