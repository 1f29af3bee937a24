package config

import (
	"fmt"
	"time"
)

// Config represents the segstream gateway configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Model    ModelConfig    `mapstructure:"model"`
	Pipeline PipelineConfig `mapstructure:"pipeline"`
	Session  SessionConfig  `mapstructure:"session"`
	Reply    ReplyConfig    `mapstructure:"reply"`
	Log      LogConfig      `mapstructure:"log"`
}

// ServerConfig configures the HTTP/WebSocket listener
type ServerConfig struct {
	Port           *int     `mapstructure:"port"`            // Listen port: nil = default 8000, 0 is invalid (omit for default)
	AllowedOrigins []string `mapstructure:"allowed_origins"` // CORS/upgrade origins; ["*"] = unrestricted
	MaxSessions    int      `mapstructure:"max_sessions"`    // Concurrent session cap (default: 100)
}

// ModelConfig configures model selection and loading
type ModelConfig struct {
	DefaultMode string `mapstructure:"default_mode"` // Mode assigned to new sessions (default: balanced)
	Backend     string `mapstructure:"backend"`      // Inference backend: "dev" ships with the binary
	Dir         string `mapstructure:"dir"`          // Directory holding model weights
	Preload     bool   `mapstructure:"preload"`      // Load every profile at startup
}

// PipelineConfig configures per-session frame admission
type PipelineConfig struct {
	MaxInFlight        int `mapstructure:"max_in_flight"`         // Frames concurrently past admission (default: 2)
	MinFrameIntervalMs int `mapstructure:"min_frame_interval_ms"` // Minimum spacing between admitted frames (default: 33)
}

// SessionConfig configures per-connection lifecycle behavior
type SessionConfig struct {
	InactivityTimeoutSeconds int `mapstructure:"inactivity_timeout_seconds"` // Close idle sessions before first frame (default: 10)
	WarmupIterations         int `mapstructure:"warmup_iterations"`          // Synthetic forward passes after a model load (default: 3)
}

// ReplyConfig configures the rendered reply image
type ReplyConfig struct {
	JPEGQuality int `mapstructure:"jpeg_quality"` // Encoder quality 1-100 (default: 60)
	MaxWidth    int `mapstructure:"max_width"`    // Reply width cap, aspect preserved (default: 960)
	MaxHeight   int `mapstructure:"max_height"`   // Reply height cap, aspect preserved (default: 540)
}

// LogConfig configures logging output
type LogConfig struct {
	JSON  bool   `mapstructure:"json"`  // JSON log output instead of the console encoder
	Level string `mapstructure:"level"` // Minimum level: debug, info, warn, error
	Theme string `mapstructure:"theme"` // Console color theme: gruvbox, everforest
}

// Server port constants
const (
	DefaultServerPort = 8000 // Matches the reference frontend's ws://localhost:8000/ws
	MaxPortProbes     = 10   // How far past the configured port to probe when busy
)

// File system constants
const (
	DefaultDirPermissions  = 0755 // Standard directory permissions (rwxr-xr-x)
	DefaultFilePermissions = 0644 // Standard file permissions (rw-r--r--)
)

// InactivityTimeout returns the idle deadline as a duration
func (s SessionConfig) InactivityTimeout() time.Duration {
	return time.Duration(s.InactivityTimeoutSeconds) * time.Second
}

// MinFrameInterval returns the admission spacing as a duration
func (p PipelineConfig) MinFrameInterval() time.Duration {
	return time.Duration(p.MinFrameIntervalMs) * time.Millisecond
}

// String returns a string representation of the config
func (c *Config) String() string {
	return fmt.Sprintf("Config{Server: {Port: %d, MaxSessions: %d}, Model: {DefaultMode: %s, Backend: %s}}",
		c.GetPort(), c.GetMaxSessions(), c.Model.DefaultMode, c.Model.Backend)
}
