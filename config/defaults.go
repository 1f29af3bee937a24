package config

import (
	"github.com/spf13/viper"
)

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", DefaultServerPort)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.max_sessions", 100)

	// Model defaults
	v.SetDefault("model.default_mode", "balanced")
	v.SetDefault("model.backend", "dev")
	v.SetDefault("model.dir", "models")
	v.SetDefault("model.preload", false)

	// Pipeline defaults: at most two frames past admission, spaced for ~30fps
	v.SetDefault("pipeline.max_in_flight", 2)
	v.SetDefault("pipeline.min_frame_interval_ms", 33)

	// Session defaults
	v.SetDefault("session.inactivity_timeout_seconds", 10)
	v.SetDefault("session.warmup_iterations", 3)

	// Reply defaults: quality and spatial cap for the encoded reply image
	v.SetDefault("reply.jpeg_quality", 60)
	v.SetDefault("reply.max_width", 960)
	v.SetDefault("reply.max_height", 540)

	// Log defaults
	v.SetDefault("log.json", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.theme", "everforest")
}

// BindEnvOverrides explicitly binds deployment-facing configuration to
// environment variables
func BindEnvOverrides(v *viper.Viper) {
	v.BindEnv("server.port", "SEGSTREAM_SERVER_PORT")
	v.BindEnv("model.default_mode", "SEGSTREAM_MODEL_DEFAULT_MODE")
	v.BindEnv("model.backend", "SEGSTREAM_MODEL_BACKEND")
	v.BindEnv("model.dir", "SEGSTREAM_MODEL_DIR")
}

// GetPort returns the configured listen port, or DefaultServerPort (8000)
// if not configured
func (c *Config) GetPort() int {
	if c.Server.Port == nil || *c.Server.Port == 0 {
		return DefaultServerPort
	}
	return *c.Server.Port
}

// GetMaxSessions returns the concurrent session cap (default: 100)
func (c *Config) GetMaxSessions() int {
	if c.Server.MaxSessions <= 0 {
		return 100
	}
	return c.Server.MaxSessions
}

// GetAllowedOrigins returns the allowed upgrade/CORS origins
func (c *Config) GetAllowedOrigins() []string {
	if len(c.Server.AllowedOrigins) == 0 {
		return []string{"*"}
	}
	return c.Server.AllowedOrigins
}

// GetLogTheme returns the console log theme (default: everforest)
func (c *Config) GetLogTheme() string {
	if c.Log.Theme == "" {
		return "everforest"
	}
	return c.Log.Theme
}
