package config

import "github.com/ostraka/segstream/errors"

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	// Server port: 0 is invalid (omit for default), negative is invalid
	if c.Server.Port != nil && *c.Server.Port == 0 {
		return errors.New("server.port cannot be 0 (omit for default port 8000)")
	}
	if c.Server.Port != nil && *c.Server.Port < 0 {
		return errors.Newf("server.port must be positive, got %d", *c.Server.Port)
	}

	// Session cap: 0 = use default, negative = invalid
	if c.Server.MaxSessions < 0 {
		return errors.Newf("server.max_sessions must be >= 0, got %d", c.Server.MaxSessions)
	}

	// Admission: at least one frame must be able to enter the pipeline
	if c.Pipeline.MaxInFlight < 1 {
		return errors.Newf("pipeline.max_in_flight must be >= 1, got %d", c.Pipeline.MaxInFlight)
	}

	// Interval: 0 = no pacing, negative = invalid
	if c.Pipeline.MinFrameIntervalMs < 0 {
		return errors.Newf("pipeline.min_frame_interval_ms must be >= 0, got %d", c.Pipeline.MinFrameIntervalMs)
	}

	// Inactivity timeout: 0 = disabled, negative = invalid
	if c.Session.InactivityTimeoutSeconds < 0 {
		return errors.Newf("session.inactivity_timeout_seconds must be >= 0, got %d", c.Session.InactivityTimeoutSeconds)
	}

	// Warm-up: 0 = skip synthetic passes, negative = invalid
	if c.Session.WarmupIterations < 0 {
		return errors.Newf("session.warmup_iterations must be >= 0, got %d", c.Session.WarmupIterations)
	}

	// JPEG quality must sit inside the encoder's accepted range
	if c.Reply.JPEGQuality < 1 || c.Reply.JPEGQuality > 100 {
		return errors.Newf("reply.jpeg_quality must be in [1,100], got %d", c.Reply.JPEGQuality)
	}

	if c.Reply.MaxWidth < 1 {
		return errors.Newf("reply.max_width must be >= 1, got %d", c.Reply.MaxWidth)
	}
	if c.Reply.MaxHeight < 1 {
		return errors.Newf("reply.max_height must be >= 1, got %d", c.Reply.MaxHeight)
	}

	if c.Model.DefaultMode == "" {
		return errors.New("model.default_mode cannot be empty")
	}

	return nil
}
