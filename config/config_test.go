package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
)

func TestLoad_Defaults(t *testing.T) {
	// Create isolated viper instance without loading user/system config
	v := viper.New()
	SetDefaults(v)

	// Load config from isolated viper
	cfg, err := LoadWithViper(v)
	if err != nil {
		t.Fatalf("LoadWithViper() failed: %v", err)
	}

	if cfg.GetPort() != DefaultServerPort {
		t.Errorf("expected default port %d, got %d", DefaultServerPort, cfg.GetPort())
	}

	if cfg.Model.DefaultMode != "balanced" {
		t.Errorf("expected default mode 'balanced', got %q", cfg.Model.DefaultMode)
	}

	if cfg.Pipeline.MaxInFlight != 2 {
		t.Errorf("expected default max in-flight 2, got %d", cfg.Pipeline.MaxInFlight)
	}

	if cfg.Reply.JPEGQuality != 60 {
		t.Errorf("expected default reply quality 60, got %d", cfg.Reply.JPEGQuality)
	}
}

func TestSetDefaults(t *testing.T) {
	v := viper.New()
	SetDefaults(v)

	// Verify critical defaults are set
	tests := []struct {
		key      string
		expected interface{}
	}{
		{"server.port", DefaultServerPort},
		{"server.max_sessions", 100},
		{"model.default_mode", "balanced"},
		{"model.backend", "dev"},
		{"model.preload", false},
		{"pipeline.max_in_flight", 2},
		{"pipeline.min_frame_interval_ms", 33},
		{"session.inactivity_timeout_seconds", 10},
		{"session.warmup_iterations", 3},
		{"reply.jpeg_quality", 60},
		{"reply.max_width", 960},
		{"reply.max_height", 540},
		{"log.level", "info"},
		{"log.theme", "everforest"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got := v.Get(tt.key)
			if got != tt.expected {
				t.Errorf("default %s = %v, want %v", tt.key, got, tt.expected)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		v := viper.New()
		SetDefaults(v)
		cfg, err := LoadWithViper(v)
		if err != nil {
			t.Fatalf("LoadWithViper() failed: %v", err)
		}
		return *cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "defaults are valid",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "zero port is invalid",
			mutate:  func(c *Config) { zero := 0; c.Server.Port = &zero },
			wantErr: true,
		},
		{
			name:    "negative port is invalid",
			mutate:  func(c *Config) { neg := -1; c.Server.Port = &neg },
			wantErr: true,
		},
		{
			name:    "zero max sessions is valid (use default)",
			mutate:  func(c *Config) { c.Server.MaxSessions = 0 },
			wantErr: false,
		},
		{
			name:    "zero in-flight is invalid",
			mutate:  func(c *Config) { c.Pipeline.MaxInFlight = 0 },
			wantErr: true,
		},
		{
			name:    "zero frame interval is valid (no pacing)",
			mutate:  func(c *Config) { c.Pipeline.MinFrameIntervalMs = 0 },
			wantErr: false,
		},
		{
			name:    "negative frame interval is invalid",
			mutate:  func(c *Config) { c.Pipeline.MinFrameIntervalMs = -1 },
			wantErr: true,
		},
		{
			name:    "zero warmup is valid (skip warm-up)",
			mutate:  func(c *Config) { c.Session.WarmupIterations = 0 },
			wantErr: false,
		},
		{
			name:    "quality above 100 is invalid",
			mutate:  func(c *Config) { c.Reply.JPEGQuality = 101 },
			wantErr: true,
		},
		{
			name:    "quality zero is invalid",
			mutate:  func(c *Config) { c.Reply.JPEGQuality = 0 },
			wantErr: true,
		},
		{
			name:    "empty default mode is invalid",
			mutate:  func(c *Config) { c.Model.DefaultMode = "" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestFindProjectConfig(t *testing.T) {
	tmpDir := t.TempDir()

	t.Run("prefers segstream.toml", func(t *testing.T) {
		subDir := filepath.Join(tmpDir, "test1", "subdir")
		os.MkdirAll(subDir, DefaultDirPermissions)

		// Create both config files
		os.WriteFile(filepath.Join(tmpDir, "test1", "segstream.toml"), []byte(""), DefaultFilePermissions)
		os.WriteFile(filepath.Join(tmpDir, "test1", "config.toml"), []byte(""), DefaultFilePermissions)

		oldWd, _ := os.Getwd()
		defer os.Chdir(oldWd)
		os.Chdir(subDir)

		result := findProjectConfig()
		if result == "" {
			t.Error("expected to find config file")
		}
		if filepath.Base(result) != "segstream.toml" {
			t.Errorf("expected segstream.toml, got %s", filepath.Base(result))
		}
	})

	t.Run("fallback to config.toml", func(t *testing.T) {
		subDir := filepath.Join(tmpDir, "test2", "subdir")
		os.MkdirAll(subDir, DefaultDirPermissions)

		os.WriteFile(filepath.Join(tmpDir, "test2", "config.toml"), []byte(""), DefaultFilePermissions)

		oldWd, _ := os.Getwd()
		defer os.Chdir(oldWd)
		os.Chdir(subDir)

		result := findProjectConfig()
		if result == "" {
			t.Error("expected to find config file")
		}
		if filepath.Base(result) != "config.toml" {
			t.Errorf("expected config.toml, got %s", filepath.Base(result))
		}
	})

	t.Run("no config found", func(t *testing.T) {
		subDir := filepath.Join(tmpDir, "test3", "subdir")
		os.MkdirAll(subDir, DefaultDirPermissions)

		oldWd, _ := os.Getwd()
		defer os.Chdir(oldWd)
		os.Chdir(subDir)

		result := findProjectConfig()
		if result != "" {
			t.Errorf("expected empty string, got %s", result)
		}
	})
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "segstream.toml")

	content := []byte(`
[server]
port = 9100
max_sessions = 4

[model]
default_mode = "fast"

[reply]
jpeg_quality = 80
`)
	if err := os.WriteFile(path, content, DefaultFilePermissions); err != nil {
		t.Fatalf("write temp config: %v", err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile() failed: %v", err)
	}

	if cfg.GetPort() != 9100 {
		t.Errorf("expected port 9100, got %d", cfg.GetPort())
	}
	if cfg.Server.MaxSessions != 4 {
		t.Errorf("expected max_sessions 4, got %d", cfg.Server.MaxSessions)
	}
	if cfg.Model.DefaultMode != "fast" {
		t.Errorf("expected mode 'fast', got %q", cfg.Model.DefaultMode)
	}
	if cfg.Reply.JPEGQuality != 80 {
		t.Errorf("expected quality 80, got %d", cfg.Reply.JPEGQuality)
	}

	// Values absent from the file keep their defaults
	if cfg.Pipeline.MaxInFlight != 2 {
		t.Errorf("expected default max in-flight 2, got %d", cfg.Pipeline.MaxInFlight)
	}
}

func TestDurationHelpers(t *testing.T) {
	v := viper.New()
	SetDefaults(v)

	cfg, err := LoadWithViper(v)
	if err != nil {
		t.Fatalf("LoadWithViper() failed: %v", err)
	}

	if got := cfg.Session.InactivityTimeout().Seconds(); got != 10 {
		t.Errorf("expected 10s inactivity timeout, got %vs", got)
	}
	if got := cfg.Pipeline.MinFrameInterval().Milliseconds(); got != 33 {
		t.Errorf("expected 33ms frame interval, got %vms", got)
	}
}

func TestGetMaxSessions(t *testing.T) {
	cfg := Config{}
	if got := cfg.GetMaxSessions(); got != 100 {
		t.Errorf("expected fallback 100, got %d", got)
	}

	cfg.Server.MaxSessions = 7
	if got := cfg.GetMaxSessions(); got != 7 {
		t.Errorf("expected 7, got %d", got)
	}
}

func TestReset(t *testing.T) {
	Reset()
	if globalConfig != nil || viperInstance != nil {
		t.Error("Reset() should clear cached state")
	}
}
