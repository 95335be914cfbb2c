package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestLoadDefaults verifies the defaults produce a valid configuration
func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Server.Host != "localhost" {
		t.Errorf("Expected server host 'localhost', got '%s'", cfg.Server.Host)
	}
	if cfg.Server.Port != 18089 {
		t.Errorf("Expected server port 18089, got %d", cfg.Server.Port)
	}
	if cfg.Server.ReleaseTimeout != 2*time.Second {
		t.Errorf("Expected release timeout 2s, got %v", cfg.Server.ReleaseTimeout)
	}
	if cfg.Storage.Driver != "sqlite" {
		t.Errorf("Expected storage driver 'sqlite', got '%s'", cfg.Storage.Driver)
	}
	if cfg.Tray.Interval != 500*time.Millisecond {
		t.Errorf("Expected tray interval 500ms, got %v", cfg.Tray.Interval)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Expected log level 'info', got '%s'", cfg.Log.Level)
	}
}

// TestLoadFromEnvironment tests loading configuration from environment variables
func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	t.Run("Environment variables override defaults", func(t *testing.T) {
		t.Setenv("DESKMATTER_SERVER_PORT", "19090")
		t.Setenv("DESKMATTER_SERVER_READ_TIMEOUT", "45s")
		t.Setenv("DESKMATTER_STORAGE_DSN", "custom.db")
		t.Setenv("DESKMATTER_TRAY_MODE", "TITLE")
		t.Setenv("DESKMATTER_LOG_LEVEL", "DEBUG")
		t.Setenv("DESKMATTER_LOG_PRETTY", "true")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Failed to load config: %v", err)
		}

		if cfg.Server.Port != 19090 {
			t.Errorf("Expected server port 19090, got %d", cfg.Server.Port)
		}
		if cfg.Server.ReadTimeout != 45*time.Second {
			t.Errorf("Expected read timeout 45s, got %v", cfg.Server.ReadTimeout)
		}
		if cfg.Storage.DSN != "custom.db" {
			t.Errorf("Expected storage dsn 'custom.db', got '%s'", cfg.Storage.DSN)
		}
		if cfg.Tray.Mode != "title" {
			t.Errorf("Expected tray mode 'title', got '%s'", cfg.Tray.Mode)
		}
		if cfg.Log.Level != "debug" {
			t.Errorf("Expected log level 'debug', got '%s'", cfg.Log.Level)
		}
		if !cfg.Log.Pretty {
			t.Error("Expected log pretty to be true")
		}
	})

	t.Run("Privileged port is rejected", func(t *testing.T) {
		t.Setenv("DESKMATTER_SERVER_PORT", "80")

		if _, err := Load(); err == nil {
			t.Error("Expected error for privileged port")
		}
	})

	t.Run("Non-loopback host is rejected", func(t *testing.T) {
		t.Setenv("DESKMATTER_SERVER_HOST", "0.0.0.0")

		if _, err := Load(); err == nil {
			t.Error("Expected error for non-loopback host")
		}
	})
}

// TestLoadFile tests loading an explicit YAML file
func TestLoadFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	dir := t.TempDir()
	path := filepath.Join(dir, "deskmatter.yaml")
	content := `
server:
  port: 20001
  host: 127.0.0.1
storage:
  driver: sqlite
  dsn: file::memory:
tray:
  interval: 250ms
scheduler:
  enabled: false
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Server.Port != 20001 {
		t.Errorf("Expected server port 20001, got %d", cfg.Server.Port)
	}
	if cfg.Server.Addr(cfg.Server.Port) != "127.0.0.1:20001" {
		t.Errorf("Expected addr '127.0.0.1:20001', got '%s'", cfg.Server.Addr(cfg.Server.Port))
	}
	if cfg.Tray.Interval != 250*time.Millisecond {
		t.Errorf("Expected tray interval 250ms, got %v", cfg.Tray.Interval)
	}
	if cfg.Scheduler.Enabled {
		t.Error("Expected scheduler to be disabled")
	}

	t.Run("Missing explicit file fails", func(t *testing.T) {
		if _, err := LoadFile(filepath.Join(dir, "missing.yaml")); err == nil {
			t.Error("Expected error for missing explicit config file")
		}
	})
}

func TestValidatePort(t *testing.T) {
	testCases := []struct {
		port    int
		wantErr bool
	}{
		{0, true},
		{443, true},
		{1023, true},
		{1024, false},
		{18089, false},
		{65535, false},
		{65536, true},
	}

	for _, tc := range testCases {
		err := ValidatePort(tc.port)
		if (err != nil) != tc.wantErr {
			t.Errorf("ValidatePort(%d): expected error=%v, got %v", tc.port, tc.wantErr, err)
		}
	}
}

func TestValidateLogConfig(t *testing.T) {
	t.Run("Rotating file requires a size", func(t *testing.T) {
		err := validateLogConfig(LogConfig{Level: "info", File: "app.log"})
		if err == nil {
			t.Error("Expected error for zero max_size_mb")
		}
	})

	t.Run("Trace level is accepted", func(t *testing.T) {
		if err := validateLogConfig(LogConfig{Level: "trace"}); err != nil {
			t.Errorf("Expected trace to be valid, got %v", err)
		}
	})

	t.Run("Unknown level fails", func(t *testing.T) {
		err := validateLogConfig(LogConfig{Level: "verbose"})
		if err == nil {
			t.Error("Expected error for unknown level")
		}
	})
}

func TestConfigValidateAfterOverrides(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := LoadFile("")
	if err != nil {
		t.Fatalf("Failed to load defaults: %v", err)
	}

	t.Run("Override is normalized", func(t *testing.T) {
		cfg.Log.Level = "TRACE"
		if err := cfg.Validate(); err != nil {
			t.Fatalf("Expected valid config, got %v", err)
		}
		if cfg.Log.Level != "trace" {
			t.Errorf("Expected log level 'trace', got '%s'", cfg.Log.Level)
		}
	})

	t.Run("Invalid level override fails", func(t *testing.T) {
		cfg.Log.Level = "verbose"
		if err := cfg.Validate(); err == nil {
			t.Error("Expected error for unknown level")
		}
		cfg.Log.Level = "info"
	})

	t.Run("Privileged port override fails", func(t *testing.T) {
		cfg.Server.Port = 80
		if err := cfg.Validate(); err == nil {
			t.Error("Expected error for privileged port")
		}
	})
}
