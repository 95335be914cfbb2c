package config

import (
	"fmt"
	"net"
	"slices"
	"strings"
	"time"
)

// Package-level constants for performance optimization
var (
	validLogLevels      = []string{"trace", "debug", "info", "warn", "error", "fatal", "panic"}
	validStorageDrivers = []string{"sqlite", "postgres"}
	validTrayModes      = []string{"icon", "title"}
)

const (
	// MinPort is the lowest port the facade may bind; privileged ports are refused.
	MinPort = 1024
	// MaxPort is the highest valid TCP port.
	MaxPort = 65535
)

// Validate normalizes and validates c. Callers that change a loaded
// configuration, such as command line overrides, run it again.
func (c *Config) Validate() error {
	normalizeConfig(c)
	return validateConfig(c)
}

// validateConfig validates the configuration and returns an error if invalid.
func validateConfig(c *Config) error {
	for _, validate := range []func() error{
		func() error { return validateServerConfig(c.Server) },
		func() error { return validateStorageConfig(c.Storage) },
		func() error { return validateTrayConfig(c.Tray) },
		func() error { return validateSchedulerConfig(c.Scheduler) },
		func() error { return validateLogConfig(c.Log) },
	} {
		if err := validate(); err != nil {
			return err
		}
	}
	return nil
}

// ValidatePort reports whether port is a usable unprivileged TCP port.
func ValidatePort(port int) error {
	if port < MinPort || port > MaxPort {
		return fmt.Errorf("port %d out of range (%d-%d)", port, MinPort, MaxPort)
	}
	return nil
}

// validateServerConfig validates server configuration.
func validateServerConfig(s ServerConfig) error {
	if s.Host == "" {
		return fmt.Errorf("server.host cannot be empty")
	}

	// The facade is local-only
	if s.Host != "localhost" {
		ip := net.ParseIP(s.Host)
		if ip == nil || !ip.IsLoopback() {
			return fmt.Errorf("server.host must be a loopback address, got %s", s.Host)
		}
	}

	if err := ValidatePort(s.Port); err != nil {
		return fmt.Errorf("server.port: %w", err)
	}

	// Validate timeouts
	if s.ReadTimeout <= 0 {
		return fmt.Errorf("server.read_timeout must be greater than 0")
	}
	if s.WriteTimeout <= 0 {
		return fmt.Errorf("server.write_timeout must be greater than 0")
	}
	if s.IdleTimeout <= 0 {
		return fmt.Errorf("server.idle_timeout must be greater than 0")
	}
	if s.ShutdownTimeout <= 0 {
		return fmt.Errorf("server.shutdown_timeout must be greater than 0")
	}
	if s.ReleaseTimeout <= 0 {
		return fmt.Errorf("server.release_timeout must be greater than 0")
	}

	// Validate timeout ranges (reasonable limits)
	if s.ReadTimeout > 5*time.Minute {
		return fmt.Errorf("server.read_timeout too large (max 5m)")
	}
	if s.WriteTimeout > 5*time.Minute {
		return fmt.Errorf("server.write_timeout too large (max 5m)")
	}
	if s.IdleTimeout > 30*time.Minute {
		return fmt.Errorf("server.idle_timeout too large (max 30m)")
	}
	if s.ShutdownTimeout > 2*time.Minute {
		return fmt.Errorf("server.shutdown_timeout too large (max 2m)")
	}
	if s.ReleaseTimeout > 30*time.Second {
		return fmt.Errorf("server.release_timeout too large (max 30s)")
	}

	return nil
}

// validateStorageConfig validates storage configuration.
func validateStorageConfig(s StorageConfig) error {
	if !slices.Contains(validStorageDrivers, s.Driver) {
		return fmt.Errorf("storage.driver must be one of: %s", strings.Join(validStorageDrivers, ", "))
	}
	if s.DSN == "" {
		return fmt.Errorf("storage.dsn cannot be empty")
	}

	// Validate connection pool settings
	if s.MaxOpenConns <= 0 {
		return fmt.Errorf("storage.max_open_conns must be greater than 0")
	}
	if s.MaxIdleConns < 0 {
		return fmt.Errorf("storage.max_idle_conns cannot be negative")
	}
	if s.MaxIdleConns > s.MaxOpenConns {
		return fmt.Errorf("storage.max_idle_conns cannot be greater than max_open_conns")
	}
	if s.ConnMaxLifetime <= 0 {
		return fmt.Errorf("storage.conn_max_lifetime must be greater than 0")
	}
	if s.MaxOpenConns > 1000 {
		return fmt.Errorf("storage.max_open_conns too large (max 1000)")
	}

	return nil
}

// validateTrayConfig validates tray flashing configuration.
func validateTrayConfig(t TrayConfig) error {
	if t.Interval < 50*time.Millisecond {
		return fmt.Errorf("tray.interval too small (min 50ms)")
	}
	if t.Interval > 10*time.Second {
		return fmt.Errorf("tray.interval too large (max 10s)")
	}
	if !slices.Contains(validTrayModes, t.Mode) {
		return fmt.Errorf("tray.mode must be one of: %s", strings.Join(validTrayModes, ", "))
	}
	return nil
}

// validateSchedulerConfig validates scheduler configuration.
func validateSchedulerConfig(s SchedulerConfig) error {
	if s.WorkerCount <= 0 {
		return fmt.Errorf("scheduler.worker_count must be greater than 0")
	}
	if s.WorkerCount > 64 {
		return fmt.Errorf("scheduler.worker_count too large (max 64)")
	}

	if s.DefaultInterval < 5*time.Second {
		return fmt.Errorf("scheduler.default_interval too small (min 5s)")
	}
	if s.DefaultInterval > 24*time.Hour {
		return fmt.Errorf("scheduler.default_interval too large (max 24h)")
	}

	if s.MaxRetries < 0 {
		return fmt.Errorf("scheduler.max_retries cannot be negative")
	}
	if s.MaxRetries > 10 {
		return fmt.Errorf("scheduler.max_retries too large (max 10)")
	}

	return nil
}

// validateLogConfig validates log configuration.
func validateLogConfig(l LogConfig) error {
	if !slices.Contains(validLogLevels, strings.ToLower(l.Level)) {
		return fmt.Errorf("log.level must be one of: %s", strings.Join(validLogLevels, ", "))
	}
	if l.File != "" {
		if l.MaxSizeMB <= 0 {
			return fmt.Errorf("log.max_size_mb must be greater than 0")
		}
		if l.MaxBackups < 0 {
			return fmt.Errorf("log.max_backups cannot be negative")
		}
		if l.MaxAgeDays < 0 {
			return fmt.Errorf("log.max_age_days cannot be negative")
		}
	}
	return nil
}
