// Package config loads and validates deskmatter configuration.
//
// Configuration sources (in order of precedence):
//  1. Defaults
//  2. Configuration file (optional)
//  3. Environment variables (DESKMATTER_ prefix)
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete configuration schema.
type Config struct {
	Server    ServerConfig    `mapstructure:"server" yaml:"server"`
	Storage   StorageConfig   `mapstructure:"storage" yaml:"storage"`
	Tray      TrayConfig      `mapstructure:"tray" yaml:"tray"`
	Scheduler SchedulerConfig `mapstructure:"scheduler" yaml:"scheduler"`
	Metrics   MetricsConfig   `mapstructure:"metrics" yaml:"metrics"`
	Log       LogConfig       `mapstructure:"log" yaml:"log"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host" yaml:"host"`
	Port            int           `mapstructure:"port" yaml:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout" yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	ReleaseTimeout  time.Duration `mapstructure:"release_timeout" yaml:"release_timeout"`
}

// Addr returns host:port for the given port on the configured host.
func (s ServerConfig) Addr(port int) string {
	return net.JoinHostPort(s.Host, strconv.Itoa(port))
}

type StorageConfig struct {
	Driver          string        `mapstructure:"driver" yaml:"driver"` // sqlite, postgres
	DSN             string        `mapstructure:"dsn" yaml:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns" yaml:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" yaml:"conn_max_lifetime"`
}

type TrayConfig struct {
	Interval time.Duration `mapstructure:"interval" yaml:"interval"`
	Mode     string        `mapstructure:"mode" yaml:"mode"` // icon, title
}

type SchedulerConfig struct {
	Enabled         bool          `mapstructure:"enabled" yaml:"enabled"`
	WorkerCount     int           `mapstructure:"worker_count" yaml:"worker_count"`
	DefaultInterval time.Duration `mapstructure:"default_interval" yaml:"default_interval"`
	MaxRetries      int           `mapstructure:"max_retries" yaml:"max_retries"`
}

type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
}

type LogConfig struct {
	Level      string `mapstructure:"level" yaml:"level"`   // debug, info, warn, error, fatal, panic
	Pretty     bool   `mapstructure:"pretty" yaml:"pretty"` // human-readable console output
	File       string `mapstructure:"file" yaml:"file"`     // optional rotating log file
	MaxSizeMB  int    `mapstructure:"max_size_mb" yaml:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days" yaml:"max_age_days"`
}

// Load loads configuration from defaults, the optional config file found
// in the usual search paths, and environment variables.
func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile is Load with an explicit configuration file. An empty path
// falls back to the search paths used by Load.
//
// The function fails fast on:
//   - Invalid configuration file
//   - Invalid or missing required configuration values
func LoadFile(path string) (*Config, error) {
	v := viper.New()

	// Register default values
	setDefaults(v)

	// Environment variable support
	v.SetEnvPrefix("DESKMATTER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AllowEmptyEnv(false)
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")

		// Cross-platform config directory
		if configDir := getConfigDir(); configDir != "" {
			v.AddConfigPath(configDir)
		}
	}

	// Read configuration file if present
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config file error: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	normalizeConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// getConfigDir returns the appropriate config directory for the current OS
func getConfigDir() string {
	if runtime.GOOS == "windows" {
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "deskmatter")
		}
		return ""
	}

	if home := os.Getenv("HOME"); home != "" {
		return filepath.Join(home, ".deskmatter")
	}
	return ""
}
