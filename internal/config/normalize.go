package config

import "strings"

// normalizeConfig normalizes configuration values.
func normalizeConfig(c *Config) {
	// Normalize log level to lowercase
	c.Log.Level = strings.ToLower(c.Log.Level)
	c.Storage.Driver = strings.ToLower(strings.TrimSpace(c.Storage.Driver))
	c.Tray.Mode = strings.ToLower(strings.TrimSpace(c.Tray.Mode))
	c.Server.Host = strings.TrimSpace(c.Server.Host)
}
