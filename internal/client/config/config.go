// Package config handles configuration for the CLI client, including
// defaults, JSON overlay, and command-line flags.
package config

import "time"

// Config holds runtime settings for the FICOM Integration Testing CLI.
//
// Fields:
//   - ServerURL: full URL of the backend GraphQL endpoint.
//   - CredentialDB: path of the local SQLite credential database.
//   - RequestTimeout: per-request timeout for GraphQL calls.
type Config struct {
	ServerURL      string
	CredentialDB   string
	RequestTimeout time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8080/graphql"
	c.CredentialDB = "ficom.db"
	c.RequestTimeout = 10 * time.Second
}

// LoadConfig constructs a Config, applies defaults, then overlays values
// from JSON (if present) and command-line flags (if present). Later sources
// take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
