package config

import "time"

// Config holds runtime settings for the StudioVault uploader CLI.
//
// Fields:
//   - ServerEndpointAddr: base URL of the broker API.
//   - CollectionID: collection the upload batch belongs to.
//   - Parallel: number of concurrent transfers.
//   - MaxRetries: retry budget per file after the first attempt.
//   - PerAttemptTimeout: deadline for a single transfer attempt.
type Config struct {
	ServerEndpointAddr string
	CollectionID       string
	Parallel           int
	MaxRetries         int
	PerAttemptTimeout  time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "http://127.0.0.1:8080"
	c.Parallel = 4
	c.MaxRetries = 3
	c.PerAttemptTimeout = 5 * time.Minute
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
