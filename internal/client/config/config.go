package config

import "time"

// Config holds runtime settings for the CLI.
//
// Fields:
//   - GatewayURL: base URL of the gateway's HTTP API.
//   - HealthAddr: host:port of the gateway's gRPC health endpoint; empty
//     falls back to GET /health.
//   - DatabaseDSN: path of the local SQLite database.
//   - RequestTimeout: deadline for one gateway call.
//   - OnlineCheckInterval: how often the client probes server reachability.
type Config struct {
	GatewayURL          string
	HealthAddr          string
	DatabaseDSN         string
	RequestTimeout      time.Duration
	OnlineCheckInterval time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.GatewayURL = "http://127.0.0.1:4000"
	c.HealthAddr = "127.0.0.1:50051"
	c.DatabaseDSN = "authgate.db"
	c.RequestTimeout = 10 * time.Second
	c.OnlineCheckInterval = 3 * time.Second
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
