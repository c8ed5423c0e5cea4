package config

import "time"

// Config holds runtime settings for the MoodMapper CLI.
//
// Fields:
//   - ServerEndpointAddr: base URL of the backend HTTP API.
//   - DatabasePath: path of the local sqlite database file.
//   - PollInterval: how often the watcher polls for remote changes.
//   - PullDebounce: window after a local mutation in which incoming
//     remote batches are dropped as push echo.
//   - SyncRecency: how long after a successful pull the status stays
//     "synced" without a count match.
type Config struct {
	ServerEndpointAddr string
	DatabasePath       string
	PollInterval       time.Duration
	PullDebounce       time.Duration
	SyncRecency        time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "http://127.0.0.1:8080"
	c.DatabasePath = "moodmapper.db"
	c.PollInterval = 5 * time.Second
	c.PullDebounce = 3 * time.Second
	c.SyncRecency = 5 * time.Minute
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
