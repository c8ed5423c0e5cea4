package config

import (
	"encoding/json"
	"os"

	"github.com/moodmapper/moodmapper/internal/flagx"
	"github.com/moodmapper/moodmapper/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
// It relies on timex.Duration so JSON can specify intervals either as
// strings like "3s" or as integer nanoseconds. After parsing, values
// are copied into the runtime Config (which uses time.Duration).
type JsonConfig struct {
	ServerEndpointAddr string         `json:"server_endpoint_addr"`
	DatabasePath       string         `json:"database_path"`
	PollInterval       timex.Duration `json:"poll_interval"`
	PullDebounce       timex.Duration `json:"pull_debounce"`
	SyncRecency        timex.Duration `json:"sync_recency"`
}

// parseJson overlays Config with values loaded from a JSON file.
//
// Lookup order for the JSON file path:
//  1. Command-line flags (-c or -config) via flagx.JsonConfigFlags().
//  2. If empty, no JSON is loaded and the function returns.
//
// Only fields present in the file override the current values; the
// intended order is defaults -> parseJson -> parseFlags, where later
// stages override earlier ones.
func parseJson(cfg *Config) {
	// Resolve file path from flags.
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.ServerEndpointAddr != "" {
		cfg.ServerEndpointAddr = jc.ServerEndpointAddr
	}
	if jc.DatabasePath != "" {
		cfg.DatabasePath = jc.DatabasePath
	}
	if jc.PollInterval.Duration > 0 {
		cfg.PollInterval = jc.PollInterval.Duration
	}
	if jc.PullDebounce.Duration > 0 {
		cfg.PullDebounce = jc.PullDebounce.Duration
	}
	if jc.SyncRecency.Duration > 0 {
		cfg.SyncRecency = jc.SyncRecency.Duration
	}
}
