package config

import (
	"encoding/json"
	"os"

	"github.com/moodmapper/moodmapper/internal/flagx"
	"github.com/moodmapper/moodmapper/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
// It relies on timex.Duration so JSON can specify token lifetimes either
// as strings like "15m" or as integer nanoseconds.
type JsonConfig struct {
	EndpointAddr                 string         `json:"endpoint_addr"`
	DatabaseDSN                  string         `json:"database_dsn"`
	SecretKey                    string         `json:"secret_key"`
	AccessTokenValidityDuration  timex.Duration `json:"access_token_validity"`
	RefreshTokenValidityDuration timex.Duration `json:"refresh_token_validity"`
}

// parseJson overlays Config with values loaded from a JSON file located via
// the -c/-config flags. Only fields present in the file override current
// values; the intended order is defaults -> parseJson -> parseFlags.
func parseJson(cfg *Config) {
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

	if jc.EndpointAddr != "" {
		cfg.EndpointAddr = jc.EndpointAddr
	}
	if jc.DatabaseDSN != "" {
		cfg.DatabaseDSN = jc.DatabaseDSN
	}
	if jc.SecretKey != "" {
		cfg.SecretKey = jc.SecretKey
	}
	if jc.AccessTokenValidityDuration.Duration > 0 {
		cfg.AccessTokenValidityDuration = jc.AccessTokenValidityDuration.Duration
	}
	if jc.RefreshTokenValidityDuration.Duration > 0 {
		cfg.RefreshTokenValidityDuration = jc.RefreshTokenValidityDuration.Duration
	}
}
