package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/authgate/internal/flagx"
	"github.com/dmitrijs2005/authgate/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
// It relies on timex.Duration so JSON can specify intervals either as
// strings like "3s" or as integer nanoseconds.
type JsonConfig struct {
	ProviderKind         string         `json:"provider_kind"`
	ProviderEndpointAddr string         `json:"provider_endpoint_addr"`
	TokenCachePath       string         `json:"token_cache_path"`
	OnlineCheckInterval  timex.Duration `json:"online_check_interval"`
	InitTimeout          timex.Duration `json:"init_timeout"`
	NavigationDelay      timex.Duration `json:"navigation_delay"`
	Language             string         `json:"language"`
	LogLevel             string         `json:"log_level"`
}

// parseJson overlays Config with values loaded from the JSON file named by
// -c or -config. Fields absent from the file keep their current value.
// Panics on read or unmarshal errors.
func parseJson(cfg *Config, args []string) {
	jsonConfigFile := flagx.ConfigPath(args)
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

	setString(&cfg.ProviderKind, jc.ProviderKind)
	setString(&cfg.ProviderEndpointAddr, jc.ProviderEndpointAddr)
	setString(&cfg.TokenCachePath, jc.TokenCachePath)
	setString(&cfg.Language, jc.Language)
	setString(&cfg.LogLevel, jc.LogLevel)
	if jc.OnlineCheckInterval.Duration != 0 {
		cfg.OnlineCheckInterval = jc.OnlineCheckInterval.Duration
	}
	if jc.InitTimeout.Duration != 0 {
		cfg.InitTimeout = jc.InitTimeout.Duration
	}
	if jc.NavigationDelay.Duration != 0 {
		cfg.NavigationDelay = jc.NavigationDelay.Duration
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
