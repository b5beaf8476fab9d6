package config

import (
	"fmt"
	"os"
	"time"
)

// Provider kinds.
const (
	ProviderMemory = "memory"
	ProviderGRPC   = "grpc"
)

// Config holds runtime settings for the client.
//
// Fields:
//   - ProviderKind: which identity provider to use, "memory" or "grpc".
//   - ProviderEndpointAddr: host:port of the identity provider (grpc only).
//   - TokenCachePath: SQLite file keeping the id token between runs.
//   - OnlineCheckInterval: how often the client probes provider reachability.
//   - InitTimeout: bound on how long guards wait for the provider; 0 waits forever.
//   - NavigationDelay: pause between a successful sign-in and leaving the auth screen.
//   - Language: message language, "en" or "fr".
//   - LogLevel: debug, info, warn or error.
type Config struct {
	ProviderKind         string
	ProviderEndpointAddr string
	TokenCachePath       string
	OnlineCheckInterval  time.Duration
	InitTimeout          time.Duration
	NavigationDelay      time.Duration
	Language             string
	LogLevel             string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ProviderKind = ProviderMemory
	c.ProviderEndpointAddr = "127.0.0.1:50051"
	c.TokenCachePath = "authgate.db"
	c.OnlineCheckInterval = 3 * time.Second
	c.InitTimeout = 0
	c.NavigationDelay = 100 * time.Millisecond
	c.Language = "en"
	c.LogLevel = "info"
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch c.ProviderKind {
	case ProviderMemory, ProviderGRPC:
	default:
		return fmt.Errorf("unknown provider kind %q", c.ProviderKind)
	}
	if c.ProviderKind == ProviderGRPC && c.ProviderEndpointAddr == "" {
		return fmt.Errorf("provider endpoint address is required for %s", ProviderGRPC)
	}
	if c.OnlineCheckInterval <= 0 {
		return fmt.Errorf("online check interval must be positive, got %s", c.OnlineCheckInterval)
	}
	if c.InitTimeout < 0 || c.NavigationDelay < 0 {
		return fmt.Errorf("durations must not be negative")
	}
	return nil
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones. Invalid input panics.
func LoadConfig() *Config {
	return load(os.Args[1:])
}

func load(args []string) *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg, args)
	parseFlags(cfg, args)
	if err := cfg.Validate(); err != nil {
		panic(err)
	}
	return cfg
}
