// Package config loads runtime configuration for the client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-p string    identity provider kind: memory or grpc
//	-a string    address:port of the identity provider
//	-t string    token cache file
//	-i int       online status check interval (seconds)
//	-w duration  initialization wait timeout
//	-d duration  navigation delay after sign-in
//	-l string    language
//	-v string    log level
//
// # JSON schema
//
// The JSON loader uses timex.Duration for intervals, so values can be either
// strings like "3s" or integer nanoseconds:
//
//	{
//	  "provider_kind": "grpc",
//	  "provider_endpoint_addr": "127.0.0.1:50051",
//	  "token_cache_path": "authgate.db",
//	  "online_check_interval": "3s",
//	  "init_timeout": "10s",
//	  "navigation_delay": "100ms",
//	  "language": "fr",
//	  "log_level": "debug"
//	}
//
// Note: This package does not read environment variables directly; use the
// JSON file or flags to configure values.
package config
