// Package config loads runtime configuration for the sealfin CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c or --config.
//  3. Command-line flags registered by BindFlags; only flags given
//     explicitly override earlier values.
//
// Supported flags
//
//	--db string                 path to the local preference database
//	--device-name string        device name reported to servers
//	--connect-timeout duration  TCP connect timeout (default 6s)
//	--socket-timeout duration   response header timeout (default 10s)
//	--request-timeout duration  overall request timeout (default 30s)
//	--retries uint              attempts for idempotent reads (default 3)
//	--log-file string           rotate logs into this file instead of stderr
//	--log-level string          debug, info, warn or error
//	--seal-tokens               encrypt stored access tokens
//
// # JSON schema
//
// The JSON loader uses timex.Duration for timeouts, so values can be either
// strings like "6s" or integer nanoseconds. Absent keys keep their defaults:
//
//	{
//	  "database_path": "/home/me/.config/sealfin/sealfin.db",
//	  "device_name": "living-room",
//	  "connect_timeout": "6s",
//	  "socket_timeout": "10s",
//	  "request_timeout": "30s",
//	  "retry_attempts": 3,
//	  "log_file": "/tmp/sealfin.log",
//	  "log_level": "debug",
//	  "seal_tokens": true
//	}
//
// Primary API
//
//   - type Config                           — runtime settings
//   - func BindFlags(*pflag.FlagSet)        — registers the flags
//   - func Load(*pflag.FlagSet) (*Config, error) — defaults, JSON, then flags
//   - func (*Config) LoadDefaults()         — sets sensible defaults
package config
