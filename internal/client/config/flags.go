package config

import (
	"github.com/spf13/pflag"
)

// Flag names.
const (
	FlagConfig         = "config"
	FlagDatabase       = "db"
	FlagDeviceName     = "device-name"
	FlagConnectTimeout = "connect-timeout"
	FlagSocketTimeout  = "socket-timeout"
	FlagRequestTimeout = "request-timeout"
	FlagRetries        = "retries"
	FlagLogFile        = "log-file"
	FlagLogLevel       = "log-level"
	FlagSealTokens     = "seal-tokens"
)

// BindFlags registers the configuration flags on fs, with the built-in
// defaults shown in help output.
func BindFlags(fs *pflag.FlagSet) {
	var d Config
	d.LoadDefaults()

	fs.StringP(FlagConfig, "c", "", "path to a JSON config file")
	fs.String(FlagDatabase, d.DatabasePath, "path to the local preference database")
	fs.String(FlagDeviceName, d.DeviceName, "device name reported to servers")
	fs.Duration(FlagConnectTimeout, d.ConnectTimeout, "TCP connect timeout")
	fs.Duration(FlagSocketTimeout, d.SocketTimeout, "time to wait for response headers")
	fs.Duration(FlagRequestTimeout, d.RequestTimeout, "overall request timeout")
	fs.Uint(FlagRetries, d.RetryAttempts, "attempts for idempotent requests")
	fs.String(FlagLogFile, d.LogFile, "write logs to this file (rotated) instead of stderr")
	fs.String(FlagLogLevel, d.LogLevel, "log level: debug, info, warn, error")
	fs.Bool(FlagSealTokens, d.SealTokens, "encrypt stored access tokens with a passphrase")
}

// parseFlags copies every flag the user set explicitly into cfg. Flags left
// at their defaults do not override values loaded from JSON.
func parseFlags(cfg *Config, fs *pflag.FlagSet) error {
	var err error
	fs.Visit(func(f *pflag.Flag) {
		if err != nil {
			return
		}
		switch f.Name {
		case FlagDatabase:
			cfg.DatabasePath, err = fs.GetString(f.Name)
		case FlagDeviceName:
			cfg.DeviceName, err = fs.GetString(f.Name)
		case FlagConnectTimeout:
			cfg.ConnectTimeout, err = fs.GetDuration(f.Name)
		case FlagSocketTimeout:
			cfg.SocketTimeout, err = fs.GetDuration(f.Name)
		case FlagRequestTimeout:
			cfg.RequestTimeout, err = fs.GetDuration(f.Name)
		case FlagRetries:
			cfg.RetryAttempts, err = fs.GetUint(f.Name)
		case FlagLogFile:
			cfg.LogFile, err = fs.GetString(f.Name)
		case FlagLogLevel:
			cfg.LogLevel, err = fs.GetString(f.Name)
		case FlagSealTokens:
			cfg.SealTokens, err = fs.GetBool(f.Name)
		}
	})
	return err
}
