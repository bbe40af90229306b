package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/sealfin/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
// It relies on timex.Duration so JSON can specify timeouts either as
// strings like "6s" or as integer nanoseconds. Pointer fields tell an absent
// key apart from a zero value; only present keys are copied into Config.
type JsonConfig struct {
	DatabasePath   *string         `json:"database_path"`
	DeviceName     *string         `json:"device_name"`
	ConnectTimeout *timex.Duration `json:"connect_timeout"`
	SocketTimeout  *timex.Duration `json:"socket_timeout"`
	RequestTimeout *timex.Duration `json:"request_timeout"`
	RetryAttempts  *uint           `json:"retry_attempts"`
	LogFile        *string         `json:"log_file"`
	LogLevel       *string         `json:"log_level"`
	SealTokens     *bool           `json:"seal_tokens"`
}

// parseJson overlays cfg with values from the JSON file at path.
// An empty path is a no-op.
func parseJson(cfg *Config, path string) error {
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	if jc.DatabasePath != nil {
		cfg.DatabasePath = *jc.DatabasePath
	}
	if jc.DeviceName != nil {
		cfg.DeviceName = *jc.DeviceName
	}
	if jc.ConnectTimeout != nil {
		cfg.ConnectTimeout = jc.ConnectTimeout.Duration
	}
	if jc.SocketTimeout != nil {
		cfg.SocketTimeout = jc.SocketTimeout.Duration
	}
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.RetryAttempts != nil {
		cfg.RetryAttempts = *jc.RetryAttempts
	}
	if jc.LogFile != nil {
		cfg.LogFile = *jc.LogFile
	}
	if jc.LogLevel != nil {
		cfg.LogLevel = *jc.LogLevel
	}
	if jc.SealTokens != nil {
		cfg.SealTokens = *jc.SealTokens
	}
	return nil
}
