package preferences

import (
	"context"
)

// Keys used by the preference store.
const (
	KeyServers        = "servers"
	KeyActiveServerID = "active_server_id"
	KeyTheme          = "theme"
	KeySchemaVersion  = "schema_version"
	KeyDeviceID       = "device_id"
	KeyTokenSalt      = "token_salt"
)

// Repository is a string-keyed byte store.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string][]byte, error)
}
