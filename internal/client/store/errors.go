package store

import "errors"

var (
	// ErrPersistence wraps every failure of the local database.
	ErrPersistence = errors.New("preference storage failure")
	// ErrUnsupportedSchema is returned by Open for a database written by a
	// newer version of the client.
	ErrUnsupportedSchema = errors.New("preference database schema is newer than supported")
	// ErrPassphraseRequired means stored tokens are sealed but no passphrase
	// was configured.
	ErrPassphraseRequired = errors.New("stored tokens are sealed; passphrase required")
)
