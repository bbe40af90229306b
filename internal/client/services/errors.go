package services

import "errors"

var (
	// ErrAuth means the credential exchange was refused or its response
	// lacked a token or user id.
	ErrAuth = errors.New("authentication failed")
	// ErrInvalidServerURL is returned for addresses that cannot be parsed.
	ErrInvalidServerURL = errors.New("invalid server url")
	// ErrStaleAttempt is returned by a login attempt that was overtaken by a
	// newer one; its result was discarded.
	ErrStaleAttempt = errors.New("login attempt superseded")
	// ErrNoActiveServer is returned when an operation needs a server and
	// none is active.
	ErrNoActiveServer = errors.New("no active server")
)
