// Package client contains the client-side transport and local bootstrap.
//
// # Overview
//
// The package provides:
//  1. The media-server API contract (see the Client interface): credential
//     exchange, public system info, item queries, the resume and next-up
//     feeds, and played/favorite toggles.
//  2. An HTTP/JSON implementation (see HTTPClient) that signs every request
//     with the MediaBrowser authorization header, applies connect, response
//     and overall timeouts, retries idempotent reads on transient failure
//     and maps HTTP status codes to sentinel errors.
//  3. Local persistence bootstrap utilities (InitDatabase, RunMigrations),
//     wiring an SQLite database and applying embedded goose migrations.
//
// # Error Handling
//
// Common conditions are exposed as sentinel errors that callers can match with
// errors.Is: ErrUnavailable, ErrUnauthorized, ErrNotFound, ErrProtocol.
//
// Concurrency & Contexts
//
// HTTPClient is safe for concurrent use. All operations accept
// context.Context and honor cancellation.
//
// See Also
//
//   - Interface:  Client
//   - HTTP impl:  HTTPClient, NewFactory
//   - DB helpers: InitDatabase, RunMigrations
package client
