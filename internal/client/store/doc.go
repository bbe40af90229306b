// Package store implements the preference store: the durable, observable
// record of saved server profiles, the active-server pointer and the theme.
//
// State lives in the SQLite `preferences` table. Every mutation is a single
// transaction, and the in-memory snapshot that observers see is replaced
// only after that transaction commits, so a reader never sees a server that
// is active but not yet listed (or listed but not yet active after AddServer).
package store
