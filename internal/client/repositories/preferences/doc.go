// Package preferences provides the key/value persistence layer behind the
// client preference store.
//
// # Overview
//
// The package defines a Repository interface over a single `preferences`
// table (key TEXT PRIMARY KEY, value BLOB). A SQLite-backed implementation
// (SQLiteRepository) runs its statements on a dbx.DBTX, so the same code
// works on a *sql.DB or inside a *sql.Tx opened by dbx.WithTx.
//
// # Missing keys
//
// Get returns (nil, nil) for a key that has never been written; callers
// treat that as "use the default".
//
// Typical Usage
//
//	repo := preferences.NewSQLiteRepository(db)
//	_ = repo.Set(ctx, "theme", []byte("DARK"))
//	v, _ := repo.Get(ctx, "theme")
package preferences
