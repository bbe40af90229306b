// Package dbx holds the transaction plumbing of the preference database: a
// DBTX interface that repositories run on, satisfied by both *sql.DB and
// *sql.Tx, and WithTx, which commits several preference keys as one unit.
package dbx

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// DBTX is the subset of database/sql the repositories use.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// WithTx runs fn inside a transaction and commits it when fn succeeds.
// When fn fails or panics the transaction is rolled back; a failing
// rollback is joined to fn's error and a panic is re-raised.
//
//	err := dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
//	    repo := preferences.NewSQLiteRepository(tx)
//	    if err := repo.Set(ctx, preferences.KeyServers, list); err != nil {
//	        return err
//	    }
//	    return repo.Set(ctx, preferences.KeyActiveServerID, []byte(id))
//	})
func WithTx(ctx context.Context, db *sql.DB, opts *sql.TxOptions, fn func(ctx context.Context, tx DBTX) error) (err error) {
	return WithTxThen(ctx, db, opts, fn, nil)
}

// WithTxThen is WithTx followed by onCommit, which runs only after a
// successful commit. The store publishes new state from it so observers
// never see a value that was rolled back.
func WithTxThen(ctx context.Context, db *sql.DB, opts *sql.TxOptions, fn func(ctx context.Context, tx DBTX) error, onCommit func()) (err error) {
	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	committed := false
	defer func() {
		if committed {
			return
		}
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) && err != nil {
			err = errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
		}
	}()

	if err = fn(ctx, tx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	committed = true

	if onCommit != nil {
		onCommit()
	}
	return nil
}
