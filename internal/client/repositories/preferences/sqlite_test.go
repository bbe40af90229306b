package preferences

import (
	"context"
	"database/sql"
	"testing"

	"github.com/dmitrijs2005/sealfin/internal/dbx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE preferences (
  key   TEXT PRIMARY KEY,
  value BLOB NOT NULL
);`)
	require.NoError(t, err)
	return db
}

func TestSetAndGet(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, KeyTheme, []byte("DARK")))

	v, err := r.Get(ctx, KeyTheme)
	require.NoError(t, err)
	assert.Equal(t, []byte("DARK"), v)

	s, err := r.GetString(ctx, KeyTheme)
	require.NoError(t, err)
	assert.Equal(t, "DARK", s)
}

func TestGet_Unset_ReturnsNilNil(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))

	v, err := r.Get(context.Background(), KeyActiveServerID)
	require.NoError(t, err)
	assert.Nil(t, v)

	s, err := r.GetString(context.Background(), KeyActiveServerID)
	require.NoError(t, err)
	assert.Empty(t, s)
}

func TestSet_Upserts(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, KeyActiveServerID, []byte("a")))
	require.NoError(t, r.Set(ctx, KeyActiveServerID, []byte("b")))

	v, err := r.Get(ctx, KeyActiveServerID)
	require.NoError(t, err)
	assert.Equal(t, []byte("b"), v)
}

func TestSet_NilValueStoredAsEmpty(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "k", nil))

	m, err := r.List(ctx)
	require.NoError(t, err)
	_, ok := m["k"]
	assert.True(t, ok)
}

func TestDelete_IsIdempotent(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "x", []byte{1}))
	require.NoError(t, r.Delete(ctx, "x"))
	require.NoError(t, r.Delete(ctx, "x"))

	v, err := r.Get(ctx, "x")
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestRepository_InsideTransaction(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()

	err := dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := NewSQLiteRepository(tx)
		if err := repo.Set(ctx, KeyServers, []byte(`[{"id":"u1"}]`)); err != nil {
			return err
		}
		return repo.Set(ctx, KeyActiveServerID, []byte("u1"))
	})
	require.NoError(t, err)

	m, err := NewSQLiteRepository(db).List(ctx)
	require.NoError(t, err)
	assert.Len(t, m, 2)
}

func TestErrorsWrapped_WhenDBClosed(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()
	require.NoError(t, db.Close())

	_, err := r.Get(ctx, "k")
	require.ErrorContains(t, err, `failed to read preference "k"`)

	require.ErrorContains(t, r.Set(ctx, "k", []byte("v")), `failed to write preference "k"`)
	require.ErrorContains(t, r.Delete(ctx, "k"), `failed to delete preference "k"`)

	_, err = r.List(ctx)
	require.ErrorContains(t, err, "failed to list preferences")
}

var _ Repository = (*SQLiteRepository)(nil)
