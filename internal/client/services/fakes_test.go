package services

import (
	"context"
	"errors"
	"path/filepath"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/sealfin/internal/client/client"
	"github.com/dmitrijs2005/sealfin/internal/client/models"
	"github.com/dmitrijs2005/sealfin/internal/client/store"
	"github.com/stretchr/testify/require"
)

// ---- helpers ----

func newPrefs(t *testing.T) *store.PreferenceStore {
	t.Helper()
	ctx := context.Background()
	db, err := client.InitDatabase(ctx, filepath.Join(t.TempDir(), "prefs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	s, err := store.Open(ctx, db)
	require.NoError(t, err)
	return s
}

func profile(id string) models.ServerProfile {
	return models.ServerProfile{ID: id, Name: "srv " + id, BaseURL: "http://" + id + ":8096", Username: "bob", AccessToken: "tok-" + id}
}

func recv[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v, ok := <-ch:
		require.True(t, ok, "stream closed")
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for emission")
	}
	var zero T
	return zero
}

func ptr[T any](v T) *T { return &v }

func item(id, kind string, ud *models.UserData) models.Item {
	return models.Item{ID: id, Name: "name " + id, Type: kind, UserData: ud}
}

var errBoom = errors.New("boom")

// ---- fake client ----

// fakeClient implements client.Client for holder and session tests.
type fakeClient struct {
	mu sync.Mutex

	// behaviour/results
	AuthFn  func(ctx context.Context, username, password string) (*client.AuthResult, error)
	InfoRet *client.SystemInfo
	InfoErr error

	ItemsFn   func(ctx context.Context, q client.ItemsQuery) ([]models.Item, error)
	ResumeRet []models.Item
	ResumeErr error
	NextUpRet []models.Item
	NextUpErr error
	ToggleErr error

	// for argument checks
	Bases   []string
	Tokens  []string
	Queries []client.ItemsQuery
	Toggles []string
}

func (f *fakeClient) factory(baseURL, token string) client.Client {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Bases = append(f.Bases, baseURL)
	f.Tokens = append(f.Tokens, token)
	return f
}

func (f *fakeClient) AuthenticateByName(ctx context.Context, username, password string) (*client.AuthResult, error) {
	return f.AuthFn(ctx, username, password)
}

func (f *fakeClient) PublicSystemInfo(ctx context.Context) (*client.SystemInfo, error) {
	return f.InfoRet, f.InfoErr
}

func (f *fakeClient) Items(ctx context.Context, q client.ItemsQuery) ([]models.Item, error) {
	f.mu.Lock()
	f.Queries = append(f.Queries, q)
	fn := f.ItemsFn
	f.mu.Unlock()
	if fn == nil {
		return []models.Item{}, nil
	}
	return fn(ctx, q)
}

func (f *fakeClient) ResumeItems(ctx context.Context, fields ...string) ([]models.Item, error) {
	return slices.Clone(f.ResumeRet), f.ResumeErr
}

func (f *fakeClient) NextUp(ctx context.Context, fields ...string) ([]models.Item, error) {
	return slices.Clone(f.NextUpRet), f.NextUpErr
}

func (f *fakeClient) toggle(op, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Toggles = append(f.Toggles, op+" "+id)
	return f.ToggleErr
}

func (f *fakeClient) MarkPlayed(ctx context.Context, id string) error   { return f.toggle("played", id) }
func (f *fakeClient) MarkUnplayed(ctx context.Context, id string) error { return f.toggle("unplayed", id) }
func (f *fakeClient) MarkFavorite(ctx context.Context, id string) error { return f.toggle("favorite", id) }
func (f *fakeClient) UnmarkFavorite(ctx context.Context, id string) error {
	return f.toggle("unfavorite", id)
}

func (f *fakeClient) queries() []client.ItemsQuery {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.Queries)
}

func (f *fakeClient) toggles() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.Toggles)
}

// ---- fake preferences ----

// failingPrefs wraps a real store and fails AddServer.
type failingPrefs struct {
	*store.PreferenceStore
	AddErr error
}

func (p failingPrefs) AddServer(ctx context.Context, sp models.ServerProfile) error {
	return p.AddErr
}

// activeSession returns a session whose active server is "a".
func activeSession(t *testing.T, f *fakeClient) (*Session, *store.PreferenceStore) {
	t.Helper()
	prefs := newPrefs(t)
	require.NoError(t, prefs.AddServer(context.Background(), profile("a")))
	return NewSession(prefs, f.factory), prefs
}
