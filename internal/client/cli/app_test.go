package cli

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/sealfin/internal/client/client"
	"github.com/dmitrijs2005/sealfin/internal/client/models"
	"github.com/dmitrijs2005/sealfin/internal/client/store"
	"github.com/dmitrijs2005/sealfin/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// syncBuffer is a bytes.Buffer safe for a logger and a test reading it.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// newTestApp wires an App over a temp database whose active server is f,
// logged in as alice.
func newTestApp(t *testing.T, f *fakeMedia, log logging.Logger) (*App, *store.PreferenceStore, *bytes.Buffer) {
	t.Helper()
	ctx := context.Background()
	db, err := client.InitDatabase(ctx, filepath.Join(t.TempDir(), "sealfin.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	prefs, err := store.Open(ctx, db)
	require.NoError(t, err)
	if f != nil {
		require.NoError(t, prefs.AddServer(ctx, models.ServerProfile{
			ID: "u-alice", Name: "Den", BaseURL: f.URL, Username: "alice", AccessToken: "tok-alice",
		}))
	}

	opts := client.DefaultOptions()
	opts.DeviceID = "dev-1"
	opts.RetryAttempts = 1

	var out bytes.Buffer
	a := newApp(prefs, client.NewFactory(opts), log, strings.NewReader(""), &out)
	return a, prefs, &out
}

func TestApp_ToggleUpdatesEveryCachedCopy(t *testing.T) {
	f := newFakeMedia(t)
	a, _, out := newTestApp(t, f, logging.Discard())
	ctx := context.Background()

	require.NoError(t, a.Home(ctx, nil))
	require.NoError(t, a.Season(ctx, []string{"se1"}))
	require.NoError(t, a.Favorites(ctx, nil))
	require.False(t, a.home.State().NextUp.Data[0].Played())
	require.True(t, a.home.State().ContinueWatching.Data[0].Favorite())

	require.NoError(t, a.Played(ctx, []string{"e1"}))
	assert.Contains(t, out.String(), "Pilot is now played")
	assert.True(t, a.home.State().NextUp.Data[0].Played(), "home copy")
	assert.True(t, a.season.State().Data.Episodes[0].Played(), "season copy")
	assert.True(t, a.item.State().Data.Item.Played(), "item copy")

	require.NoError(t, a.Favorite(ctx, []string{"m1"}))
	assert.False(t, a.home.State().ContinueWatching.Data[0].Favorite(), "continue watching copy")
	for _, shelf := range a.home.State().RecentlyAdded.Data {
		for _, it := range shelf.Items {
			if it.ID == "m1" {
				assert.False(t, it.Favorite(), "recently added copy")
			}
		}
	}
	assert.False(t, a.favorites.State().Data[0].Items[0].Favorite(), "favorites copy")

	assert.Equal(t, []string{
		http.MethodPost + " /UserPlayedItems/e1",
		http.MethodDelete + " /UserFavoriteItems/m1",
	}, f.seenToggles(), "one remote write per toggle")
}

func TestApp_ToggleKeepsLocalChangeWhenServerRefuses(t *testing.T) {
	f := newFakeMedia(t)
	a, _, out := newTestApp(t, f, logging.Discard())
	ctx := context.Background()

	require.NoError(t, a.Home(ctx, nil))
	f.setFailWrite(true)

	require.NoError(t, a.Played(ctx, []string{"e1"}))
	assert.Contains(t, out.String(), "warning: the server did not confirm the change")
	assert.True(t, a.home.State().NextUp.Data[0].Played())
}

func TestApp_FollowLogsOnlyAtDebug(t *testing.T) {
	f := newFakeMedia(t)

	for _, tc := range []struct {
		level slog.Level
		want  bool
	}{
		{slog.LevelInfo, false},
		{slog.LevelDebug, true},
	} {
		t.Run(tc.level.String(), func(t *testing.T) {
			var buf syncBuffer
			log := logging.NewSlogLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: tc.level})))
			a, prefs, _ := newTestApp(t, f, log)

			ctx, cancel := context.WithCancel(context.Background())
			done := make(chan struct{})
			go func() {
				defer close(done)
				a.follow(ctx)
			}()

			require.NoError(t, prefs.SaveTheme(ctx, models.ThemeDark))
			require.NoError(t, prefs.RemoveServer(ctx, "u-alice"))

			if tc.want {
				require.Eventually(t, func() bool {
					return strings.Contains(buf.String(), "no active server")
				}, 2*time.Second, 10*time.Millisecond)
			} else {
				require.Never(t, func() bool { return buf.String() != "" }, 200*time.Millisecond, 10*time.Millisecond)
			}

			cancel()
			<-done
		})
	}
}
