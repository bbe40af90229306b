package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/dmitrijs2005/sealfin/internal/client/models"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"
)

// ---- fake media server ----

type catalogItem struct {
	models.Item
	parent string
}

type fakeMedia struct {
	*httptest.Server

	mu        sync.Mutex
	items     []catalogItem
	failWrite bool
	toggles   []string
}

func ptr[T any](v T) *T { return &v }

func newFakeMedia(t *testing.T) *fakeMedia {
	t.Helper()
	f := &fakeMedia{items: []catalogItem{
		{Item: models.Item{ID: "lib-movies", Name: "Movies", Type: models.KindCollectionFolder, CollectionType: "movies"}},
		{Item: models.Item{ID: "lib-shows", Name: "Shows", Type: models.KindCollectionFolder, CollectionType: "tvshows"}},
		{Item: models.Item{ID: "lib-pl", Name: "Playlists", Type: models.KindCollectionFolder, CollectionType: "playlists"}},
		{parent: "lib-movies", Item: models.Item{ID: "m1", Name: "Heat", Type: models.KindMovie, ProductionYear: ptr(1995),
			Overview: "A crew of thieves.", Genres: []string{"Crime", "Drama"},
			People:   []models.Person{{Name: "Al Pacino", Role: "Vincent Hanna"}},
			UserData: &models.UserData{IsFavorite: true}}},
		{parent: "lib-shows", Item: models.Item{ID: "s1", Name: "Lost", Type: models.KindSeries, UserData: &models.UserData{}}},
		{parent: "s1", Item: models.Item{ID: "se1", Name: "Season 1", Type: models.KindSeason, IndexNumber: ptr(1), UserData: &models.UserData{}}},
		{parent: "se1", Item: models.Item{ID: "e1", Name: "Pilot", Type: models.KindEpisode, SeriesName: "Lost",
			IndexNumber: ptr(1), ParentIndexNumber: ptr(1), UserData: &models.UserData{}}},
	}}

	r := mux.NewRouter()
	r.HandleFunc("/Users/AuthenticateByName", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["Pw"] != "secret" {
			http.Error(w, "bad credentials", http.StatusUnauthorized)
			return
		}
		writeJSON(w, map[string]any{
			"AccessToken": "tok-" + body["Username"],
			"ServerId":    "srv",
			"User":        map[string]any{"Id": "u-" + body["Username"], "Name": body["Username"]},
		})
	}).Methods(http.MethodPost)
	r.HandleFunc("/System/Info/Public", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"Id": "srv", "ServerName": "Den", "Version": "10.9.0"})
	})
	r.HandleFunc("/Items", f.handleItems)
	r.HandleFunc("/UserItems/Resume", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"Items": f.byID("m1")})
	})
	r.HandleFunc("/Shows/NextUp", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"Items": f.byID("e1")})
	})
	r.HandleFunc("/UserPlayedItems/{id}", f.handleToggle(models.SetPlayed)).Methods(http.MethodPost, http.MethodDelete)
	r.HandleFunc("/UserFavoriteItems/{id}", f.handleToggle(models.SetFavorite)).Methods(http.MethodPost, http.MethodDelete)

	f.Server = httptest.NewServer(r)
	t.Cleanup(f.Close)
	return f
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func (f *fakeMedia) byID(ids ...string) []models.Item {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Item
	for _, it := range f.items {
		if slices.Contains(ids, it.ID) {
			out = append(out, it.Item)
		}
	}
	return out
}

func (f *fakeMedia) handleItems(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	split := func(key string) []string {
		if v := q.Get(key); v != "" {
			return strings.Split(v, ",")
		}
		return nil
	}
	ids, kinds, filters := split("ids"), split("includeItemTypes"), split("filters")
	parent := q.Get("parentId")

	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Item{}
	for _, it := range f.items {
		switch {
		case len(ids) > 0 && !slices.Contains(ids, it.ID):
			continue
		case parent != "" && it.parent != parent:
			continue
		case len(kinds) > 0 && !slices.Contains(kinds, it.Type):
			continue
		case slices.Contains(filters, "IsFavorite") && !it.Favorite():
			continue
		}
		out = append(out, it.Item)
	}
	writeJSON(w, map[string]any{"Items": out, "TotalRecordCount": len(out)})
}

func (f *fakeMedia) handleToggle(set func(bool) func(models.UserData) models.UserData) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]
		f.mu.Lock()
		defer f.mu.Unlock()
		f.toggles = append(f.toggles, r.Method+" "+r.URL.Path)
		if f.failWrite {
			http.Error(w, "nope", http.StatusBadGateway)
			return
		}
		for n := range f.items {
			if f.items[n].ID == id {
				f.items[n].Item = f.items[n].WithUserData(set(r.Method == http.MethodPost))
			}
		}
		writeJSON(w, map[string]any{})
	}
}

func (f *fakeMedia) setFailWrite(v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failWrite = v
}

func (f *fakeMedia) seenToggles() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.toggles)
}

// ---- command runner ----

// stubPassword makes the password prompt return pw without touching the terminal.
func stubPassword(t *testing.T, pw string) {
	t.Helper()
	orig := getPassword
	getPassword = func(w io.Writer, prompt string) ([]byte, error) { return []byte(pw), nil }
	t.Cleanup(func() { getPassword = orig })
}

type runner struct {
	t  *testing.T
	db string
}

func newRunner(t *testing.T) *runner {
	return &runner{t: t, db: filepath.Join(t.TempDir(), "data", "sealfin.db")}
}

// run executes the root command with args against the runner's database
// and returns stdout. Flags given in args win over the runner's defaults.
func (r *runner) run(stdin string, args ...string) (string, error) {
	r.t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetIn(strings.NewReader(stdin))
	defaults := [][2]string{{"--db", r.db}, {"--log-level", "error"}, {"--retries", "1"}}
	for _, d := range defaults {
		if !slices.Contains(args, d[0]) {
			args = append(args, d[0], d[1])
		}
	}
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func (r *runner) mustRun(args ...string) string {
	r.t.Helper()
	out, err := r.run("", args...)
	require.NoError(r.t, err)
	return out
}
