package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"sync"

	"github.com/dmitrijs2005/sealfin/internal/client/models"
	"github.com/dmitrijs2005/sealfin/internal/client/repositories/preferences"
	"github.com/dmitrijs2005/sealfin/internal/client/watch"
	"github.com/dmitrijs2005/sealfin/internal/cryptox"
	"github.com/dmitrijs2005/sealfin/internal/dbx"
	"github.com/dmitrijs2005/sealfin/internal/logging"
	"github.com/google/uuid"
)

// SchemaVersion is the newest preference layout this build understands.
const SchemaVersion = 1

// snapshot is the committed state. Values are never modified after being
// published; mutations build a new snapshot.
type snapshot struct {
	servers  []models.ServerProfile
	activeID string
	theme    models.Theme
}

func (s snapshot) active() *models.ServerProfile {
	return models.FindServer(s.servers, s.activeID)
}

// Option configures a PreferenceStore.
type Option func(*options)

type options struct {
	log        logging.Logger
	passphrase []byte
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l logging.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithPassphrase enables sealing of access tokens at rest.
func WithPassphrase(p []byte) Option {
	return func(o *options) { o.passphrase = p }
}

// PreferenceStore owns the durable client state.
type PreferenceStore struct {
	db     *sql.DB
	log    logging.Logger
	sealer *cryptox.Sealer

	// mu serialises mutations so that write order and publish order agree.
	mu    sync.Mutex
	state *watch.Hub[snapshot]
}

// Open loads the store from a migrated database.
func Open(ctx context.Context, db *sql.DB, opts ...Option) (*PreferenceStore, error) {
	o := options{log: logging.Discard()}
	for _, opt := range opts {
		opt(&o)
	}

	s := &PreferenceStore{db: db, log: o.log}
	repo := preferences.NewSQLiteRepository(db)

	if err := checkSchema(ctx, repo); err != nil {
		return nil, err
	}

	if len(o.passphrase) > 0 {
		sealer, err := s.newSealer(ctx, o.passphrase)
		if err != nil {
			return nil, err
		}
		s.sealer = sealer
	}

	snap, err := s.load(ctx, repo)
	if err != nil {
		return nil, err
	}
	s.state = watch.New(snap)

	s.log.Debug(ctx, "preferences loaded",
		"servers", len(snap.servers), "active", snap.activeID, "theme", snap.theme, "sealed", s.sealer != nil)
	return s, nil
}

func checkSchema(ctx context.Context, repo *preferences.SQLiteRepository) error {
	raw, err := repo.GetString(ctx, preferences.KeySchemaVersion)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	if raw == "" {
		if err := repo.Set(ctx, preferences.KeySchemaVersion, []byte(strconv.Itoa(SchemaVersion))); err != nil {
			return fmt.Errorf("%w: %w", ErrPersistence, err)
		}
		return nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("%w: bad schema version %q", ErrPersistence, raw)
	}
	if v > SchemaVersion {
		return fmt.Errorf("%w: found %d, supported %d", ErrUnsupportedSchema, v, SchemaVersion)
	}
	return nil
}

// newSealer reads the per-database salt, creating it on first use.
func (s *PreferenceStore) newSealer(ctx context.Context, passphrase []byte) (*cryptox.Sealer, error) {
	var salt []byte
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := preferences.NewSQLiteRepository(tx)
		v, err := repo.Get(ctx, preferences.KeyTokenSalt)
		if err != nil {
			return err
		}
		if len(v) > 0 {
			salt = v
			return nil
		}
		if salt, err = cryptox.NewSalt(); err != nil {
			return err
		}
		return repo.Set(ctx, preferences.KeyTokenSalt, salt)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: token salt: %w", ErrPersistence, err)
	}
	return cryptox.NewSealer(passphrase, salt)
}

func (s *PreferenceStore) load(ctx context.Context, repo preferences.Repository) (snapshot, error) {
	snap := snapshot{servers: []models.ServerProfile{}, theme: models.DefaultTheme}

	raw, err := repo.Get(ctx, preferences.KeyServers)
	if err != nil {
		return snap, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	if len(raw) > 0 {
		servers, err := s.decodeServers(raw)
		if err != nil {
			return snap, err
		}
		snap.servers = servers
	}

	active, err := repo.Get(ctx, preferences.KeyActiveServerID)
	if err != nil {
		return snap, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	snap.activeID = string(active)

	theme, err := repo.Get(ctx, preferences.KeyTheme)
	if err != nil {
		return snap, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	if len(theme) > 0 {
		t, err := models.ParseTheme(string(theme))
		if err != nil {
			s.log.Warn(ctx, "ignoring unknown theme", "theme", string(theme))
		} else {
			snap.theme = t
		}
	}

	return snap, nil
}

func (s *PreferenceStore) decodeServers(raw []byte) ([]models.ServerProfile, error) {
	var servers []models.ServerProfile
	if err := json.Unmarshal(raw, &servers); err != nil {
		return nil, fmt.Errorf("%w: decode servers: %w", ErrPersistence, err)
	}
	for i := range servers {
		tok := servers[i].AccessToken
		if !cryptox.IsSealed(tok) {
			continue
		}
		if s.sealer == nil {
			return nil, fmt.Errorf("%w: %w", ErrPersistence, ErrPassphraseRequired)
		}
		plain, err := s.sealer.Open(tok)
		if err != nil {
			return nil, fmt.Errorf("%w: server %s: %w", ErrPersistence, servers[i].ID, err)
		}
		servers[i].AccessToken = plain
	}
	if servers == nil {
		servers = []models.ServerProfile{}
	}
	return servers, nil
}

func (s *PreferenceStore) encodeServers(servers []models.ServerProfile) ([]byte, error) {
	out := slices.Clone(servers)
	if s.sealer != nil {
		for i := range out {
			sealed, err := s.sealer.Seal(out[i].AccessToken)
			if err != nil {
				return nil, err
			}
			out[i].AccessToken = sealed
		}
	}
	return json.Marshal(out)
}

// commit runs fn in one transaction and publishes next once it commits.
// Callers hold s.mu.
func (s *PreferenceStore) commit(ctx context.Context, next snapshot, fn func(ctx context.Context, repo *preferences.SQLiteRepository) error) error {
	err := dbx.WithTxThen(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return fn(ctx, preferences.NewSQLiteRepository(tx))
	}, func() { s.state.Set(next) })
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return nil
}

// AddServer stores p and makes it active in one update. A profile with the
// same id is replaced in place.
func (s *PreferenceStore) AddServer(ctx context.Context, p models.ServerProfile) error {
	if err := p.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.state.Get()
	servers := slices.Clone(cur.servers)
	if i := slices.IndexFunc(servers, func(sp models.ServerProfile) bool { return sp.ID == p.ID }); i >= 0 {
		servers[i] = p
	} else {
		servers = append(servers, p)
	}

	encoded, err := s.encodeServers(servers)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	next := snapshot{servers: servers, activeID: p.ID, theme: cur.theme}
	err = s.commit(ctx, next, func(ctx context.Context, repo *preferences.SQLiteRepository) error {
		if err := repo.Set(ctx, preferences.KeyServers, encoded); err != nil {
			return err
		}
		return repo.Set(ctx, preferences.KeyActiveServerID, []byte(p.ID))
	})
	if err != nil {
		return err
	}

	s.log.Info(ctx, "server added", "server", p.ID, "name", p.Name)
	return nil
}

// RemoveServer drops the profile with id and clears the active pointer if it
// referenced that profile. Removing an unknown id is a no-op.
func (s *PreferenceStore) RemoveServer(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.state.Get()
	servers := slices.DeleteFunc(slices.Clone(cur.servers), func(sp models.ServerProfile) bool { return sp.ID == id })
	clearActive := cur.activeID == id
	if len(servers) == len(cur.servers) && !clearActive {
		return nil
	}

	encoded, err := s.encodeServers(servers)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	next := snapshot{servers: servers, activeID: cur.activeID, theme: cur.theme}
	if clearActive {
		next.activeID = ""
	}

	err = s.commit(ctx, next, func(ctx context.Context, repo *preferences.SQLiteRepository) error {
		if err := repo.Set(ctx, preferences.KeyServers, encoded); err != nil {
			return err
		}
		if clearActive {
			return repo.Delete(ctx, preferences.KeyActiveServerID)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.Info(ctx, "server removed", "server", id, "was_active", clearActive)
	return nil
}

// SwitchActive points the active server at id. Membership is not checked
// here; an id that matches no profile reads as no active server.
func (s *PreferenceStore) SwitchActive(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.state.Get()
	next := cur
	next.activeID = id

	err := s.commit(ctx, next, func(ctx context.Context, repo *preferences.SQLiteRepository) error {
		if id == "" {
			return repo.Delete(ctx, preferences.KeyActiveServerID)
		}
		return repo.Set(ctx, preferences.KeyActiveServerID, []byte(id))
	})
	if err != nil {
		return err
	}

	if next.active() == nil {
		s.log.Warn(ctx, "active server id matches no saved profile", "server", id)
	}
	return nil
}

// SaveTheme persists t.
func (s *PreferenceStore) SaveTheme(ctx context.Context, t models.Theme) error {
	t, err := models.ParseTheme(string(t))
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.state.Get()
	next.theme = t

	return s.commit(ctx, next, func(ctx context.Context, repo *preferences.SQLiteRepository) error {
		return repo.Set(ctx, preferences.KeyTheme, []byte(t))
	})
}

// Servers returns the saved profiles in insertion order.
func (s *PreferenceStore) Servers() []models.ServerProfile {
	return slices.Clone(s.state.Get().servers)
}

// ActiveServer returns the active profile, or nil.
func (s *PreferenceStore) ActiveServer() *models.ServerProfile {
	return s.state.Get().active()
}

// Theme returns the theme preference.
func (s *PreferenceStore) Theme() models.Theme {
	return s.state.Get().theme
}

// ObserveServers streams the server list, starting with the current one.
func (s *PreferenceStore) ObserveServers(ctx context.Context) <-chan []models.ServerProfile {
	return project(ctx, s.state.Subscribe(ctx),
		func(snap snapshot) []models.ServerProfile { return slices.Clone(snap.servers) },
		func(a, b []models.ServerProfile) bool { return slices.Equal(a, b) })
}

// ObserveActiveServer streams the active profile (nil when absent).
func (s *PreferenceStore) ObserveActiveServer(ctx context.Context) <-chan *models.ServerProfile {
	return project(ctx, s.state.Subscribe(ctx),
		snapshot.active,
		func(a, b *models.ServerProfile) bool {
			if a == nil || b == nil {
				return a == b
			}
			return *a == *b
		})
}

// ObserveTheme streams the theme preference.
func (s *PreferenceStore) ObserveTheme(ctx context.Context) <-chan models.Theme {
	return project(ctx, s.state.Subscribe(ctx),
		func(snap snapshot) models.Theme { return snap.theme },
		func(a, b models.Theme) bool { return a == b })
}

// DeviceID returns the identifier this installation reports to servers,
// generating and persisting one on first use.
func (s *PreferenceStore) DeviceID(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var id string
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := preferences.NewSQLiteRepository(tx)
		v, err := repo.GetString(ctx, preferences.KeyDeviceID)
		if err != nil {
			return err
		}
		if v != "" {
			id = v
			return nil
		}
		id = uuid.NewString()
		return repo.Set(ctx, preferences.KeyDeviceID, []byte(id))
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return id, nil
}

// Reset forgets every server, the active pointer and the theme. The device
// id and token salt are kept.
func (s *PreferenceStore) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := snapshot{servers: []models.ServerProfile{}, theme: models.DefaultTheme}
	err := s.commit(ctx, next, func(ctx context.Context, repo *preferences.SQLiteRepository) error {
		for _, key := range []string{preferences.KeyServers, preferences.KeyActiveServerID, preferences.KeyTheme} {
			if err := repo.Delete(ctx, key); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.Info(ctx, "preferences reset")
	return nil
}
