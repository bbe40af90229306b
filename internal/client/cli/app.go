package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/dmitrijs2005/sealfin/internal/client/client"
	"github.com/dmitrijs2005/sealfin/internal/client/config"
	"github.com/dmitrijs2005/sealfin/internal/client/models"
	"github.com/dmitrijs2005/sealfin/internal/client/services"
	"github.com/dmitrijs2005/sealfin/internal/client/store"
	"github.com/dmitrijs2005/sealfin/internal/filex"
	"github.com/dmitrijs2005/sealfin/internal/logging"
)

// PassphraseEnv, when set, supplies the token passphrase without a prompt.
const PassphraseEnv = "SEALFIN_PASSPHRASE"

// Preferences is what the CLI needs from the preference store on top of
// what the services use.
type Preferences interface {
	services.Preferences
	Theme() models.Theme
	SaveTheme(ctx context.Context, t models.Theme) error
	ObserveTheme(ctx context.Context) <-chan models.Theme
}

type App struct {
	config *config.Config
	log    logging.Logger
	db     *sql.DB

	prefs     Preferences
	sessions  services.SessionManager
	home      *services.HomeFeed
	libraries *services.Libraries
	library   *services.LibraryDetail
	item      *services.ItemDetail
	season    *services.SeasonDetail
	favorites *services.Favorites

	reader *bufio.Reader
	out    io.Writer
}

// NewApp opens the preference database and wires the services.
func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	if _, err := filex.EnsureParentDir(c.DatabasePath); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	db, err := client.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		log.Error(ctx, "error initializing database", "path", c.DatabasePath, "err", err)
		return nil, err
	}

	opts := []store.Option{store.WithLogger(log.With("component", "store"))}
	if c.SealTokens {
		pass, err := passphrase()
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		defer wipe(pass)
		opts = append(opts, store.WithPassphrase(pass))
	}

	prefs, err := store.Open(ctx, db, opts...)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	deviceID, err := prefs.DeviceID(ctx)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	factory := client.NewFactory(client.Options{
		DeviceName:     c.DeviceName,
		DeviceID:       deviceID,
		ClientVersion:  c.ClientVersion,
		ConnectTimeout: c.ConnectTimeout,
		SocketTimeout:  c.SocketTimeout,
		RequestTimeout: c.RequestTimeout,
		RetryAttempts:  c.RetryAttempts,
		RetryDelay:     client.DefaultOptions().RetryDelay,
		Logger:         log.With("component", "client"),
	})

	a := newApp(prefs, factory, log, os.Stdin, os.Stdout)
	a.config = c
	a.db = db
	return a, nil
}

// newApp wires the services over prefs and factory.
func newApp(prefs Preferences, factory client.Factory, log logging.Logger, in io.Reader, out io.Writer) *App {
	sessions := services.NewSessionManager(prefs, factory, log.With("component", "session"))
	session := sessions.Session()

	return &App{
		log:       log,
		prefs:     prefs,
		sessions:  sessions,
		home:      services.NewHomeFeed(session, log),
		libraries: services.NewLibraries(session, log),
		library:   services.NewLibraryDetail(session, log),
		item:      services.NewItemDetail(session, log),
		season:    services.NewSeasonDetail(session, log),
		favorites: services.NewFavorites(session, log),
		reader:    bufio.NewReader(in),
		out:       out,
	}
}

func passphrase() ([]byte, error) {
	if v := os.Getenv(PassphraseEnv); v != "" {
		return []byte(v), nil
	}
	return getPassword(os.Stderr, "Token passphrase")
}

// Close releases the database.
func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

// getStatus renders the prompt status: the active server and user.
func (a *App) getStatus() string {
	p := a.prefs.ActiveServer()
	if p == nil {
		return "(no server)"
	}
	return fmt.Sprintf("(%s %s)", p.Name, p.Username)
}

// follow logs active-server and theme changes at Debug until ctx is done.
func (a *App) follow(ctx context.Context) {
	active := a.sessions.ObserveActiveServer(ctx)
	themes := a.prefs.ObserveTheme(ctx)
	for active != nil || themes != nil {
		select {
		case p, ok := <-active:
			if !ok {
				active = nil
				continue
			}
			if p == nil {
				a.log.Debug(ctx, "no active server")
			} else {
				a.log.Debug(ctx, "active server", "server", p.ID, "name", p.Name)
			}
		case t, ok := <-themes:
			if !ok {
				themes = nil
				continue
			}
			a.log.Debug(ctx, "theme", "theme", t)
		}
	}
}

// Shell runs the interactive loop. The holders follow the active server in
// the background for as long as the shell is open.
func (a *App) Shell(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	for _, run := range []func(context.Context){
		a.home.Run, a.libraries.Run, a.library.Run, a.item.Run, a.season.Run, a.favorites.Run, a.follow,
	} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			run(ctx)
		}()
	}

	printlnFn("Sealfin CLI (type 'help' for commands)")
	runREPL(ctx, a, a.getStatus, a.reader)

	cancel()
	wg.Wait()
}
