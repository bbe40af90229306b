package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/dmitrijs2005/sealfin/internal/client/client"
	"github.com/dmitrijs2005/sealfin/internal/client/models"
	"github.com/dmitrijs2005/sealfin/internal/client/watch"
	"github.com/dmitrijs2005/sealfin/internal/logging"
)

// SessionManager authenticates against servers and manages saved profiles.
//
// Contract:
//   - Authenticate: exchange credentials, resolve the server name, persist
//     the new profile as the active one and publish the attempt state.
//   - SwitchServer / RemoveServer: pass-through to the preference store.
//   - LoginState / ObserveLoginState: the latest attempt's state.
//   - ObserveServers / ObserveActiveServer: preference store streams.
//
// All methods must honor context cancellation/timeouts.
type SessionManager interface {
	Authenticate(ctx context.Context, serverURL, username, password string) (models.ServerProfile, error)
	SwitchServer(ctx context.Context, id string) error
	RemoveServer(ctx context.Context, id string) error
	LoginState() models.LoginState
	ObserveLoginState(ctx context.Context) <-chan models.LoginState
	Servers() []models.ServerProfile
	ObserveServers(ctx context.Context) <-chan []models.ServerProfile
	ObserveActiveServer(ctx context.Context) <-chan *models.ServerProfile
	Session() *Session
}

// sessionManager is the concrete SessionManager backed by the preference
// store and an API client factory.
type sessionManager struct {
	prefs   Preferences
	factory client.Factory
	session *Session
	log     logging.Logger

	// mu orders attempt completion; latest is the newest attempt number.
	mu     sync.Mutex
	latest uint64
	state  *watch.Hub[models.LoginState]
}

// NewSessionManager constructs a SessionManager. A nil logger discards.
func NewSessionManager(prefs Preferences, factory client.Factory, log logging.Logger) SessionManager {
	if log == nil {
		log = logging.Discard()
	}
	return &sessionManager{
		prefs:   prefs,
		factory: factory,
		session: NewSession(prefs, factory),
		log:     log,
		state:   watch.New(models.LoginState{Phase: models.LoginIdle}),
	}
}

// NormalizeServerURL defaults the scheme to http and drops trailing slashes.
func NormalizeServerURL(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", fmt.Errorf("%w: empty address", ErrInvalidServerURL)
	}
	if !strings.Contains(s, "://") {
		s = "http://" + s
	}
	u, err := url.Parse(s)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidServerURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("%w: unsupported scheme %q", ErrInvalidServerURL, u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("%w: missing host", ErrInvalidServerURL)
	}
	u.RawQuery, u.Fragment = "", ""
	return strings.TrimRight(u.String(), "/"), nil
}

func (m *sessionManager) begin() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.latest++
	m.state.Set(models.LoginState{Phase: models.LoginAuthenticating, Attempt: m.latest})
	return m.latest
}

// finish publishes the outcome of attempt unless a newer attempt started.
// commit runs under the same lock, so a superseded attempt persists nothing.
func (m *sessionManager) finish(attempt uint64, commit func() (models.LoginState, error)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if attempt != m.latest {
		return ErrStaleAttempt
	}
	st, err := commit()
	st.Attempt = attempt
	m.state.Set(st)
	return err
}

func failed(err error) models.LoginState {
	return models.LoginState{Phase: models.LoginFailed, Message: err.Error()}
}

// Authenticate runs one login attempt.
func (m *sessionManager) Authenticate(ctx context.Context, serverURL, username, password string) (models.ServerProfile, error) {
	attempt := m.begin()
	log := m.log.With("attempt", attempt)

	profile, err := m.exchange(ctx, serverURL, username, password)
	if err != nil {
		log.Warn(ctx, "login failed", "server", serverURL, "err", err)
		return models.ServerProfile{}, m.finish(attempt, func() (models.LoginState, error) { return failed(err), err })
	}

	err = m.finish(attempt, func() (models.LoginState, error) {
		if err := m.prefs.AddServer(ctx, profile); err != nil {
			return failed(err), err
		}
		return models.LoginState{Phase: models.LoginAuthenticated, ServerID: profile.ID}, nil
	})
	if err != nil {
		if errors.Is(err, ErrStaleAttempt) {
			log.Info(ctx, "discarding superseded login result", "server", profile.BaseURL)
		}
		return models.ServerProfile{}, err
	}

	log.Info(ctx, "logged in", "server", profile.ID, "name", profile.Name, "user", profile.Username)
	return profile, nil
}

// exchange performs the remote part of a login and builds the profile.
// Nothing is persisted here.
func (m *sessionManager) exchange(ctx context.Context, serverURL, username, password string) (models.ServerProfile, error) {
	base, err := NormalizeServerURL(serverURL)
	if err != nil {
		return models.ServerProfile{}, err
	}

	res, err := m.factory(base, "").AuthenticateByName(ctx, username, password)
	if err != nil {
		if errors.Is(err, client.ErrUnauthorized) {
			return models.ServerProfile{}, fmt.Errorf("%w: %w", ErrAuth, err)
		}
		return models.ServerProfile{}, err
	}
	if res == nil || res.AccessToken == "" {
		return models.ServerProfile{}, fmt.Errorf("%w: server returned no access token", ErrAuth)
	}
	if res.User.ID == "" {
		return models.ServerProfile{}, fmt.Errorf("%w: server returned no user id", ErrAuth)
	}

	name := base
	info, err := m.factory(base, res.AccessToken).PublicSystemInfo(ctx)
	switch {
	case err != nil:
		m.log.Debug(ctx, "server info unavailable, using address as name", "server", base, "err", err)
	case info != nil && strings.TrimSpace(info.ServerName) != "":
		name = strings.TrimSpace(info.ServerName)
	}

	return models.ServerProfile{
		ID:          res.User.ID,
		Name:        name,
		BaseURL:     base,
		Username:    username,
		AccessToken: res.AccessToken,
	}, nil
}

func (m *sessionManager) SwitchServer(ctx context.Context, id string) error {
	return m.prefs.SwitchActive(ctx, id)
}

func (m *sessionManager) RemoveServer(ctx context.Context, id string) error {
	return m.prefs.RemoveServer(ctx, id)
}

func (m *sessionManager) LoginState() models.LoginState {
	return m.state.Get()
}

func (m *sessionManager) ObserveLoginState(ctx context.Context) <-chan models.LoginState {
	return m.state.Subscribe(ctx)
}

func (m *sessionManager) Servers() []models.ServerProfile {
	return m.prefs.Servers()
}

func (m *sessionManager) ObserveServers(ctx context.Context) <-chan []models.ServerProfile {
	return m.prefs.ObserveServers(ctx)
}

func (m *sessionManager) ObserveActiveServer(ctx context.Context) <-chan *models.ServerProfile {
	return m.prefs.ObserveActiveServer(ctx)
}

func (m *sessionManager) Session() *Session {
	return m.session
}
