package services

import (
	"context"

	"github.com/dmitrijs2005/sealfin/internal/client/client"
	"github.com/dmitrijs2005/sealfin/internal/client/models"
)

// Preferences is the part of the preference store the services use.
type Preferences interface {
	Servers() []models.ServerProfile
	ActiveServer() *models.ServerProfile
	ObserveServers(ctx context.Context) <-chan []models.ServerProfile
	ObserveActiveServer(ctx context.Context) <-chan *models.ServerProfile
	AddServer(ctx context.Context, p models.ServerProfile) error
	RemoveServer(ctx context.Context, id string) error
	SwitchActive(ctx context.Context, id string) error
}

// Session is the session context handed to every consumer that talks to the
// active server. It holds no state of its own: each call resolves the
// active profile from the preference store.
type Session struct {
	prefs   Preferences
	factory client.Factory
}

func NewSession(prefs Preferences, factory client.Factory) *Session {
	return &Session{prefs: prefs, factory: factory}
}

// Active returns the active profile or ErrNoActiveServer.
func (s *Session) Active() (*models.ServerProfile, error) {
	p := s.prefs.ActiveServer()
	if p == nil {
		return nil, ErrNoActiveServer
	}
	return p, nil
}

// Client builds an API client for the active server.
func (s *Session) Client() (client.Client, *models.ServerProfile, error) {
	p, err := s.Active()
	if err != nil {
		return nil, nil, err
	}
	return s.factory(p.BaseURL, p.AccessToken), p, nil
}

// ObserveActive streams the active profile, emitting only when the active
// server id changes.
func (s *Session) ObserveActive(ctx context.Context) <-chan *models.ServerProfile {
	src := s.prefs.ObserveActiveServer(ctx)
	out := make(chan *models.ServerProfile)

	go func() {
		defer close(out)
		var (
			lastID string
			sent   bool
		)
		for p := range src {
			id := ""
			if p != nil {
				id = p.ID
			}
			if sent && id == lastID {
				continue
			}
			select {
			case out <- p:
				lastID, sent = id, true
			case <-ctx.Done():
				for range src {
				}
				return
			}
		}
	}()

	return out
}
