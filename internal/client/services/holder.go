package services

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/sealfin/internal/client/client"
	"github.com/dmitrijs2005/sealfin/internal/client/models"
	"github.com/dmitrijs2005/sealfin/internal/client/watch"
	"github.com/dmitrijs2005/sealfin/internal/logging"
	"golang.org/x/sync/singleflight"
)

// patchFunc rewrites the user data of every cached copy of item id.
type patchFunc[T any] func(data T, id string, fn func(models.UserData) models.UserData) T

// holder is the shared shape of the browse holders: one Resource published
// through a hub, loads collapsed per key, and results of superseded loads
// dropped.
type holder[T any] struct {
	session *Session
	log     logging.Logger
	state   *watch.Hub[Resource[T]]
	flight  singleflight.Group
	empty   func(T) bool
	patch   patchFunc[T]

	mu  sync.Mutex
	gen uint64
}

func newHolder[T any](session *Session, log logging.Logger, empty func(T) bool, patch patchFunc[T]) *holder[T] {
	if log == nil {
		log = logging.Discard()
	}
	return &holder[T]{
		session: session,
		log:     log,
		state:   watch.New(Resource[T]{}),
		empty:   empty,
		patch:   patch,
	}
}

// State returns the current resource.
func (h *holder[T]) State() Resource[T] {
	return h.state.Get()
}

// Observe streams the resource, starting with the current value.
func (h *holder[T]) Observe(ctx context.Context) <-chan Resource[T] {
	return h.state.Subscribe(ctx)
}

// Clear drops loaded data and returns to Idle.
func (h *holder[T]) Clear() {
	h.mu.Lock()
	h.gen++
	h.mu.Unlock()
	h.state.Set(Resource[T]{})
}

// load fetches under key and publishes the result if no newer load or Clear
// happened meanwhile. Concurrent loads of the same key against the same
// server share one fetch.
func (h *holder[T]) load(ctx context.Context, key string, fetch func(ctx context.Context, api client.Client) (T, error)) Resource[T] {
	h.mu.Lock()
	h.gen++
	gen := h.gen
	h.mu.Unlock()

	h.state.Update(func(r Resource[T]) Resource[T] { return r.Loading() })

	var (
		data T
		err  error
	)
	api, p, err := h.session.Client()
	if err == nil {
		data, err = share(ctx, &h.flight, p.ID+"/"+key, func(ctx context.Context) (T, error) {
			return fetch(ctx, api)
		})
	}
	if err != nil {
		h.log.Warn(ctx, "load failed", "key", key, "err", err)
	}
	res := resultOf(data, err, h.empty)

	h.mu.Lock()
	defer h.mu.Unlock()
	if gen != h.gen {
		h.log.Debug(ctx, "dropping superseded load", "key", key)
		return h.state.Get()
	}
	h.state.Set(res)
	return res
}

// share runs fn once for all concurrent callers of key. fn runs on a context
// that no single caller can cancel; a caller whose ctx is done stops waiting
// and gets ctx.Err().
func share[T any](ctx context.Context, g *singleflight.Group, key string, fn func(ctx context.Context) (T, error)) (T, error) {
	detached := context.WithoutCancel(ctx)
	ch := g.DoChan(key, func() (any, error) {
		return fn(detached)
	})

	var zero T
	select {
	case r := <-ch:
		if r.Err != nil {
			return zero, r.Err
		}
		return r.Val.(T), nil
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// Apply rewrites the user data of every cached copy of id.
func (h *holder[T]) Apply(id string, fn func(models.UserData) models.UserData) {
	h.state.Update(func(r Resource[T]) Resource[T] {
		r.Data = h.patch(r.Data, id, fn)
		return r
	})
}

// TogglePlayed marks id played when current is false and unplayed when it
// is true, then flips the flag on every cached copy. The local change stays
// even if the server call fails; the returned error is informational.
func (h *holder[T]) TogglePlayed(ctx context.Context, id string, current bool) error {
	return togglePlayed(ctx, h.session, h.log, id, current, h.Apply)
}

// ToggleFavorite is TogglePlayed for the favorite flag.
func (h *holder[T]) ToggleFavorite(ctx context.Context, id string, current bool) error {
	return toggleFavorite(ctx, h.session, h.log, id, current, h.Apply)
}

type applyFunc func(id string, fn func(models.UserData) models.UserData)

// Patcher is anything holding cached items that can be patched in place.
type Patcher interface {
	Apply(id string, fn func(models.UserData) models.UserData)
}

func applyAll(targets []Patcher) applyFunc {
	return func(id string, fn func(models.UserData) models.UserData) {
		for _, t := range targets {
			t.Apply(id, fn)
		}
	}
}

// TogglePlayed sends one played/unplayed write for id and then patches every
// target, whatever the server answered. The error is informational unless
// it is ErrNoActiveServer, in which case nothing was patched.
func TogglePlayed(ctx context.Context, session *Session, log logging.Logger, id string, current bool, targets ...Patcher) error {
	if log == nil {
		log = logging.Discard()
	}
	return togglePlayed(ctx, session, log, id, current, applyAll(targets))
}

// ToggleFavorite is TogglePlayed for the favorite flag.
func ToggleFavorite(ctx context.Context, session *Session, log logging.Logger, id string, current bool, targets ...Patcher) error {
	if log == nil {
		log = logging.Discard()
	}
	return toggleFavorite(ctx, session, log, id, current, applyAll(targets))
}

func togglePlayed(ctx context.Context, session *Session, log logging.Logger, id string, current bool, apply applyFunc) error {
	api, _, err := session.Client()
	if err != nil {
		return err
	}
	if current {
		err = api.MarkUnplayed(ctx, id)
	} else {
		err = api.MarkPlayed(ctx, id)
	}
	apply(id, models.SetPlayed(!current))
	if err != nil {
		log.Warn(ctx, "played toggle not confirmed by server", "item", id, "err", err)
	}
	return err
}

func toggleFavorite(ctx context.Context, session *Session, log logging.Logger, id string, current bool, apply applyFunc) error {
	api, _, err := session.Client()
	if err != nil {
		return err
	}
	if current {
		err = api.UnmarkFavorite(ctx, id)
	} else {
		err = api.MarkFavorite(ctx, id)
	}
	apply(id, models.SetFavorite(!current))
	if err != nil {
		log.Warn(ctx, "favorite toggle not confirmed by server", "item", id, "err", err)
	}
	return err
}

// followActive calls refresh for every newly active server and clear when
// none is active, until ctx is done.
func followActive(ctx context.Context, session *Session, refresh func(ctx context.Context), clear func()) {
	for p := range session.ObserveActive(ctx) {
		if p == nil {
			clear()
			continue
		}
		refresh(ctx)
	}
}

// clearOnSwitch calls clear each time the active server changes after the
// call starts, until ctx is done.
func clearOnSwitch(ctx context.Context, session *Session, clear func()) {
	first := true
	for range session.ObserveActive(ctx) {
		if first {
			first = false
			continue
		}
		clear()
	}
}
