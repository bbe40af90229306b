package services

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/sealfin/internal/client/client"
	"github.com/dmitrijs2005/sealfin/internal/client/models"
	"github.com/dmitrijs2005/sealfin/internal/client/watch"
	"github.com/dmitrijs2005/sealfin/internal/logging"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// Home is the state of the home feed. Sections load and fail independently.
type Home struct {
	ContinueWatching Resource[[]models.Item]
	NextUp           Resource[[]models.Item]
	RecentlyAdded    Resource[[]models.LibraryWithItems]
}

// HomeFeed loads the continue-watching, next-up and recently-added shelves.
type HomeFeed struct {
	session *Session
	log     logging.Logger
	state   *watch.Hub[Home]
	flight  singleflight.Group

	mu  sync.Mutex
	gen uint64
}

func NewHomeFeed(session *Session, log logging.Logger) *HomeFeed {
	if log == nil {
		log = logging.Discard()
	}
	return &HomeFeed{session: session, log: log.With("holder", "home"), state: watch.New(Home{})}
}

func (h *HomeFeed) State() Home {
	return h.state.Get()
}

func (h *HomeFeed) Observe(ctx context.Context) <-chan Home {
	return h.state.Subscribe(ctx)
}

func (h *HomeFeed) Clear() {
	h.mu.Lock()
	h.gen++
	h.mu.Unlock()
	h.state.Set(Home{})
}

// Refresh reloads all sections against the active server. Concurrent calls
// for the same server share one load.
func (h *HomeFeed) Refresh(ctx context.Context) Home {
	api, p, err := h.session.Client()
	if err != nil {
		h.fail(err)
		return h.state.Get()
	}
	_, _ = share(ctx, &h.flight, p.ID, func(ctx context.Context) (struct{}, error) {
		h.refresh(ctx, api)
		return struct{}{}, nil
	})
	return h.state.Get()
}

// begin starts a new generation and marks every section loading.
func (h *HomeFeed) begin() uint64 {
	h.mu.Lock()
	h.gen++
	gen := h.gen
	h.mu.Unlock()

	h.state.Update(func(s Home) Home {
		return Home{
			ContinueWatching: s.ContinueWatching.Loading(),
			NextUp:           s.NextUp.Loading(),
			RecentlyAdded:    s.RecentlyAdded.Loading(),
		}
	})
	return gen
}

// publish applies one section result unless the feed was reloaded or
// cleared since generation gen started.
func (h *HomeFeed) publish(gen uint64, fn func(Home) Home) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if gen == h.gen {
		h.state.Update(fn)
	}
}

func (h *HomeFeed) fail(err error) {
	gen := h.begin()
	h.publish(gen, func(Home) Home {
		return Home{
			ContinueWatching: resultOf[[]models.Item](nil, err, isEmptySlice),
			NextUp:           resultOf[[]models.Item](nil, err, isEmptySlice),
			RecentlyAdded:    resultOf[[]models.LibraryWithItems](nil, err, isEmptySlice),
		}
	})
}

func (h *HomeFeed) refresh(ctx context.Context, api client.Client) {
	gen := h.begin()

	// Sections never fail the group; each publishes its own outcome.
	var g errgroup.Group
	g.Go(func() error {
		items, err := api.ResumeItems(ctx, client.FieldOverview)
		h.logErr(ctx, "continue watching", err)
		h.publish(gen, func(s Home) Home {
			s.ContinueWatching = resultOf(items, err, isEmptySlice)
			return s
		})
		return nil
	})
	g.Go(func() error {
		items, err := api.NextUp(ctx, client.FieldOverview)
		h.logErr(ctx, "next up", err)
		h.publish(gen, func(s Home) Home {
			s.NextUp = resultOf(items, err, isEmptySlice)
			return s
		})
		return nil
	})
	g.Go(func() error {
		shelves, err := h.recentlyAdded(ctx, api)
		h.logErr(ctx, "recently added", err)
		h.publish(gen, func(s Home) Home {
			s.RecentlyAdded = resultOf(shelves, err, isEmptySlice)
			return s
		})
		return nil
	})
	_ = g.Wait()
}

func (h *HomeFeed) logErr(ctx context.Context, section string, err error) {
	if err != nil {
		h.log.Warn(ctx, "section failed", "section", section, "err", err)
	}
}

// recentlyAdded loads the newest items of every library concurrently. A
// library whose request fails is skipped; the section fails only when all
// of them do. Shelves keep library order and empty ones are dropped.
func (h *HomeFeed) recentlyAdded(ctx context.Context, api client.Client) ([]models.LibraryWithItems, error) {
	all, err := api.Items(ctx, librariesQuery())
	if err != nil {
		return nil, err
	}
	libs := visibleLibraries(all)

	shelves := make([]models.LibraryWithItems, len(libs))
	errs := make([]error, len(libs))

	var g errgroup.Group
	g.SetLimit(4)
	for i, lib := range libs {
		g.Go(func() error {
			items, err := api.Items(ctx, recentlyAddedQuery(lib.ID))
			if err != nil {
				h.log.Debug(ctx, "library shelf failed", "library", lib.ID, "err", err)
				errs[i] = err
				return nil
			}
			shelves[i] = models.LibraryWithItems{ID: lib.ID, Name: lib.Name, Items: items}
			return nil
		})
	}
	_ = g.Wait()

	out := make([]models.LibraryWithItems, 0, len(libs))
	var lastErr error
	for i := range shelves {
		if errs[i] != nil {
			lastErr = errs[i]
			continue
		}
		if len(shelves[i].Items) > 0 {
			out = append(out, shelves[i])
		}
	}
	if len(libs) > 0 && len(out) == 0 && lastErr != nil {
		return nil, lastErr
	}
	return out, nil
}

// TogglePlayed flips the played flag of id in every section. See
// holder.TogglePlayed for the failure policy.
func (h *HomeFeed) TogglePlayed(ctx context.Context, id string, current bool) error {
	return togglePlayed(ctx, h.session, h.log, id, current, h.Apply)
}

func (h *HomeFeed) ToggleFavorite(ctx context.Context, id string, current bool) error {
	return toggleFavorite(ctx, h.session, h.log, id, current, h.Apply)
}

// Apply rewrites the user data of id in every section.
func (h *HomeFeed) Apply(id string, fn func(models.UserData) models.UserData) {
	h.state.Update(func(s Home) Home {
		s.ContinueWatching.Data = models.PatchItems(s.ContinueWatching.Data, id, fn)
		s.NextUp.Data = models.PatchItems(s.NextUp.Data, id, fn)
		s.RecentlyAdded.Data = patchShelves(s.RecentlyAdded.Data, id, fn)
		return s
	})
}

func patchShelves(shelves []models.LibraryWithItems, id string, fn func(models.UserData) models.UserData) []models.LibraryWithItems {
	if shelves == nil {
		return nil
	}
	out := make([]models.LibraryWithItems, len(shelves))
	for i, sh := range shelves {
		sh.Items = models.PatchItems(sh.Items, id, fn)
		out[i] = sh
	}
	return out
}

// Run refreshes the feed whenever the active server changes and clears it
// when none is active. It returns when ctx is done.
func (h *HomeFeed) Run(ctx context.Context) {
	followActive(ctx, h.session, func(ctx context.Context) { h.Refresh(ctx) }, h.Clear)
}
