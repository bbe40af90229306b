package services

import (
	"context"

	"github.com/dmitrijs2005/sealfin/internal/client/client"
	"github.com/dmitrijs2005/sealfin/internal/client/models"
	"github.com/dmitrijs2005/sealfin/internal/logging"
	"golang.org/x/sync/errgroup"
)

// Favorites lists favorite movies, shows, seasons and episodes.
type Favorites struct {
	*holder[[]models.FavoriteGroup]
}

func NewFavorites(session *Session, log logging.Logger) *Favorites {
	if log == nil {
		log = logging.Discard()
	}
	return &Favorites{newHolder(session, log.With("holder", "favorites"), noFavorites, patchGroups)}
}

func noFavorites(groups []models.FavoriteGroup) bool {
	for _, g := range groups {
		if len(g.Items) > 0 {
			return false
		}
	}
	return true
}

func patchGroups(groups []models.FavoriteGroup, id string, fn func(models.UserData) models.UserData) []models.FavoriteGroup {
	if groups == nil {
		return nil
	}
	out := make([]models.FavoriteGroup, len(groups))
	for i, g := range groups {
		g.Items = models.PatchItems(g.Items, id, fn)
		out[i] = g
	}
	return out
}

// Refresh loads every bucket concurrently; any failure fails the load.
func (f *Favorites) Refresh(ctx context.Context) Resource[[]models.FavoriteGroup] {
	return f.load(ctx, "favorites", func(ctx context.Context, api client.Client) ([]models.FavoriteGroup, error) {
		groups := make([]models.FavoriteGroup, len(models.FavoriteKinds))
		copy(groups, models.FavoriteKinds)

		g, gctx := errgroup.WithContext(ctx)
		for i := range groups {
			g.Go(func() error {
				items, err := api.Items(gctx, favoritesQuery(groups[i].Kind))
				groups[i].Items = items
				return err
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
		return groups, nil
	})
}

func (f *Favorites) Run(ctx context.Context) {
	followActive(ctx, f.session, func(ctx context.Context) { f.Refresh(ctx) }, f.Clear)
}
