package services

import (
	"context"

	"github.com/dmitrijs2005/sealfin/internal/client/client"
	"github.com/dmitrijs2005/sealfin/internal/client/models"
	"github.com/dmitrijs2005/sealfin/internal/logging"
	"golang.org/x/sync/errgroup"
)

// Libraries lists the media libraries of the active server.
type Libraries struct {
	*holder[[]models.Item]
}

func NewLibraries(session *Session, log logging.Logger) *Libraries {
	if log == nil {
		log = logging.Discard()
	}
	return &Libraries{newHolder(session, log.With("holder", "libraries"), isEmptySlice[models.Item], models.PatchItems)}
}

func (l *Libraries) Refresh(ctx context.Context) Resource[[]models.Item] {
	return l.load(ctx, "libraries", func(ctx context.Context, api client.Client) ([]models.Item, error) {
		items, err := api.Items(ctx, librariesQuery())
		if err != nil {
			return nil, err
		}
		return visibleLibraries(items), nil
	})
}

func (l *Libraries) Run(ctx context.Context) {
	followActive(ctx, l.session, func(ctx context.Context) { l.Refresh(ctx) }, l.Clear)
}

// LibraryPage is one library with its top-level items.
type LibraryPage struct {
	Library models.Item
	Items   []models.Item
}

// LibraryDetail shows the contents of one library.
type LibraryDetail struct {
	*holder[LibraryPage]
}

func NewLibraryDetail(session *Session, log logging.Logger) *LibraryDetail {
	if log == nil {
		log = logging.Discard()
	}
	return &LibraryDetail{newHolder(session, log.With("holder", "library"),
		func(p LibraryPage) bool { return len(p.Items) == 0 },
		func(p LibraryPage, id string, fn func(models.UserData) models.UserData) LibraryPage {
			p.Items = models.PatchItems(p.Items, id, fn)
			return p
		})}
}

// Load fetches the library header and its items concurrently.
func (l *LibraryDetail) Load(ctx context.Context, libraryID string) Resource[LibraryPage] {
	return l.load(ctx, "library:"+libraryID, func(ctx context.Context, api client.Client) (LibraryPage, error) {
		var page LibraryPage
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			lib, err := fetchOne(gctx, api, itemQuery(libraryID))
			page.Library = lib
			return err
		})
		g.Go(func() error {
			items, err := api.Items(gctx, libraryItemsQuery(libraryID))
			page.Items = items
			return err
		})
		if err := g.Wait(); err != nil {
			return LibraryPage{}, err
		}
		return page, nil
	})
}

// Run clears the page whenever the active server changes.
func (l *LibraryDetail) Run(ctx context.Context) {
	clearOnSwitch(ctx, l.session, l.Clear)
}

// fetchOne loads a single item by id.
func fetchOne(ctx context.Context, api client.Client, q client.ItemsQuery) (models.Item, error) {
	items, err := api.Items(ctx, q)
	if err != nil {
		return models.Item{}, err
	}
	if len(items) == 0 {
		return models.Item{}, client.ErrNotFound
	}
	return items[0], nil
}
