package services

import (
	"context"

	"github.com/dmitrijs2005/sealfin/internal/client/client"
	"github.com/dmitrijs2005/sealfin/internal/client/models"
	"github.com/dmitrijs2005/sealfin/internal/logging"
	"golang.org/x/sync/errgroup"
)

// ItemPage is one item with, for series, its seasons.
type ItemPage struct {
	Item    models.Item
	Seasons []models.Item
}

// ItemDetail shows a single item.
type ItemDetail struct {
	*holder[ItemPage]
}

func NewItemDetail(session *Session, log logging.Logger) *ItemDetail {
	if log == nil {
		log = logging.Discard()
	}
	return &ItemDetail{newHolder(session, log.With("holder", "item"),
		func(ItemPage) bool { return false },
		func(p ItemPage, id string, fn func(models.UserData) models.UserData) ItemPage {
			if p.Item.ID == id {
				p.Item = p.Item.WithUserData(fn)
			}
			p.Seasons = models.PatchItems(p.Seasons, id, fn)
			return p
		})}
}

// Load fetches the item with overview, genres and people, then its seasons
// when it is a series.
func (d *ItemDetail) Load(ctx context.Context, itemID string) Resource[ItemPage] {
	return d.load(ctx, "item:"+itemID, func(ctx context.Context, api client.Client) (ItemPage, error) {
		item, err := fetchOne(ctx, api, itemQuery(itemID, client.FieldOverview, client.FieldGenres, client.FieldPeople))
		if err != nil {
			return ItemPage{}, err
		}
		page := ItemPage{Item: item}
		if item.Type == models.KindSeries {
			if page.Seasons, err = api.Items(ctx, seasonsQuery(item.ID)); err != nil {
				return ItemPage{}, err
			}
		}
		return page, nil
	})
}

func (d *ItemDetail) Run(ctx context.Context) {
	clearOnSwitch(ctx, d.session, d.Clear)
}

// SeasonPage is a season with its episodes in index order.
type SeasonPage struct {
	Season   models.Item
	Episodes []models.Item
}

// SeasonDetail shows one season of a series.
type SeasonDetail struct {
	*holder[SeasonPage]
}

func NewSeasonDetail(session *Session, log logging.Logger) *SeasonDetail {
	if log == nil {
		log = logging.Discard()
	}
	return &SeasonDetail{newHolder(session, log.With("holder", "season"),
		func(SeasonPage) bool { return false },
		func(p SeasonPage, id string, fn func(models.UserData) models.UserData) SeasonPage {
			if p.Season.ID == id {
				p.Season = p.Season.WithUserData(fn)
			}
			p.Episodes = models.PatchItems(p.Episodes, id, fn)
			return p
		})}
}

// Load fetches the season and its episodes concurrently.
func (d *SeasonDetail) Load(ctx context.Context, seasonID string) Resource[SeasonPage] {
	return d.load(ctx, "season:"+seasonID, func(ctx context.Context, api client.Client) (SeasonPage, error) {
		var page SeasonPage
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			season, err := fetchOne(gctx, api, itemQuery(seasonID, client.FieldOverview))
			page.Season = season
			return err
		})
		g.Go(func() error {
			eps, err := api.Items(gctx, episodesQuery(seasonID))
			page.Episodes = eps
			return err
		})
		if err := g.Wait(); err != nil {
			return SeasonPage{}, err
		}
		return page, nil
	})
}

func (d *SeasonDetail) Run(ctx context.Context) {
	clearOnSwitch(ctx, d.session, d.Clear)
}
