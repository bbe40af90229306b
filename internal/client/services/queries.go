package services

import (
	"github.com/dmitrijs2005/sealfin/internal/client/client"
	"github.com/dmitrijs2005/sealfin/internal/client/models"
)

// RecentlyAddedLimit is the number of items per recently-added shelf.
const RecentlyAddedLimit = 10

const (
	sortName        = "SortName"
	sortDateCreated = "DateCreated"
	sortIndexNumber = "IndexNumber"

	filterIsFavorite = "IsFavorite"
	locationVirtual  = "Virtual"
)

func librariesQuery() client.ItemsQuery {
	return client.ItemsQuery{
		IncludeItemTypes: []string{models.KindCollectionFolder},
		SortBy:           []string{sortName},
		SortOrder:        client.Ascending,
	}
}

func recentlyAddedQuery(libraryID string) client.ItemsQuery {
	return client.ItemsQuery{
		ParentID:  libraryID,
		SortBy:    []string{sortDateCreated},
		SortOrder: client.Descending,
		Limit:     RecentlyAddedLimit,
	}
}

func libraryItemsQuery(libraryID string) client.ItemsQuery {
	return client.ItemsQuery{
		ParentID:  libraryID,
		SortBy:    []string{sortName},
		SortOrder: client.Ascending,
	}
}

func itemQuery(id string, fields ...string) client.ItemsQuery {
	return client.ItemsQuery{IDs: []string{id}, Fields: fields}
}

func seasonsQuery(seriesID string) client.ItemsQuery {
	return client.ItemsQuery{
		ParentID:         seriesID,
		IncludeItemTypes: []string{models.KindSeason},
		SortBy:           []string{sortName},
		SortOrder:        client.Ascending,
	}
}

func episodesQuery(seasonID string) client.ItemsQuery {
	return client.ItemsQuery{
		ParentID:         seasonID,
		IncludeItemTypes: []string{models.KindEpisode},
		SortBy:           []string{sortIndexNumber},
		SortOrder:        client.Ascending,
		Fields:           []string{client.FieldOverview},
	}
}

func favoritesQuery(kind string) client.ItemsQuery {
	return client.ItemsQuery{
		IncludeItemTypes:     []string{kind},
		ExcludeLocationTypes: []string{locationVirtual},
		Filters:              []string{filterIsFavorite},
		Recursive:            true,
		SortBy:               []string{sortName},
		SortOrder:            client.Ascending,
	}
}

// visibleLibraries drops folders that are not media libraries.
func visibleLibraries(items []models.Item) []models.Item {
	out := make([]models.Item, 0, len(items))
	for _, it := range items {
		if it.IsLibrary() {
			out = append(out, it)
		}
	}
	return out
}
