package models

// Item kinds used by the browser.
const (
	KindMovie            = "Movie"
	KindSeries           = "Series"
	KindSeason           = "Season"
	KindEpisode          = "Episode"
	KindCollectionFolder = "CollectionFolder"
)

// Collection types that are not browsable media libraries.
var hiddenCollectionTypes = map[string]struct{}{
	"unknown":   {},
	"playlists": {},
	"folders":   {},
}

// UserData is the per-user state the server keeps for an item.
type UserData struct {
	Played                bool    `json:"Played"`
	IsFavorite            bool    `json:"IsFavorite"`
	PlaybackPositionTicks int64   `json:"PlaybackPositionTicks,omitempty"`
	PlayedPercentage      float64 `json:"PlayedPercentage,omitempty"`
	UnplayedItemCount     int     `json:"UnplayedItemCount,omitempty"`
}

// Person is a cast or crew member.
type Person struct {
	Name string `json:"Name"`
	Role string `json:"Role,omitempty"`
	Type string `json:"Type,omitempty"`
}

// Item is the subset of a server item the client displays.
type Item struct {
	ID                string    `json:"Id"`
	Name              string    `json:"Name"`
	Type              string    `json:"Type"`
	CollectionType    string    `json:"CollectionType,omitempty"`
	SeriesID          string    `json:"SeriesId,omitempty"`
	SeriesName        string    `json:"SeriesName,omitempty"`
	SeasonID          string    `json:"SeasonId,omitempty"`
	IndexNumber       *int      `json:"IndexNumber,omitempty"`
	ParentIndexNumber *int      `json:"ParentIndexNumber,omitempty"`
	ProductionYear    *int      `json:"ProductionYear,omitempty"`
	RunTimeTicks      int64     `json:"RunTimeTicks,omitempty"`
	Overview          string    `json:"Overview,omitempty"`
	Genres            []string  `json:"Genres,omitempty"`
	People            []Person  `json:"People,omitempty"`
	UserData          *UserData `json:"UserData,omitempty"`
}

// Played reports the played flag, false when no user data was returned.
func (i Item) Played() bool {
	return i.UserData != nil && i.UserData.Played
}

// Favorite reports the favorite flag, false when no user data was returned.
func (i Item) Favorite() bool {
	return i.UserData != nil && i.UserData.IsFavorite
}

// IsLibrary reports whether a top-level item is a browsable media library.
func (i Item) IsLibrary() bool {
	_, hidden := hiddenCollectionTypes[i.CollectionType]
	return !hidden
}

// WithUserData returns a copy of i with fn applied to its user data.
// Items without user data are returned unchanged.
func (i Item) WithUserData(fn func(UserData) UserData) Item {
	if i.UserData == nil {
		return i
	}
	ud := fn(*i.UserData)
	i.UserData = &ud
	return i
}

// PatchItems applies fn to the user data of every item with the given id
// and returns a new slice. The input is not modified.
func PatchItems(items []Item, id string, fn func(UserData) UserData) []Item {
	if items == nil {
		return nil
	}
	out := make([]Item, len(items))
	for n, it := range items {
		if it.ID == id {
			it = it.WithUserData(fn)
		}
		out[n] = it
	}
	return out
}

// LibraryWithItems is one recently-added shelf on the home feed.
type LibraryWithItems struct {
	ID    string
	Name  string
	Items []Item
}

// FavoriteGroup is one bucket of the favorites screen.
type FavoriteGroup struct {
	Label string
	Kind  string
	Items []Item
}

// FavoriteKinds is the bucket order of the favorites screen.
var FavoriteKinds = []FavoriteGroup{
	{Label: "Movies", Kind: KindMovie},
	{Label: "Shows", Kind: KindSeries},
	{Label: "Seasons", Kind: KindSeason},
	{Label: "Episodes", Kind: KindEpisode},
}

// SetPlayed returns a patch that sets the played flag to v.
func SetPlayed(v bool) func(UserData) UserData {
	return func(ud UserData) UserData {
		ud.Played = v
		return ud
	}
}

// SetFavorite returns a patch that sets the favorite flag to v.
func SetFavorite(v bool) func(UserData) UserData {
	return func(ud UserData) UserData {
		ud.IsFavorite = v
		return ud
	}
}
