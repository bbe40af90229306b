package client

import (
	"context"

	"github.com/dmitrijs2005/sealfin/internal/client/models"
)

// Client is the subset of the media-server API the application consumes.
type Client interface {
	AuthenticateByName(ctx context.Context, username, password string) (*AuthResult, error)
	PublicSystemInfo(ctx context.Context) (*SystemInfo, error)
	Items(ctx context.Context, q ItemsQuery) ([]models.Item, error)
	ResumeItems(ctx context.Context, fields ...string) ([]models.Item, error)
	NextUp(ctx context.Context, fields ...string) ([]models.Item, error)
	MarkPlayed(ctx context.Context, itemID string) error
	MarkUnplayed(ctx context.Context, itemID string) error
	MarkFavorite(ctx context.Context, itemID string) error
	UnmarkFavorite(ctx context.Context, itemID string) error
}

// Factory builds a Client bound to one server and credential.
// An empty token yields an anonymous client, used for logging in.
type Factory func(baseURL, token string) Client

// AuthResult is the response of a credential exchange.
type AuthResult struct {
	AccessToken string   `json:"AccessToken"`
	ServerID    string   `json:"ServerId"`
	User        AuthUser `json:"User"`
}

type AuthUser struct {
	ID   string `json:"Id"`
	Name string `json:"Name"`
}

// SystemInfo is the unauthenticated server description.
type SystemInfo struct {
	ID         string `json:"Id"`
	ServerName string `json:"ServerName"`
	Version    string `json:"Version"`
}

// Sort orders.
const (
	Ascending  = "Ascending"
	Descending = "Descending"
)

// Item fields that are only returned when requested.
const (
	FieldOverview = "Overview"
	FieldGenres   = "Genres"
	FieldPeople   = "People"
)

// ItemsQuery selects items. Zero fields are not sent.
type ItemsQuery struct {
	IDs                  []string
	ParentID             string
	IncludeItemTypes     []string
	ExcludeLocationTypes []string
	Filters              []string
	Recursive            bool
	SortBy               []string
	SortOrder            string
	Limit                int
	Fields               []string
}

// itemsResult is the envelope of every list endpoint.
type itemsResult struct {
	Items            []models.Item `json:"Items"`
	TotalRecordCount int           `json:"TotalRecordCount"`
}
