package models

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServerProfile_Validate(t *testing.T) {
	require.NoError(t, ServerProfile{ID: "u1", BaseURL: "http://h"}.Validate())
	require.ErrorIs(t, ServerProfile{BaseURL: "http://h"}.Validate(), ErrInvalidProfile)
	require.ErrorIs(t, ServerProfile{ID: "u1"}.Validate(), ErrInvalidProfile)
}

func TestFindServer(t *testing.T) {
	list := []ServerProfile{{ID: "a", Name: "A"}, {ID: "b", Name: "B"}}

	got := FindServer(list, "b")
	require.NotNil(t, got)
	assert.Equal(t, "B", got.Name)

	got.Name = "changed"
	assert.Equal(t, "B", list[1].Name, "FindServer must return a copy")

	assert.Nil(t, FindServer(list, "c"))
	assert.Nil(t, FindServer(list, ""))
	assert.Nil(t, FindServer(nil, "a"))
}

func TestParseTheme(t *testing.T) {
	tests := []struct {
		in   string
		want Theme
		ok   bool
	}{
		{"light", ThemeLight, true},
		{" DARK ", ThemeDark, true},
		{"System", ThemeSystem, true},
		{"sepia", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTheme(tt.in)
			if !tt.ok {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
	assert.Equal(t, ThemeSystem, DefaultTheme)
}

func TestLoginPhase_StringAndTerminal(t *testing.T) {
	assert.Equal(t, "idle", LoginIdle.String())
	assert.Equal(t, "authenticating", LoginAuthenticating.String())
	assert.Equal(t, "authenticated", LoginAuthenticated.String())
	assert.Equal(t, "failed", LoginFailed.String())
	assert.Equal(t, "unknown", LoginPhase(42).String())

	assert.False(t, LoginState{Phase: LoginIdle}.Terminal())
	assert.False(t, LoginState{Phase: LoginAuthenticating}.Terminal())
	assert.True(t, LoginState{Phase: LoginAuthenticated}.Terminal())
	assert.True(t, LoginState{Phase: LoginFailed}.Terminal())
}

func TestItem_Flags(t *testing.T) {
	assert.False(t, Item{}.Played())
	assert.False(t, Item{}.Favorite())

	it := Item{UserData: &UserData{Played: true, IsFavorite: true}}
	assert.True(t, it.Played())
	assert.True(t, it.Favorite())
}

func TestItem_IsLibrary(t *testing.T) {
	assert.True(t, Item{CollectionType: "movies"}.IsLibrary())
	assert.True(t, Item{CollectionType: "tvshows"}.IsLibrary())
	assert.True(t, Item{}.IsLibrary())
	assert.False(t, Item{CollectionType: "playlists"}.IsLibrary())
	assert.False(t, Item{CollectionType: "folders"}.IsLibrary())
	assert.False(t, Item{CollectionType: "unknown"}.IsLibrary())
}

func TestPatchItems_OnlyMatchingIDsAndCopies(t *testing.T) {
	items := []Item{
		{ID: "1", UserData: &UserData{IsFavorite: true}},
		{ID: "2", UserData: &UserData{}},
		{ID: "1", UserData: &UserData{IsFavorite: true, Played: true}},
		{ID: "3"},
	}

	got := PatchItems(items, "1", SetFavorite(false))

	want := []Item{
		{ID: "1", UserData: &UserData{}},
		{ID: "2", UserData: &UserData{}},
		{ID: "1", UserData: &UserData{Played: true}},
		{ID: "3"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("PatchItems mismatch (-want +got):\n%s", diff)
	}

	assert.True(t, items[0].UserData.IsFavorite, "input must stay untouched")
	assert.Nil(t, PatchItems(nil, "1", SetPlayed(true)))
}

func TestWithUserData_NoUserData(t *testing.T) {
	it := Item{ID: "x"}
	assert.Nil(t, it.WithUserData(SetPlayed(true)).UserData)
}
