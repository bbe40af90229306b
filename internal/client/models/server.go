// Package models defines the client-side data models of sealfin: saved
// server profiles, the theme preference, login attempt state and the subset
// of media-server items the browser works with.
package models

import "errors"

// ServerProfile is a saved set of credentials and address for one media
// server. Profiles are created by a successful login and never modified;
// a new login for the same user replaces the old profile.
type ServerProfile struct {
	// ID is the user id the server issued on authentication.
	ID string `json:"id"`
	// Name is the server display name, or the URL when none was reported.
	Name string `json:"name"`
	// BaseURL is the network address of the server.
	BaseURL string `json:"baseUrl"`
	// Username is the account name used to authenticate.
	Username string `json:"username"`
	// AccessToken is the credential issued by the server, stored verbatim.
	AccessToken string `json:"accessToken"`
}

var ErrInvalidProfile = errors.New("server profile requires id and base url")

// Validate checks the fields a profile cannot be stored without.
func (p ServerProfile) Validate() error {
	if p.ID == "" || p.BaseURL == "" {
		return ErrInvalidProfile
	}
	return nil
}

// FindServer returns the profile with the given id, or nil.
func FindServer(servers []ServerProfile, id string) *ServerProfile {
	if id == "" {
		return nil
	}
	for i := range servers {
		if servers[i].ID == id {
			p := servers[i]
			return &p
		}
	}
	return nil
}
