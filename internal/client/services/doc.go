// Package services contains application services for the sealfin client.
//
// SessionManager authenticates against media servers and manages saved
// profiles through the preference store. Session is the explicit session
// context: it resolves the active profile and builds API clients for it.
// The feed and browse holders (HomeFeed, Libraries, LibraryDetail,
// ItemDetail, SeasonDetail, Favorites) load remote data through a Session
// and publish it as observable Resource values.
package services
