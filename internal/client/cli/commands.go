package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/sealfin/internal/client/models"
	"github.com/dmitrijs2005/sealfin/internal/client/services"
	"github.com/dmitrijs2005/sealfin/internal/logging"
)

var errUsage = errors.New("usage")

func usage(form string) error {
	return fmt.Errorf("%w: %s", errUsage, form)
}

// argOrPrompt returns args[n] when present and asks for it otherwise.
func (a *App) argOrPrompt(args []string, n int, prompt string) (string, error) {
	if len(args) > n {
		return args[n], nil
	}
	return getSimpleText(a.reader, prompt, a.out)
}

// Login authenticates against a server and makes it active.
//
//	login [url] [username]
func (a *App) Login(ctx context.Context, args []string) error {
	serverURL, err := a.argOrPrompt(args, 0, "Server URL")
	if err != nil {
		return err
	}
	username, err := a.argOrPrompt(args, 1, "Username")
	if err != nil {
		return err
	}
	password, err := getPassword(a.out, "Password")
	if err != nil {
		return err
	}
	defer wipe(password)

	profile, err := a.sessions.Authenticate(ctx, serverURL, username, string(password))
	if err != nil {
		return err
	}
	a.printf("Logged in to %s as %s\n", profile.Name, profile.Username)
	return nil
}

// Servers lists saved profiles, marking the active one.
func (a *App) Servers(ctx context.Context, args []string) error {
	servers := a.sessions.Servers()
	if len(servers) == 0 {
		a.printf("No saved servers. Use login to add one.\n")
		return nil
	}

	p := a.palette()
	activeID := ""
	if active := a.prefs.ActiveServer(); active != nil {
		activeID = active.ID
	}
	for _, s := range servers {
		mark := " "
		if s.ID == activeID {
			mark = p.paint(p.accent, "*")
		}
		a.printf("%s %s  %s  %s  %s\n", mark, s.Name, s.Username, s.BaseURL, p.paint(p.dim, "["+s.ID+"]"))
	}
	return nil
}

func (a *App) findServer(id string) (*models.ServerProfile, error) {
	p := models.FindServer(a.sessions.Servers(), id)
	if p == nil {
		return nil, fmt.Errorf("unknown server %q", id)
	}
	return p, nil
}

// Switch makes a saved profile active.
func (a *App) Switch(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("switch <server-id>")
	}
	p, err := a.findServer(args[0])
	if err != nil {
		return err
	}
	if err := a.sessions.SwitchServer(ctx, p.ID); err != nil {
		return err
	}
	a.printf("Switched to %s\n", p.Name)
	return nil
}

// Remove deletes a saved profile.
func (a *App) Remove(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("remove <server-id>")
	}
	p, err := a.findServer(args[0])
	if err != nil {
		return err
	}
	if err := a.sessions.RemoveServer(ctx, p.ID); err != nil {
		return err
	}
	a.printf("Removed %s\n", p.Name)
	return nil
}

// Theme prints the theme, or saves a new one when given.
func (a *App) Theme(ctx context.Context, args []string) error {
	switch len(args) {
	case 0:
		names := make([]string, len(models.Themes))
		for n, t := range models.Themes {
			names[n] = string(t)
		}
		a.printf("%s (available: %s)\n", a.prefs.Theme(), strings.Join(names, ", "))
		return nil
	case 1:
		t, err := models.ParseTheme(args[0])
		if err != nil {
			return err
		}
		if err := a.prefs.SaveTheme(ctx, t); err != nil {
			return err
		}
		a.printf("Theme set to %s\n", t)
		return nil
	default:
		return usage("theme [LIGHT|DARK|SYSTEM]")
	}
}

// Home prints the three home feed sections.
func (a *App) Home(ctx context.Context, args []string) error {
	if _, err := a.sessions.Session().Active(); err != nil {
		return err
	}
	home := a.home.Refresh(ctx)

	a.heading("Continue watching")
	if !printStatus(a, home.ContinueWatching, "nothing in progress") {
		a.printItems(home.ContinueWatching.Data)
	}

	a.heading("Next up")
	if !printStatus(a, home.NextUp, "nothing up next") {
		a.printItems(home.NextUp.Data)
	}

	a.heading("Recently added")
	if !printStatus(a, home.RecentlyAdded, "nothing new") {
		p := a.palette()
		for _, shelf := range home.RecentlyAdded.Data {
			a.printf(" %s %s\n", p.paint(p.accent, shelf.Name), p.paint(p.dim, "["+shelf.ID+"]"))
			a.printItems(shelf.Items)
		}
	}
	return nil
}

// Libraries lists the user's media libraries.
func (a *App) Libraries(ctx context.Context, args []string) error {
	res := a.libraries.Refresh(ctx)
	if err := settledErr(res); err != nil {
		return err
	}
	a.heading("Libraries")
	if !printStatus(a, res, "no libraries") {
		a.printItems(res.Data)
	}
	return nil
}

// Library lists the items of one library.
func (a *App) Library(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("library <id>")
	}
	res := a.library.Load(ctx, args[0])
	if err := settledErr(res); err != nil {
		return err
	}
	a.heading(res.Data.Library.Name)
	if len(res.Data.Items) == 0 {
		a.printf("  (empty)\n")
	}
	a.printItems(res.Data.Items)
	return nil
}

// Item prints one item; series include their seasons.
func (a *App) Item(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("item <id>")
	}
	res := a.item.Load(ctx, args[0])
	if err := settledErr(res); err != nil {
		return err
	}
	a.printDetail(res.Data.Item)
	if len(res.Data.Seasons) > 0 {
		a.heading("Seasons")
		a.printItems(res.Data.Seasons)
	}
	return nil
}

// Season prints a season and its episodes.
func (a *App) Season(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("season <id>")
	}
	res := a.season.Load(ctx, args[0])
	if err := settledErr(res); err != nil {
		return err
	}
	a.printDetail(res.Data.Season)
	a.heading("Episodes")
	if len(res.Data.Episodes) == 0 {
		a.printf("  (none)\n")
	}
	a.printItems(res.Data.Episodes)
	return nil
}

func (a *App) printDetail(it models.Item) {
	p := a.palette()
	a.heading(itemLine(p, it))
	a.printf("  %s\n", p.paint(p.dim, it.Type))
	if len(it.Genres) > 0 {
		a.printf("  %s\n", strings.Join(it.Genres, ", "))
	}
	if s := overview(it.Overview); s != "" {
		a.printf("\n  %s\n\n", s)
	}
	for n, person := range it.People {
		if n == 5 {
			a.printf("  …\n")
			break
		}
		if person.Role != "" {
			a.printf("  %s as %s\n", person.Name, person.Role)
		} else {
			a.printf("  %s\n", person.Name)
		}
	}
}

// Favorites prints favorite items grouped by kind.
func (a *App) Favorites(ctx context.Context, args []string) error {
	res := a.favorites.Refresh(ctx)
	if err := settledErr(res); err != nil {
		return err
	}
	a.heading("Favorites")
	if printStatus(a, res, "no favorites yet") {
		return nil
	}
	p := a.palette()
	for _, g := range res.Data {
		if len(g.Items) == 0 {
			continue
		}
		a.printf(" %s\n", p.paint(p.accent, g.Label))
		a.printItems(g.Items)
	}
	return nil
}

// Played flips the played flag of an item.
func (a *App) Played(ctx context.Context, args []string) error {
	return a.toggle(ctx, args, "played", models.Item.Played, services.TogglePlayed)
}

// Favorite flips the favorite flag of an item.
func (a *App) Favorite(ctx context.Context, args []string) error {
	return a.toggle(ctx, args, "favorite", models.Item.Favorite, services.ToggleFavorite)
}

type toggleFunc func(ctx context.Context, session *services.Session, log logging.Logger, id string, current bool, targets ...services.Patcher) error

// patchers lists every holder that may cache a copy of an item.
func (a *App) patchers() []services.Patcher {
	return []services.Patcher{a.home, a.libraries, a.library, a.item, a.season, a.favorites}
}

func (a *App) toggle(ctx context.Context, args []string, flag string, current func(models.Item) bool, fn toggleFunc) error {
	if len(args) != 1 {
		return usage(flag + " <item-id>")
	}
	res := a.item.Load(ctx, args[0])
	if err := settledErr(res); err != nil {
		return err
	}

	was := current(res.Data.Item)
	remoteErr := fn(ctx, a.sessions.Session(), a.log, args[0], was, a.patchers()...)
	if errors.Is(remoteErr, services.ErrNoActiveServer) {
		return remoteErr
	}

	state := flag
	if was {
		state = "not " + flag
	}
	a.printf("%s is now %s\n", res.Data.Item.Name, state)
	if remoteErr != nil {
		a.printf("warning: the server did not confirm the change: %v\n", remoteErr)
	}
	return nil
}

// settledErr returns the load error of a failed resource.
func settledErr[T any](r services.Resource[T]) error {
	if r.Status == services.StatusFailed {
		return r.Err
	}
	return nil
}
