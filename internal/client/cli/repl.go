package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

type command func(ctx context.Context, args []string) error

// execIface defines the command surface the REPL dispatches to.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	Login(ctx context.Context, args []string) error
	Servers(ctx context.Context, args []string) error
	Switch(ctx context.Context, args []string) error
	Remove(ctx context.Context, args []string) error
	Theme(ctx context.Context, args []string) error
	Home(ctx context.Context, args []string) error
	Libraries(ctx context.Context, args []string) error
	Library(ctx context.Context, args []string) error
	Item(ctx context.Context, args []string) error
	Season(ctx context.Context, args []string) error
	Favorites(ctx context.Context, args []string) error
	Played(ctx context.Context, args []string) error
	Favorite(ctx context.Context, args []string) error
}

const replHelp = `Available commands:
  login [url] [user]   authenticate and make the server active
  servers              list saved servers
  switch <id>          make a saved server active
  remove <id>          forget a saved server
  theme [name]         show or set the theme
  home                 continue watching, next up, recently added
  libraries            list libraries
  library <id>         list a library
  item <id>            show an item
  season <id>          show a season and its episodes
  favorites            list favorites
  played <id>          toggle the played flag
  favorite <id>        toggle the favorite flag
  exit | quit          leave the shell`

func dispatch(a execIface) map[string]command {
	return map[string]command{
		"login":     a.Login,
		"servers":   a.Servers,
		"ls":        a.Servers,
		"switch":    a.Switch,
		"remove":    a.Remove,
		"theme":     a.Theme,
		"home":      a.Home,
		"libraries": a.Libraries,
		"library":   a.Library,
		"item":      a.Item,
		"season":    a.Season,
		"favorites": a.Favorites,
		"played":    a.Played,
		"favorite":  a.Favorite,
	}
}

// runREPL reads commands line by line from reader and dispatches them to a
// until EOF, "exit" or "quit", or until ctx is done.
//
// The prompt shows the current status from statusFn. Command errors are
// printed and the loop continues.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	commands := dispatch(a)
	for ctx.Err() == nil {
		printlnFn(fmt.Sprintf("sealfin %s> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		name, args := parts[0], parts[1:]

		switch name {
		case "help":
			printlnFn(replHelp)
		case "exit", "quit":
			printlnFn("Bye!")
			return
		default:
			cmd, ok := commands[name]
			if !ok {
				printlnFn("Unknown command:", name)
				continue
			}
			if err := cmd(ctx, args); err != nil {
				printlnFn("Error:", err)
			}
		}
	}
}
