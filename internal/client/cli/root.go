package cli

import (
	"bufio"
	"context"

	"github.com/dmitrijs2005/sealfin/internal/client/config"
	"github.com/dmitrijs2005/sealfin/internal/logging"
	"github.com/spf13/cobra"
)

type appCommand func(a *App, ctx context.Context, args []string) error

// NewRootCmd builds the sealfin command tree. Without a subcommand it opens
// the interactive shell.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "sealfin",
		Short:         "Terminal client for Jellyfin media servers",
		SilenceErrors: true,
		SilenceUsage:  true,
		Args:          cobra.NoArgs,
		RunE: withApp(func(a *App, ctx context.Context, _ []string) error {
			a.Shell(ctx)
			return nil
		}),
	}
	config.BindFlags(root.PersistentFlags())

	root.AddCommand(
		newCmd("login [url] [username]", "Log in to a server and make it active", cobra.MaximumNArgs(2), (*App).Login),
		newCmd("servers", "List saved servers", cobra.NoArgs, (*App).Servers),
		newCmd("switch <server-id>", "Make a saved server active", cobra.ExactArgs(1), (*App).Switch),
		newCmd("remove <server-id>", "Forget a saved server", cobra.ExactArgs(1), (*App).Remove),
		newCmd("theme [LIGHT|DARK|SYSTEM]", "Show or set the colour theme", cobra.MaximumNArgs(1), (*App).Theme),
		newCmd("home", "Show continue watching, next up and recently added", cobra.NoArgs, (*App).Home),
		newCmd("libraries", "List media libraries", cobra.NoArgs, (*App).Libraries),
		newCmd("library <id>", "List the items of a library", cobra.ExactArgs(1), (*App).Library),
		newCmd("item <id>", "Show an item", cobra.ExactArgs(1), (*App).Item),
		newCmd("season <id>", "Show a season and its episodes", cobra.ExactArgs(1), (*App).Season),
		newCmd("favorites", "List favorite items", cobra.NoArgs, (*App).Favorites),
		newCmd("played <item-id>", "Toggle the played flag of an item", cobra.ExactArgs(1), (*App).Played),
		newCmd("favorite <item-id>", "Toggle the favorite flag of an item", cobra.ExactArgs(1), (*App).Favorite),
		&cobra.Command{
			Use:   "shell",
			Short: "Open the interactive shell",
			Args:  cobra.NoArgs,
			RunE: withApp(func(a *App, ctx context.Context, _ []string) error {
				a.Shell(ctx)
				return nil
			}),
		},
	)
	return root
}

func newCmd(use, short string, args cobra.PositionalArgs, run appCommand) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE:  withApp(run),
	}
}

// withApp loads the configuration, opens the App for the duration of run
// and routes its I/O through the command.
func withApp(run appCommand) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cmd.Flags())
		if err != nil {
			return err
		}

		log, closer := logging.New(logging.Options{
			File:       cfg.LogFile,
			Level:      cfg.LogLevel,
			MaxSizeMB:  10,
			MaxBackups: 3,
		})
		defer closer.Close()

		ctx := cmd.Context()
		a, err := NewApp(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer a.Close()

		a.out = cmd.OutOrStdout()
		a.reader = bufio.NewReader(cmd.InOrStdin())
		return run(a, ctx, args)
	}
}
