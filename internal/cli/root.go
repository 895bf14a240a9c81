package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the bookhub command tree on app.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:   "bookhub",
		Short: "Browse, rate and discuss books from a bookhub server",
		Long: `bookhub is a client for a book-sharing service.

Browse the catalog, look up authors and subjects, rate books, keep
favorites and take part in comment threads. Run 'bookhub shell' to keep
one session, and its cache, across many commands.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !validFormat(app.Format) {
				return fmt.Errorf("unknown output format %q (want table, json or yaml)", app.Format)
			}
			return app.Open()
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true

	root.PersistentFlags().StringVar(&app.ConfigPath, "config", app.ConfigPath, "config file (default: bookhub.yaml or the user config dir)")
	root.PersistentFlags().StringVarP(&app.Format, "output", "o", app.Format, "output format: table, json or yaml")

	root.AddCommand(newLoginCmd(app))
	root.AddCommand(newRegisterCmd(app))
	root.AddCommand(newLogoutCmd(app))
	root.AddCommand(newWhoamiCmd(app))
	root.AddCommand(newBooksCmd(app))
	root.AddCommand(newAuthorsCmd(app))
	root.AddCommand(newCategoriesCmd(app))
	root.AddCommand(newSubjectsCmd(app))
	root.AddCommand(newRatingCmd(app))
	root.AddCommand(newCommentsCmd(app))
	root.AddCommand(newFavoritesCmd(app))
	root.AddCommand(newRecommendationsCmd(app))
	root.AddCommand(newStatsCmd(app))
	root.AddCommand(newShellCmd(app))

	return root
}

// Execute runs one command line and returns the process exit code.
func Execute(ctx context.Context, app *App, args []string) int {
	if err := app.run(ctx, args); err != nil {
		fmt.Fprintln(app.Err, "Error:", app.describe(err))
		return 1
	}
	return 0
}

func (a *App) run(ctx context.Context, args []string) error {
	a.sessionEnded.Store(false)
	root := NewRootCmd(a)
	root.SetArgs(args)
	root.SetIn(a.In)
	root.SetOut(a.Out)
	root.SetErr(a.Err)
	return root.ExecuteContext(ctx)
}
