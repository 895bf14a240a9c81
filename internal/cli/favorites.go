package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func newFavoritesCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "favorites",
		Aliases: []string{"favourites", "fav"},
		Short:   "Manage your favorite books",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List your favorite books",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			books := a.favorites.List(cmd.Context())
			return a.render(books, func(w io.Writer) {
				switch {
				case !a.auth.LoggedIn():
					fmt.Fprintln(w, "Log in to see your favorites")
				case len(books) == 0:
					fmt.Fprintln(w, "No favorites yet")
				default:
					bookRows(w, books)
				}
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "add <work-key>",
		Short: "Add a book to your favorites",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.favorites.Add(cmd.Context(), args[0]); err != nil {
				return err
			}
			a.say("Added %s to favorites", args[0])
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "remove <work-key>",
		Short: "Remove a book from your favorites",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.favorites.Remove(cmd.Context(), args[0]); err != nil {
				return err
			}
			a.say("Removed %s from favorites", args[0])
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "toggle <work-key>",
		Short: "Add a book to your favorites, or remove it if present",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			on, err := a.favorites.Toggle(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if on {
				a.say("Added %s to favorites", args[0])
			} else {
				a.say("Removed %s from favorites", args[0])
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "check <work-key>",
		Short: "Tell whether a book is one of your favorites",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fav := a.favorites.IsFavorite(cmd.Context(), args[0])
			res := map[string]any{"work_key": args[0], "favorite": fav}
			return a.render(res, func(w io.Writer) {
				if fav {
					fmt.Fprintf(w, "%s is in your favorites\n", args[0])
				} else {
					fmt.Fprintf(w, "%s is not in your favorites\n", args[0])
				}
			})
		},
	})

	return cmd
}

func newRecommendationsCmd(a *App) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:     "recommendations",
		Aliases: []string{"recs"},
		Short:   "Books picked for you",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit <= 0 {
				limit = a.cfg.Recommendations.Limit
			}
			books := a.recommendations.List(cmd.Context(), limit)
			return a.render(books, func(w io.Writer) {
				switch {
				case !a.auth.LoggedIn():
					fmt.Fprintln(w, "Log in to get recommendations")
				case len(books) == 0:
					fmt.Fprintln(w, "No recommendations right now")
				default:
					bookRows(w, books)
				}
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "number of books (default from config)")
	return cmd
}
