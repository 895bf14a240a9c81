package cli

import (
	"context"
	"fmt"
	"io"

	"bookhub/internal/entity"
	"bookhub/internal/pager"
	"bookhub/internal/platform/openlibrary"

	"github.com/spf13/cobra"
)

func newAuthorsCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "authors",
		Short: "Browse authors",
	}
	cmd.AddCommand(newAuthorsListCmd(a))
	cmd.AddCommand(newAuthorsShowCmd(a))
	cmd.AddCommand(newAuthorsBooksCmd(a))
	return cmd
}

func newAuthorsListCmd(a *App) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List authors seen in the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			authors := a.authors.List(cmd.Context(), limit)
			return a.render(authors, func(w io.Writer) {
				if len(authors) == 0 {
					fmt.Fprintln(w, "No authors")
					return
				}
				fmt.Fprintln(w, "KEY\tNAME\tWORKS")
				for _, au := range authors {
					fmt.Fprintf(w, "%s\t%s\t%d\n", au.Key, au.Name, au.WorkCount)
				}
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "show at most n authors")
	return cmd
}

func newAuthorsShowCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <author-key>",
		Short: "Show an author",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			au := a.authors.Get(cmd.Context(), args[0])
			if au == nil {
				return fmt.Errorf("author %s not found", args[0])
			}
			return a.render(au, func(w io.Writer) {
				fmt.Fprintf(w, "Name:\t%s\n", au.Name)
				fmt.Fprintf(w, "Key:\t%s\n", au.Key)
				if au.PersonalName != "" && au.PersonalName != au.Name {
					fmt.Fprintf(w, "Personal name:\t%s\n", au.PersonalName)
				}
				fmt.Fprintf(w, "Born:\t%s\n", orDash(au.BirthDate))
				if au.DeathDate != "" {
					fmt.Fprintf(w, "Died:\t%s\n", au.DeathDate)
				}
				if len(au.AlternateNames) > 0 {
					fmt.Fprintf(w, "Also known as:\t%s\n", truncate(joinOr(au.AlternateNames, ""), 80))
				}
				fmt.Fprintf(w, "Works seen:\t%d\n", au.WorkCount)
				if photo := openlibrary.AuthorPhotoURL(au.Photos, openlibrary.Medium); photo != "" {
					fmt.Fprintf(w, "Photo:\t%s\n", photo)
				}
				if au.Bio != "" {
					fmt.Fprintf(w, "\n%s\n", au.Bio)
				}
			})
		},
	}
}

func newAuthorsBooksCmd(a *App) *cobra.Command {
	var pages, pageSize int
	cmd := &cobra.Command{
		Use:   "books <author-key>",
		Short: "List an author's books",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			size, err := a.pageSize(pageSize)
			if err != nil {
				return err
			}
			p := pager.New[entity.Book](size, func(ctx context.Context, offset, limit int) []entity.Book {
				return a.authors.Books(ctx, args[0], offset, limit)
			})
			return a.renderPage(loadPages(cmd.Context(), p, pages), "No books for author "+args[0])
		},
	}
	cmd.Flags().IntVar(&pages, "pages", 1, "number of pages to load")
	cmd.Flags().IntVar(&pageSize, "page-size", 0, "books per page (default from config)")
	return cmd
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
