package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"bookhub/internal/book"
	"bookhub/internal/entity"
	"bookhub/internal/pager"
	"bookhub/internal/platform/openlibrary"

	"github.com/spf13/cobra"
)

// bookPage is what a paged listing renders: every item loaded so far.
type bookPage struct {
	Books   []entity.Book `json:"books" yaml:"books"`
	Page    int           `json:"page" yaml:"page"`
	HasMore bool          `json:"has_more" yaml:"has_more"`
}

// loadPages fetches the first page and then up to pages-1 more.
func loadPages(ctx context.Context, p *pager.Pager[entity.Book], pages int) bookPage {
	p.LoadInitial(ctx)
	for i := 1; i < pages && p.HasMore(); i++ {
		p.LoadMore(ctx)
	}
	return bookPage{Books: p.Items(), Page: p.Page(), HasMore: p.HasMore()}
}

func (a *App) renderPage(res bookPage, empty string) error {
	return a.render(res, func(w io.Writer) {
		if len(res.Books) == 0 {
			fmt.Fprintln(w, empty)
			return
		}
		bookRows(w, res.Books)
		fmt.Fprintf(w, "\n%d books, page %d", len(res.Books), res.Page)
		if res.HasMore {
			fmt.Fprintf(w, ", more available (--pages %d)", res.Page+1)
		}
		fmt.Fprintln(w)
	})
}

func newBooksCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "books",
		Short: "Browse the book catalog",
	}
	cmd.AddCommand(newBooksListCmd(a))
	cmd.AddCommand(newBooksShowCmd(a))
	cmd.AddCommand(newBooksFeaturedCmd(a))
	return cmd
}

func newBooksListCmd(a *App) *cobra.Command {
	var q book.Query
	var pages, pageSize int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List books page by page",
		Long: `List books from the catalog.

Examples:
  bookhub books list                          # first page
  bookhub books list --pages 3                # first three pages
  bookhub books list --search dune            # title search
  bookhub books list --order-by views --order desc`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			size, err := a.pageSize(pageSize)
			if err != nil {
				return err
			}
			first := q
			first.Limit = size
			if err := first.Validate(); err != nil {
				return fmt.Errorf("invalid listing options: %w", err)
			}
			p := pager.New[entity.Book](size, func(ctx context.Context, offset, limit int) []entity.Book {
				page := q
				page.Offset, page.Limit = offset, limit
				return a.books.List(ctx, page)
			})
			return a.renderPage(loadPages(cmd.Context(), p, pages), "No books found")
		},
	}
	cmd.Flags().StringVarP(&q.Search, "search", "s", "", "filter by title")
	cmd.Flags().StringVar(&q.OrderBy, "order-by", "", "sort field: title, views, rating, first_publish_year, created_at")
	cmd.Flags().StringVar(&q.Order, "order", "", "sort direction: asc or desc")
	cmd.Flags().IntVar(&pages, "pages", 1, "number of pages to load")
	cmd.Flags().IntVar(&pageSize, "page-size", 0, "books per page (default from config)")
	return cmd
}

func newBooksShowCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <work-key>",
		Short: "Show a book with all its details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b := a.books.Get(cmd.Context(), args[0])
			if b == nil {
				return fmt.Errorf("book %s not found", args[0])
			}
			return a.render(b, func(w io.Writer) {
				fmt.Fprintf(w, "Title:\t%s\n", b.Title)
				fmt.Fprintf(w, "Author:\t%s\n", b.AuthorName())
				fmt.Fprintf(w, "Work key:\t%s\n", b.WorkKey)
				fmt.Fprintf(w, "First published:\t%s\n", optInt(b.FirstPublishYear))
				fmt.Fprintf(w, "Pages:\t%s\n", optInt(b.NumberOfPages))
				fmt.Fprintf(w, "Publishers:\t%s\n", joinOr(b.Publishers, "-"))
				fmt.Fprintf(w, "ISBN:\t%s\n", joinOr(b.ISBN, "-"))
				fmt.Fprintf(w, "Subjects:\t%s\n", truncate(joinOr(b.Subjects, "-"), 80))
				fmt.Fprintf(w, "Views:\t%d\n", b.Views)
				if cover := openlibrary.CoverURL(b.CoverID, openlibrary.Large); cover != "" {
					fmt.Fprintf(w, "Cover:\t%s\n", cover)
				}
				if d := strings.TrimSpace(b.Description); d != "" {
					fmt.Fprintf(w, "\n%s\n", d)
				}
			})
		},
	}
}

func newBooksFeaturedCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "featured",
		Short: "Show the most viewed books with their ratings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			books := a.books.Featured(cmd.Context())
			return a.render(books, func(w io.Writer) {
				if len(books) == 0 {
					fmt.Fprintln(w, "No featured books")
					return
				}
				bookRows(w, books)
			})
		},
	}
}

func newCategoriesCmd(a *App) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "List subjects seen in the catalog with their book counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cats := a.books.Categories(cmd.Context())
			if limit > 0 && limit < len(cats) {
				cats = cats[:limit]
			}
			return a.render(cats, func(w io.Writer) {
				if len(cats) == 0 {
					fmt.Fprintln(w, "No categories")
					return
				}
				fmt.Fprintln(w, "CATEGORY\tBOOKS")
				for _, c := range cats {
					fmt.Fprintf(w, "%s\t%d\n", c.Name, c.BookCount)
				}
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "show at most n categories")
	return cmd
}

func newSubjectsCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "subjects",
		Short: "Browse books by subject",
	}
	var pages, pageSize int
	books := &cobra.Command{
		Use:   "books <subject>",
		Short: "List books filed under a subject",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			size, err := a.pageSize(pageSize)
			if err != nil {
				return err
			}
			p := pager.New[entity.Book](size, func(ctx context.Context, offset, limit int) []entity.Book {
				return a.subjects.Books(ctx, args[0], offset, limit)
			})
			return a.renderPage(loadPages(cmd.Context(), p, pages), "No books for subject "+args[0])
		},
	}
	books.Flags().IntVar(&pages, "pages", 1, "number of pages to load")
	books.Flags().IntVar(&pageSize, "page-size", 0, "books per page (default from config)")
	cmd.AddCommand(books)
	return cmd
}
