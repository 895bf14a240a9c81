package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func newStatsCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show session cache sizes and client metrics",
		Long: `Show what this session has cached and how the API client has behaved.

Most useful from 'bookhub shell', where the cache lives across commands.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st := a.cache.Stats()
			if err := a.render(st, func(w io.Writer) {
				fmt.Fprintf(w, "Books cached:\t%d\n", st.Books)
				fmt.Fprintf(w, "Categories:\t%d\n", st.Categories)
				fmt.Fprintf(w, "Authors:\t%d\n", st.Authors)
			}); err != nil {
				return err
			}
			if a.Format != formatTable {
				return nil
			}
			fmt.Fprintln(a.Out)
			return a.metrics.WriteSummary(a.Out)
		},
	}
}
