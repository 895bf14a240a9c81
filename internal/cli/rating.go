package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func newRatingCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rating",
		Short: "Read and submit star ratings",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show <work-key>",
		Short: "Show the rating summary of a book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := a.ratings.Summary(cmd.Context(), args[0])
			return a.render(s, func(w io.Writer) {
				fmt.Fprintf(w, "Average:\t%.1f (%d ratings)\n", s.AverageScore, s.TotalRatings)
				for star := 5; star >= 1; star-- {
					n := s.Count(star)
					fmt.Fprintf(w, "%d stars:\t%s %d\n", star, bar(n, s.TotalRatings), n)
				}
				if s.UserScore != nil {
					fmt.Fprintf(w, "Your score:\t%d\n", *s.UserScore)
				}
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "submit <work-key> <score>",
		Short: "Rate a book from 1 to 5",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			score, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("score %q is not a number", args[1])
			}
			if err := a.ratings.Submit(cmd.Context(), args[0], score); err != nil {
				return err
			}
			a.say("Rated %s %d/5", args[0], score)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <work-key>",
		Short: "Remove your rating of a book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.ratings.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			a.say("Rating of %s removed", args[0])
			return nil
		},
	})

	return cmd
}

// bar draws a 20-cell histogram bar for n of total.
func bar(n, total int) string {
	const width = 20
	filled := 0
	if total > 0 {
		filled = n * width / total
	}
	return strings.Repeat("#", filled) + strings.Repeat(".", width-filled)
}
