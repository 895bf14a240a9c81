package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"bookhub/internal/entity"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

const (
	formatTable = "table"
	formatJSON  = "json"
	formatYAML  = "yaml"
)

func validFormat(f string) bool {
	return f == formatTable || f == formatJSON || f == formatYAML
}

// render writes v as JSON or YAML, or calls table with an aligned writer.
func (a *App) render(v any, table func(w io.Writer)) error {
	switch a.Format {
	case formatJSON:
		b, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		_, err = fmt.Fprintln(a.Out, string(b))
		return err
	case formatYAML:
		enc := yaml.NewEncoder(a.Out)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	default:
		tw := tabwriter.NewWriter(a.Out, 0, 0, 2, ' ', 0)
		table(tw)
		return tw.Flush()
	}
}

// say prints a status line in table mode only.
func (a *App) say(format string, args ...any) {
	if a.Format == formatTable {
		fmt.Fprintf(a.Out, format+"\n", args...)
	}
}

func bookRows(w io.Writer, books []entity.Book) {
	fmt.Fprintln(w, "WORK KEY\tTITLE\tAUTHOR\tYEAR\tRATING")
	for _, b := range books {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", b.WorkKey, truncate(b.Title, 48), truncate(b.AuthorName(), 28), optInt(b.FirstPublishYear), stars(b.Rating))
	}
}

func optInt(v *int) string {
	if v == nil {
		return "-"
	}
	return strconv.Itoa(*v)
}

func stars(r float64) string {
	if r <= 0 {
		return "-"
	}
	return strconv.FormatFloat(r, 'f', 1, 64)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func joinOr(items []string, empty string) string {
	if len(items) == 0 {
		return empty
	}
	return strings.Join(items, ", ")
}
