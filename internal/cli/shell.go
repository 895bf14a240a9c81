package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

func newShellCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Run commands interactively on one session",
		Long: `Read commands line by line and run them on the same session, so the
book cache, derived categories and authors, and comment vote state carry
over between commands. Type 'exit' or 'quit', or send EOF, to leave.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.inShell {
				return errors.New("already in a shell")
			}
			a.inShell = true
			defer func() { a.inShell = false }()

			format := a.Format
			in := a.lines()
			for {
				fmt.Fprint(a.Err, "bookhub> ")
				line, err := in.ReadString('\n')
				if err != nil && !errors.Is(err, io.EOF) {
					return fmt.Errorf("read command: %w", err)
				}
				eof := err != nil

				fields, perr := splitArgs(line)
				switch {
				case perr != nil:
					fmt.Fprintln(a.Err, "Error:", perr)
				case len(fields) == 0:
				case fields[0] == "exit" || fields[0] == "quit":
					return nil
				default:
					if rerr := a.run(cmd.Context(), fields); rerr != nil {
						fmt.Fprintln(a.Err, "Error:", a.describe(rerr))
					}
					a.Format = format
				}
				if eof {
					fmt.Fprintln(a.Err)
					return nil
				}
			}
		},
	}
}

// splitArgs splits a command line on whitespace. Single and double quotes
// group words; a backslash escapes the next character outside single quotes.
func splitArgs(line string) ([]string, error) {
	var (
		args    []string
		cur     strings.Builder
		inWord  bool
		quote   rune
		escaped bool
	)
	for _, r := range line {
		switch {
		case escaped:
			cur.WriteRune(r)
			escaped = false
		case r == '\\' && quote != '\'':
			escaped = true
			inWord = true
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				cur.WriteRune(r)
			}
		case r == '\'' || r == '"':
			quote = r
			inWord = true
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			if inWord {
				args = append(args, cur.String())
				cur.Reset()
				inWord = false
			}
		default:
			cur.WriteRune(r)
			inWord = true
		}
	}
	if quote != 0 {
		return nil, fmt.Errorf("unterminated %c quote", quote)
	}
	if escaped {
		return nil, errors.New("trailing backslash")
	}
	if inWord {
		args = append(args, cur.String())
	}
	return args, nil
}
