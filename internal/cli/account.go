package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

// password returns the flag value, or prompts for one line on stdin.
func (a *App) password(flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	fmt.Fprint(a.Err, "Password: ")
	line, err := a.lines().ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func newLoginCmd(a *App) *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "login <username>",
		Short: "Sign in and store the access token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := a.password(password)
			if err != nil {
				return err
			}
			if _, err := a.auth.Login(cmd.Context(), args[0], pw); err != nil {
				return err
			}
			a.forgetThreads()
			a.say("Logged in as %s", strings.TrimSpace(args[0]))
			return nil
		},
	}
	cmd.Flags().StringVarP(&password, "password", "p", "", "password (prompted when omitted)")
	return cmd
}

func newRegisterCmd(a *App) *cobra.Command {
	var password string
	var login bool
	cmd := &cobra.Command{
		Use:   "register <username>",
		Short: "Create an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := a.password(password)
			if err != nil {
				return err
			}
			u, err := a.auth.Register(cmd.Context(), args[0], pw)
			if err != nil {
				return err
			}
			if !login {
				a.say("Account %s created. Run 'bookhub login %s' to sign in.", u.Username, u.Username)
				return nil
			}
			if _, err := a.auth.Login(cmd.Context(), args[0], pw); err != nil {
				return err
			}
			a.forgetThreads()
			a.say("Account %s created, logged in", u.Username)
			return nil
		},
	}
	cmd.Flags().StringVarP(&password, "password", "p", "", "password, at least 8 characters (prompted when omitted)")
	cmd.Flags().BoolVar(&login, "login", false, "sign in right after registering")
	return cmd
}

func newLogoutCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.auth.Logout(); err != nil {
				return err
			}
			a.forgetThreads()
			a.say("Logged out")
			return nil
		},
	}
}

type whoami struct {
	LoggedIn bool   `json:"logged_in" yaml:"logged_in"`
	Username string `json:"username,omitempty" yaml:"username,omitempty"`
}

func newWhoamiCmd(a *App) *cobra.Command {
	var verify bool
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if verify && a.auth.LoggedIn() && !a.auth.Verify(cmd.Context()) {
				return errors.New("the stored token was rejected; run 'bookhub login <username>' again")
			}
			res := whoami{}
			if u := a.auth.Profile(cmd.Context()); u != nil {
				res = whoami{LoggedIn: true, Username: u.Username}
			}
			return a.render(res, func(w io.Writer) {
				if !res.LoggedIn {
					fmt.Fprintln(w, "Not logged in")
					return
				}
				fmt.Fprintln(w, res.Username)
			})
		},
	}
	cmd.Flags().BoolVar(&verify, "verify", false, "ask the server whether the token is still valid")
	return cmd
}
