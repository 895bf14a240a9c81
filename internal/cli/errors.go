package cli

import (
	"errors"
	"fmt"
	"net/http"

	"bookhub/internal/platform/apiclient"
)

// describe turns a command error into the message printed after "Error:".
func (a *App) describe(err error) string {
	switch {
	case errors.Is(err, apiclient.ErrAuthRequired):
		return "not logged in; run 'bookhub login <username>' first"
	case a.sessionEnded.Load() && apiclient.StatusOf(err) == http.StatusUnauthorized:
		return fmt.Sprintf("%v; your session has ended, run 'bookhub login <username>' again", err)
	}
	return err.Error()
}
