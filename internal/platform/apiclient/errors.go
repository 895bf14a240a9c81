package apiclient

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
)

var (
	// ErrAuthRequired is returned before any I/O when a call needs a token and none is stored.
	ErrAuthRequired = errors.New("authentication required")
	// ErrMalformedResponse marks a 2xx payload that does not match the expected schema.
	ErrMalformedResponse = errors.New("malformed response")
)

// APIError is a non-2xx response from the remote API.
type APIError struct {
	Status int
	Detail string
	Fields []FieldError
}

// FieldError is one entry of a validation error list ({loc, msg, type}).
type FieldError struct {
	Loc  []string
	Msg  string
	Type string
}

func (e *APIError) Error() string {
	return e.Detail
}

// HasField reports whether a validation entry names field in its location.
func (e *APIError) HasField(field string) bool {
	for _, f := range e.Fields {
		for _, l := range f.Loc {
			if l == field {
				return true
			}
		}
	}
	return false
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

type errorBody struct {
	Detail json.RawMessage `json:"detail"`
}

type validationItem struct {
	Loc  []any  `json:"loc"`
	Msg  string `json:"msg"`
	Type string `json:"type"`
}

// parseError turns a failed response body into an APIError. It accepts
// {"detail": "..."}, {"detail": [{loc, msg, type}]} and plain text.
func parseError(status int, body []byte) *APIError {
	apiErr := &APIError{Status: status}
	text := strings.TrimSpace(string(body))

	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil && len(eb.Detail) > 0 {
		var detail string
		if err := json.Unmarshal(eb.Detail, &detail); err == nil {
			apiErr.Detail = detail
			return apiErr
		}
		var items []validationItem
		if err := json.Unmarshal(eb.Detail, &items); err == nil {
			parts := make([]string, 0, len(items))
			for _, it := range items {
				loc := make([]string, 0, len(it.Loc))
				for _, l := range it.Loc {
					loc = append(loc, fmt.Sprint(l))
				}
				apiErr.Fields = append(apiErr.Fields, FieldError{Loc: loc, Msg: it.Msg, Type: it.Type})
				parts = append(parts, strings.Join(loc, ".")+": "+it.Msg)
			}
			apiErr.Detail = strings.Join(parts, ", ")
			return apiErr
		}
	}

	if text != "" {
		apiErr.Detail = text
		return apiErr
	}
	apiErr.Detail = fmt.Sprintf("HTTP error %d", status)
	return apiErr
}
