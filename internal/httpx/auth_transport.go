package httpx

import (
	"net/http"
)

// TokenSource yields the current bearer token or "" when anonymous.
type TokenSource interface {
	Token() string
}

// AuthTransport attaches "Authorization: Bearer <token>" when a token is present.
type AuthTransport struct {
	Tokens TokenSource
	Next   http.RoundTripper
}

func (t *AuthTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	if t.Tokens != nil && !isAnonymous(r) && r.Header.Get("Authorization") == "" {
		if token := t.Tokens.Token(); token != "" {
			r = r.Clone(r.Context())
			r.Header.Set("Authorization", "Bearer "+token)
		}
	}
	return next(t.Next).RoundTrip(r)
}

// Chain builds the standard client transport: request id, auth, access log.
func Chain(tokens TokenSource, base http.RoundTripper) http.RoundTripper {
	return &RequestIDTransport{
		Next: &AuthTransport{
			Tokens: tokens,
			Next:   &AccessLogTransport{Next: base},
		},
	}
}
