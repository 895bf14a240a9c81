package apiclient

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"bookhub/internal/platform/metrics"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticToken string

func (s staticToken) Token() string { return string(s) }

type item struct {
	WorkKey string `json:"work_key" validate:"required"`
	Title   string `json:"title"`
}

func newTestClient(t *testing.T, h http.HandlerFunc, opts Options) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	opts.BaseURL = srv.URL
	if opts.Backoff == 0 {
		opts.Backoff = time.Millisecond
	}
	if opts.RPS == 0 {
		opts.RPS = 1000
	}
	return New(opts)
}

func TestClient_GetDecodesAndValidates(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/books/", r.URL.Path)
		assert.Equal(t, "12", r.URL.Query().Get("limit"))
		_, _ = io.WriteString(w, `[{"work_key":"OL1W","title":"A"},{"work_key":"OL2W","title":"B"}]`)
	}, Options{})

	var out []item
	err := c.Get(context.Background(), "/books/", map[string][]string{"limit": {"12"}}, &out)

	require.NoError(t, err)
	assert.Len(t, out, 2)
	assert.Equal(t, "OL2W", out[1].WorkKey)
}

func TestClient_MalformedPayload(t *testing.T) {
	t.Run("schema violation", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, `[{"title":"missing key"}]`)
		}, Options{})

		var out []item
		err := c.Get(context.Background(), "/books/", nil, &out)
		assert.ErrorIs(t, err, ErrMalformedResponse)
	})

	t.Run("not json", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, `<html>`)
		}, Options{})

		var out []item
		err := c.Get(context.Background(), "/books/", nil, &out)
		assert.ErrorIs(t, err, ErrMalformedResponse)
	})
}

func TestClient_ErrorBodies(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantDetail string
		wantField  string
	}{
		{name: "detail string", status: 404, body: `{"detail":"Book not found"}`, wantDetail: "Book not found"},
		{name: "plain text", status: 400, body: "bad things", wantDetail: "bad things"},
		{name: "empty body", status: 403, body: "", wantDetail: "HTTP error 403"},
		{
			name:       "validation list",
			status:     422,
			body:       `{"detail":[{"loc":["body","password"],"msg":"too short","type":"string_too_short"}]}`,
			wantDetail: "body.password: too short",
			wantField:  "password",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}, Options{})

			err := c.Do(context.Background(), Request{Method: http.MethodPost, Path: "/x"}, nil)

			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.Status)
			assert.Equal(t, tt.wantDetail, apiErr.Error())
			if tt.wantField != "" {
				assert.True(t, apiErr.HasField(tt.wantField))
			}
		})
	}
}

func TestClient_AuthRequiredWithoutToken(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}, Options{Tokens: staticToken("")})

	err := c.Do(context.Background(), Request{Method: http.MethodPost, Path: "/rating/OL1W", Auth: true}, nil)

	assert.ErrorIs(t, err, ErrAuthRequired)
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
}

func TestClient_UnauthorizedHook(t *testing.T) {
	t.Run("fires when a token was sent", func(t *testing.T) {
		fired := false
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
			w.WriteHeader(http.StatusUnauthorized)
		}, Options{Tokens: staticToken("tok"), OnUnauthorized: func() { fired = true }})

		err := c.Get(context.Background(), "/favourite/favorites", nil, nil)
		assert.Equal(t, http.StatusUnauthorized, StatusOf(err))
		assert.True(t, fired)
	})

	t.Run("silent for anonymous requests", func(t *testing.T) {
		fired := false
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}, Options{Tokens: staticToken(""), OnUnauthorized: func() { fired = true }})

		_ = c.Get(context.Background(), "/comment/OL1W", nil, nil)
		assert.False(t, fired)
	})
}

func TestClient_RetriesReadsOnServerError(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = io.WriteString(w, `[]`)
	}, Options{MaxRetries: 3})

	var out []item
	err := c.Get(context.Background(), "/books/", nil, &out)

	require.NoError(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestClient_DoesNotRetryWrites(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	}, Options{MaxRetries: 3})

	err := c.Do(context.Background(), Request{Method: http.MethodPost, Path: "/comment/OL1W", JSON: map[string]string{"content": "x"}}, nil)

	assert.Equal(t, http.StatusBadGateway, StatusOf(err))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestClient_BreakerOpensAfterFailures(t *testing.T) {
	var calls int32
	m := metrics.New()
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}, Options{BreakerFailures: 2, BreakerTimeout: time.Minute, Metrics: m})

	for i := 0; i < 4; i++ {
		_ = c.Get(context.Background(), "/books/", nil, nil)
	}

	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.BreakerRejected))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.APIRequests.WithLabelValues("GET", "500")))
}

func TestClient_ClientErrorsDoNotTripBreaker(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	}, Options{BreakerFailures: 1})

	for i := 0; i < 3; i++ {
		_ = c.Get(context.Background(), "/books/OL999W", nil, nil)
	}
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestClient_FormAndJSONBodies(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/authentication/signin":
			assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
			require.NoError(t, r.ParseForm())
			assert.Equal(t, "alice", r.PostForm.Get("username"))
			_, _ = io.WriteString(w, `{"access_token":"t"}`)
		case "/comment/OL1W":
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			b, _ := io.ReadAll(r.Body)
			assert.JSONEq(t, `{"content":"hi"}`, string(b))
			_, _ = io.WriteString(w, `{"message":"ok"}`)
		}
	}, Options{})

	var tok struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, c.Do(context.Background(), Request{
		Method: http.MethodPost, Path: "/authentication/signin",
		Form: map[string][]string{"username": {"alice"}, "password": {"pw"}},
	}, &tok))
	assert.Equal(t, "t", tok.AccessToken)

	require.NoError(t, c.Do(context.Background(), Request{
		Method: http.MethodPost, Path: "/comment/OL1W", JSON: map[string]string{"content": "hi"},
	}, nil))
}
