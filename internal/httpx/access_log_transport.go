package httpx

import (
	"net/http"
	"time"

	"bookhub/internal/platform/logging"
)

// AccessLogTransport logs one debug line per remote call.
type AccessLogTransport struct {
	Next http.RoundTripper
}

func (t *AccessLogTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := next(t.Next).RoundTrip(r)
	duration := time.Since(start)

	ev := logging.Debug().
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Int64("duration_ms", duration.Milliseconds()).
		Str("request_id", RequestIDFrom(r))
	if err != nil {
		ev.Err(err).Msg("access")
		return nil, err
	}
	ev.Int("status", resp.StatusCode).Msg("access")
	return resp, nil
}
