package httpx

import (
	"net/http"

	"github.com/google/uuid"
)

const RequestIDHeader = "X-Request-Id"

// RequestIDTransport stamps every outgoing request with an X-Request-Id.
type RequestIDTransport struct {
	Next http.RoundTripper
}

func (t *RequestIDTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	requestID := RequestIDFrom(r)
	if requestID == "" {
		requestID = uuid.New().String()
	}
	r = r.Clone(ContextWithRequestID(r.Context(), requestID))
	r.Header.Set(RequestIDHeader, requestID)
	return next(t.Next).RoundTrip(r)
}

func next(rt http.RoundTripper) http.RoundTripper {
	if rt == nil {
		return http.DefaultTransport
	}
	return rt
}
