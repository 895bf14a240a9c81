package httpx

import (
	"context"
	"net/http"
)

type contextKey string

const (
	requestIDKey contextKey = "requestID"
	anonymousKey contextKey = "anonymous"
)

// RequestIDFrom retrieves the outgoing request ID from the request context.
func RequestIDFrom(r *http.Request) string {
	if v, ok := r.Context().Value(requestIDKey).(string); ok {
		return v
	}
	return ""
}

// ContextWithRequestID pins the request ID used for the next outgoing call.
func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// Anonymous marks a context so AuthTransport leaves the Authorization header off.
func Anonymous(ctx context.Context) context.Context {
	return context.WithValue(ctx, anonymousKey, true)
}

func isAnonymous(r *http.Request) bool {
	v, _ := r.Context().Value(anonymousKey).(bool)
	return v
}
