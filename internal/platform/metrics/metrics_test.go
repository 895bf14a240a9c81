package metrics

import (
	"bytes"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheHit(t *testing.T) {
	c := New()
	c.CacheHit("books", true)
	c.CacheHit("books", false)
	c.CacheHit("books", false)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.CacheLookups.WithLabelValues("books", "hit")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.CacheLookups.WithLabelValues("books", "miss")))
}

func TestCacheHit_NilReceiver(t *testing.T) {
	var c *Collectors
	assert.NotPanics(t, func() { c.CacheHit("books", true) })
}

func TestWriteSummary(t *testing.T) {
	c := New()
	c.APIRequests.WithLabelValues("GET", "200").Add(3)
	c.BreakerState.Set(2)

	var buf bytes.Buffer
	require.NoError(t, c.WriteSummary(&buf))

	out := buf.String()
	assert.Contains(t, out, `bookhub_api_requests_total{method="GET",status="200"} 3`)
	assert.Contains(t, out, "bookhub_circuit_breaker_state 2")
}
