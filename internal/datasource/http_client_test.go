package datasource

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBreakerClient(t *testing.T, cooldown time.Duration) *RateLimitedHTTPClient {
	t.Helper()
	cfg := DefaultHTTPClientConfig()
	cfg.RateLimit = 10000
	cfg.MaxRetries = 0
	cfg.CircuitBreakerMax = 1
	cfg.CircuitBreakerCooldown = cooldown
	client := NewRateLimitedHTTPClient(cfg, nil)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

// deadServerURL returns the URL of a server that is already shut down,
// so every request to it fails at the connection level.
func deadServerURL(t *testing.T) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()
	return url
}

func TestCircuitBreakerClosesAfterCooldown(t *testing.T) {
	client := newBreakerClient(t, 50*time.Millisecond)
	dead := deadServerURL(t)

	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(good.Close)

	ctx := context.Background()

	_, err := client.Get(ctx, dead)
	require.Error(t, err, "request to a dead server must fail and open the circuit")

	// Within the cooldown every request is rejected without going out.
	_, err = client.Get(ctx, good.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "circuit breaker open")

	// After the cooldown a probe request is admitted and a success
	// closes the circuit again.
	time.Sleep(70 * time.Millisecond)
	resp, err := client.Get(ctx, good.URL)
	require.NoError(t, err, "probe after cooldown must reach the provider")
	_ = resp.Body.Close()

	resp, err = client.Get(ctx, good.URL)
	require.NoError(t, err, "circuit must stay closed after a successful probe")
	_ = resp.Body.Close()
}

func TestCircuitBreakerFailedProbeRestartsCooldown(t *testing.T) {
	client := newBreakerClient(t, 50*time.Millisecond)
	dead := deadServerURL(t)

	ctx := context.Background()

	_, err := client.Get(ctx, dead)
	require.Error(t, err)

	time.Sleep(70 * time.Millisecond)

	// The probe itself fails: a real network error, not the breaker.
	_, err = client.Get(ctx, dead)
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "circuit breaker open")

	// The failed probe restarted the cooldown.
	_, err = client.Get(ctx, dead)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "circuit breaker open")
}
