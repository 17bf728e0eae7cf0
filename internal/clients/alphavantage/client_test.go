package alphavantage

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aristath/networth/internal/domain"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "GLOBAL_QUOTE", r.URL.Query().Get("function"))
		assert.Equal(t, "test-key", r.URL.Query().Get("apikey"))
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

// TestNewClient tests client creation.
func TestNewClient(t *testing.T) {
	client := NewClient("test-key", zerolog.Nop())

	assert.NotNil(t, client)
	assert.Equal(t, "test-key", client.apiKey)
	assert.Equal(t, 25, client.GetRemainingRequests())
}

// TestRateLimiting tests the rate limiting functionality.
func TestRateLimiting(t *testing.T) {
	client := NewClient("test-key", zerolog.Nop())

	for i := 0; i < 25; i++ {
		assert.Equal(t, 25-i, client.GetRemainingRequests())
		require.NoError(t, client.checkRateLimit())
	}

	err := client.checkRateLimit()
	assert.Error(t, err)
	assert.IsType(t, ErrRateLimitExceeded{}, err)
}

// TestRemainingRequests tests the allowance countdown.
func TestRemainingRequests(t *testing.T) {
	client := NewClient("test-key", zerolog.Nop())

	for i := 0; i < 10; i++ {
		_ = client.checkRateLimit()
	}
	assert.Equal(t, 15, client.GetRemainingRequests())
}

func TestCounterRollsOverAtMidnight(t *testing.T) {
	client := NewClient("test-key", zerolog.Nop())
	now := time.Date(2024, 6, 1, 23, 0, 0, 0, time.UTC)
	client.now = func() time.Time { return now }

	for i := 0; i < 25; i++ {
		require.NoError(t, client.checkRateLimit())
	}
	now = now.Add(2 * time.Hour)
	assert.NoError(t, client.checkRateLimit())
}

func TestLatestQuote(t *testing.T) {
	server := newTestServer(t, `{"Global Quote":{"01. symbol":"VTI","05. price":"251.3400","07. latest trading day":"2024-05-31"}}`)
	client := NewClient("test-key", zerolog.Nop()).WithBaseURL(server.URL)

	quote, err := client.LatestQuote(context.Background(), "VTI")
	require.NoError(t, err)
	assert.Equal(t, 251.34, quote.Price)
	assert.Equal(t, "USD", quote.Currency)
}

func TestLatestQuote_NoPrice(t *testing.T) {
	server := newTestServer(t, `{"Global Quote":{}}`)
	client := NewClient("test-key", zerolog.Nop()).WithBaseURL(server.URL)

	_, err := client.LatestQuote(context.Background(), "NOPE")

	var notFound *domain.PriceNotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, "NOPE", notFound.Symbol)
}

func TestLatestQuote_Throttled(t *testing.T) {
	server := newTestServer(t, `{"Note":"Thank you for using Alpha Vantage! Our standard API rate limit is 25 requests per day."}`)
	client := NewClient("test-key", zerolog.Nop()).WithBaseURL(server.URL)

	_, err := client.LatestQuote(context.Background(), "VTI")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "refused")

	var notFound *domain.PriceNotFoundError
	assert.False(t, errors.As(err, &notFound))
}

func TestLatestQuote_MissingKey(t *testing.T) {
	client := NewClient("", zerolog.Nop())
	_, err := client.LatestQuote(context.Background(), "VTI")
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}
