package exchangerate

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLatestRates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v4/latest/AUD", r.URL.Path)
		_, _ = w.Write([]byte(`{"base":"AUD","rates":{"AUD":1,"USD":0.66,"EUR":0.61}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL+"/v4/latest", time.Second, zerolog.Nop())
	rates, err := client.LatestRates(context.Background(), "aud")
	require.NoError(t, err)
	assert.Equal(t, 0.66, rates["USD"])
	assert.Len(t, rates, 3)
}

func TestLatestRates_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second, zerolog.Nop())
	_, err := client.LatestRates(context.Background(), "AUD")
	assert.ErrorContains(t, err, "status 429")
}

func TestLatestRates_BadBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"result":"error"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second, zerolog.Nop())
	_, err := client.LatestRates(context.Background(), "AUD")
	assert.Error(t, err)
}

func TestNewClient_Defaults(t *testing.T) {
	client := NewClient("", 0, zerolog.Nop())
	assert.Equal(t, DefaultBaseURL, client.baseURL)
	assert.Equal(t, 10*time.Second, client.client.Timeout)
}
