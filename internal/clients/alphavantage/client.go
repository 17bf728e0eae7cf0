// Package alphavantage fetches latest equity quotes from Alpha Vantage.
package alphavantage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/aristath/networth/internal/domain"
	"github.com/rs/zerolog"
)

const (
	// DefaultBaseURL is the Alpha Vantage query endpoint
	DefaultBaseURL = "https://www.alphavantage.co/query"
	// dailyLimit is the free-tier request allowance
	dailyLimit = 25
)

// ErrRateLimitExceeded is returned once the daily allowance is used up
type ErrRateLimitExceeded struct{}

func (ErrRateLimitExceeded) Error() string {
	return "alpha vantage daily request limit exceeded"
}

// ErrMissingAPIKey is returned when no API key is configured
var ErrMissingAPIKey = errors.New("alpha vantage API key not configured")

// Client for the Alpha Vantage GLOBAL_QUOTE endpoint.
// Quotes are returned in USD.
type Client struct {
	apiKey  string
	baseURL string
	client  *http.Client
	log     zerolog.Logger

	mu           sync.Mutex
	requestsUsed int
	counterDay   string
	now          func() time.Time
}

// NewClient creates a new Alpha Vantage client
func NewClient(apiKey string, log zerolog.Logger) *Client {
	return &Client{
		apiKey:  strings.TrimSpace(apiKey),
		baseURL: DefaultBaseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
		log:     log.With().Str("client", "alphavantage").Logger(),
		now:     time.Now,
	}
}

// WithBaseURL points the client at another endpoint
func (c *Client) WithBaseURL(baseURL string) *Client {
	if baseURL != "" {
		c.baseURL = baseURL
	}
	return c
}

// WithTimeout overrides the HTTP timeout
func (c *Client) WithTimeout(timeout time.Duration) *Client {
	if timeout > 0 {
		c.client.Timeout = timeout
	}
	return c
}

// GetRemainingRequests returns how many requests are left today
func (c *Client) GetRemainingRequests() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rollDay()
	return dailyLimit - c.requestsUsed
}

func (c *Client) checkRateLimit() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rollDay()
	if c.requestsUsed >= dailyLimit {
		return ErrRateLimitExceeded{}
	}
	c.requestsUsed++
	return nil
}

// rollDay resets the counter when the UTC day changes. Caller holds mu.
func (c *Client) rollDay() {
	day := c.now().UTC().Format(time.DateOnly)
	if day != c.counterDay {
		c.counterDay = day
		c.requestsUsed = 0
	}
}

// LatestQuote fetches the latest price of symbol.
// A response without a price yields *domain.PriceNotFoundError.
func (c *Client) LatestQuote(ctx context.Context, symbol string) (*domain.Quote, error) {
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if err := c.checkRateLimit(); err != nil {
		return nil, err
	}

	params := url.Values{
		"function": {"GLOBAL_QUOTE"},
		"symbol":   {symbol},
		"apikey":   {c.apiKey},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API returned status %d", resp.StatusCode)
	}

	var raw map[string]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	// Throttling is reported in-band with a 200 status
	for _, key := range []string{"Note", "Information"} {
		if msg, ok := raw[key]; ok {
			return nil, fmt.Errorf("alpha vantage refused request: %s", strings.Trim(string(msg), `"`))
		}
	}

	var quote map[string]string
	if gq, ok := raw["Global Quote"]; ok {
		if err := json.Unmarshal(gq, &quote); err != nil {
			return nil, fmt.Errorf("failed to parse quote: %w", err)
		}
	}

	priceText, ok := quote["05. price"]
	if !ok || strings.TrimSpace(priceText) == "" {
		return nil, &domain.PriceNotFoundError{Symbol: symbol}
	}
	price, err := strconv.ParseFloat(strings.TrimSpace(priceText), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid price %q for %s: %w", priceText, symbol, err)
	}

	c.log.Debug().Str("symbol", symbol).Float64("price", price).Msg("Fetched quote")
	return &domain.Quote{Symbol: symbol, Price: price, Currency: "USD"}, nil
}
