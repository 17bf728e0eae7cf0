package testing

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/aristath/networth/internal/domain"
)

// MockRateSource is a mock implementation of domain.RateSource for testing
type MockRateSource struct {
	mu    sync.Mutex
	rates map[string]map[string]float64 // base -> target -> rate
	errs  map[string]error
	calls map[string]int
}

// NewMockRateSource creates a new mock rate source
func NewMockRateSource() *MockRateSource {
	return &MockRateSource{
		rates: make(map[string]map[string]float64),
		errs:  make(map[string]error),
		calls: make(map[string]int),
	}
}

// SetRate sets the rate returned for base -> target
func (m *MockRateSource) SetRate(base, target string, rate float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.rates[base] == nil {
		m.rates[base] = make(map[string]float64)
	}
	m.rates[base][target] = rate
}

// SetError makes lookups for base fail with err
func (m *MockRateSource) SetError(base string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs[base] = err
}

// Calls returns how many times base was requested
func (m *MockRateSource) Calls(base string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[base]
}

// TotalCalls returns the number of requests across all bases
func (m *MockRateSource) TotalCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := 0
	for _, n := range m.calls {
		total += n
	}
	return total
}

// LatestRates returns a copy of the configured table for base
func (m *MockRateSource) LatestRates(_ context.Context, base string) (map[string]float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[base]++
	if err := m.errs[base]; err != nil {
		return nil, err
	}
	out := make(map[string]float64, len(m.rates[base]))
	for k, v := range m.rates[base] {
		out[k] = v
	}
	return out, nil
}

// MockQuoteSource is a mock implementation of domain.QuoteSource for testing
type MockQuoteSource struct {
	mu     sync.Mutex
	prices map[string]float64
	errs   map[string]error
	calls  map[string]int
}

// NewMockQuoteSource creates a new mock quote source
func NewMockQuoteSource() *MockQuoteSource {
	return &MockQuoteSource{
		prices: make(map[string]float64),
		errs:   make(map[string]error),
		calls:  make(map[string]int),
	}
}

// SetPrice sets the USD price returned for symbol
func (m *MockQuoteSource) SetPrice(symbol string, price float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prices[symbol] = price
}

// SetError makes lookups for symbol fail with err
func (m *MockQuoteSource) SetError(symbol string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs[symbol] = err
}

// Calls returns how many times symbol was requested
func (m *MockQuoteSource) Calls(symbol string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[symbol]
}

// LatestQuote returns the configured price, or *domain.PriceNotFoundError for unknown symbols
func (m *MockQuoteSource) LatestQuote(_ context.Context, symbol string) (*domain.Quote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[symbol]++
	if err := m.errs[symbol]; err != nil {
		return nil, err
	}
	price, ok := m.prices[symbol]
	if !ok {
		return nil, &domain.PriceNotFoundError{Symbol: symbol}
	}
	return &domain.Quote{Symbol: symbol, Price: price, Currency: "USD"}, nil
}

// MockTextGenerator is a mock implementation of domain.TextGenerator for testing
type MockTextGenerator struct {
	mu      sync.Mutex
	reply   string
	err     error
	prompts []string
}

// NewMockTextGenerator creates a generator that answers every prompt with reply
func NewMockTextGenerator(reply string) *MockTextGenerator {
	return &MockTextGenerator{reply: reply}
}

// SetError makes every call fail with err
func (m *MockTextGenerator) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Prompts returns every prompt received so far
func (m *MockTextGenerator) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.prompts...)
}

// Generate records the prompt and returns the configured reply
func (m *MockTextGenerator) Generate(_ context.Context, instruction, prompt string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prompts = append(m.prompts, prompt)
	if m.err != nil {
		return "", m.err
	}
	if strings.TrimSpace(instruction) == "" {
		return "", fmt.Errorf("empty instruction")
	}
	return m.reply, nil
}
