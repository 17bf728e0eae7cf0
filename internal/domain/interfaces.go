package domain

import "context"

// RateSource returns the latest conversion rates for a base currency.
// The map is keyed by target currency code.
type RateSource interface {
	LatestRates(ctx context.Context, base string) (map[string]float64, error)
}

// Quote is a single latest price returned by a QuoteSource.
type Quote struct {
	Symbol   string
	Price    float64
	Currency string
}

// QuoteSource returns the latest price for one ticker.
// Implementations return *PriceNotFoundError when the response carries no price.
type QuoteSource interface {
	LatestQuote(ctx context.Context, symbol string) (*Quote, error)
}

// CurrencyConverter converts amounts between currency codes.
type CurrencyConverter interface {
	Convert(ctx context.Context, amount float64, from, to string) (float64, error)
}

// TextGenerator produces natural-language text from a prompt.
type TextGenerator interface {
	Generate(ctx context.Context, instruction, prompt string) (string, error)
}
