package services

import (
	"context"
)

// rateGetter is satisfied by RateCache
type rateGetter interface {
	GetRate(ctx context.Context, from, to string) (float64, error)
}

// CurrencyConverter converts amounts with cached exchange rates
type CurrencyConverter struct {
	rates rateGetter
}

// NewCurrencyConverter creates a new currency converter
func NewCurrencyConverter(rates rateGetter) *CurrencyConverter {
	return &CurrencyConverter{rates: rates}
}

// Convert returns amount×rate(from, to). No rounding is applied.
func (c *CurrencyConverter) Convert(ctx context.Context, amount float64, from, to string) (float64, error) {
	rate, err := c.rates.GetRate(ctx, from, to)
	if err != nil {
		return 0, err
	}
	return amount * rate, nil
}
