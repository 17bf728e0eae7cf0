package services

import (
	"context"
	"time"

	"github.com/aristath/networth/internal/modules/settings"
)

// RefreshItem is one successful lookup of a refresh batch
type RefreshItem struct {
	Key   string  `json:"key"`
	Value float64 `json:"value"`
}

// RefreshFailure is one failed lookup of a refresh batch
type RefreshFailure struct {
	Key     string `json:"key"`
	Message string `json:"error"`
	Err     error  `json:"-"`
}

// RefreshResult reports the outcome of a refresh batch. Per-item failures
// land in Failed; they never abort the batch.
type RefreshResult struct {
	Succeeded []RefreshItem    `json:"succeeded"`
	Failed    []RefreshFailure `json:"failed"`
}

func (r *RefreshResult) succeed(key string, value float64) {
	r.Succeeded = append(r.Succeeded, RefreshItem{Key: key, Value: value})
}

func (r *RefreshResult) fail(key string, err error) {
	r.Failed = append(r.Failed, RefreshFailure{Key: key, Message: err.Error(), Err: err})
}

// sleepFunc pauses between upstream calls. Tests swap it for a recorder.
type sleepFunc func(time.Duration)

const defaultMaxQuoteAge = 24 * time.Hour

// staleness returns the cache window, 24h unless settings override it
func staleness(ctx context.Context, src *settings.Repository) time.Duration {
	if src == nil {
		return defaultMaxQuoteAge
	}
	age, err := src.MaxQuoteAge(ctx)
	if err != nil || age <= 0 {
		return defaultMaxQuoteAge
	}
	return age
}
