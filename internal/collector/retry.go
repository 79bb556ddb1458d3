package collector

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"StockScope/internal/model"
)

// fetchWithRetry calls the fetcher up to retries+1 times with exponential backoff.
// ErrSymbolNotFound, ErrEmptyRange and ErrNoData are returned immediately.
func fetchWithRetry(ctx context.Context, f Fetcher, symbol string, start, end time.Time, retries int, baseDelay time.Duration) ([]model.OHLCV, error) {
	if retries < 0 {
		retries = 0
	}
	var lastErr error
	for i := 0; i <= retries; i++ {
		bars, err := f.FetchDailyBars(ctx, symbol, start, end)
		if err == nil {
			return bars, nil
		}
		lastErr = err
		if errors.Is(err, ErrSymbolNotFound) || errors.Is(err, ErrEmptyRange) ||
			errors.Is(err, ErrNoData) || ctx.Err() != nil {
			return nil, err
		}
		if i == retries {
			break
		}
		backoff := baseDelay * time.Duration(1<<uint(i))
		zap.L().Warn("fetch failed, retrying",
			zap.String("source", f.Name()),
			zap.Int("attempt", i+1),
			zap.Int("max_attempts", retries+1),
			zap.Duration("backoff", backoff),
			zap.Error(err))
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}
	if retries == 0 {
		return nil, lastErr
	}
	return nil, fmt.Errorf("all %d attempts exhausted: %w", retries+1, lastErr)
}
