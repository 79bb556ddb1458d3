package collector

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"StockScope/internal/calculator"
	"StockScope/internal/model"
)

// Collector orchestrates data fetching and derived-column computation.
type Collector struct {
	Fetcher    Fetcher
	Window     int
	Retries    int
	RetryDelay time.Duration
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, window, retries int) *Collector {
	return &Collector{
		Fetcher:    fetcher,
		Window:     window,
		Retries:    retries,
		RetryDelay: time.Second,
	}
}

// Fetch downloads the price table for symbol over [start, end).
func (c *Collector) Fetch(ctx context.Context, symbol string, start, end time.Time) (*model.PriceTable, error) {
	start, end = tradingDay(start), tradingDay(end)
	if !end.After(start) {
		return nil, fmt.Errorf("%s %s..%s: %w", symbol, start.Format(time.DateOnly), end.Format(time.DateOnly), ErrEmptyRange)
	}

	bars, err := fetchWithRetry(ctx, c.Fetcher, symbol, start, end, c.Retries, c.RetryDelay)
	if err != nil {
		return nil, fmt.Errorf("fetch daily bars: %w", err)
	}
	bars = normalizeBars(bars, start, end)
	if len(bars) == 0 {
		return nil, fmt.Errorf("%s %s..%s: %w", symbol, start.Format(time.DateOnly), end.Format(time.DateOnly), ErrNoData)
	}

	zap.L().Info("fetched daily bars",
		zap.String("source", c.Fetcher.Name()),
		zap.String("symbol", symbol),
		zap.Int("rows", len(bars)))

	return &model.PriceTable{
		Symbol:    symbol,
		Start:     start,
		End:       end,
		Bars:      bars,
		FetchedAt: time.Now(),
	}, nil
}

// Collect fetches the price table and attaches the moving average and daily return.
func (c *Collector) Collect(ctx context.Context, symbol string, start, end time.Time) (*model.AnalyzedTable, error) {
	table, err := c.Fetch(ctx, symbol, start, end)
	if err != nil {
		return nil, err
	}
	analyzed, err := calculator.Augment(table, c.Window)
	if err != nil {
		return nil, fmt.Errorf("augment: %w", err)
	}
	if len(analyzed.Rows) < c.Window {
		zap.L().Warn("fewer rows than moving-average window, average is undefined",
			zap.Int("rows", len(analyzed.Rows)),
			zap.Int("window", c.Window))
	}
	return analyzed, nil
}
