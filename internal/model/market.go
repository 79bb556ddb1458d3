package model

import (
	"time"

	"github.com/guregu/null/v6"
)

// OHLCV represents a single daily bar. Time is the trading date at UTC midnight.
type OHLCV struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// PriceTable holds the raw bars for one symbol over [Start, End), ascending by date.
type PriceTable struct {
	Symbol    string
	Start     time.Time
	End       time.Time
	Bars      []OHLCV
	FetchedAt time.Time
}

// Closes returns the closing prices in table order.
func (t *PriceTable) Closes() []float64 {
	closes := make([]float64, len(t.Bars))
	for i, b := range t.Bars {
		closes[i] = b.Close
	}
	return closes
}

// Row is a bar with its derived columns attached.
type Row struct {
	OHLCV
	MovingAverage null.Float
	DailyReturn   null.Float
}

// AnalyzedTable is a PriceTable augmented with the moving average and daily return.
type AnalyzedTable struct {
	Symbol    string
	Window    int
	Start     time.Time
	End       time.Time
	Rows      []Row
	FetchedAt time.Time
}

// Head returns at most the first n rows.
func (a *AnalyzedTable) Head(n int) []Row {
	if n < 0 {
		n = 0
	}
	if n > len(a.Rows) {
		n = len(a.Rows)
	}
	return a.Rows[:n]
}
