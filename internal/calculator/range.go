package calculator

import (
	"errors"
	"math"

	"github.com/guregu/null/v6"

	"StockScope/internal/model"
)

// CalculateRange scans all bars and returns the highest high and lowest low.
func CalculateRange(bars []model.OHLCV) (high, low float64, err error) {
	if len(bars) == 0 {
		return 0, 0, errors.New("no bars provided")
	}
	high = math.Inf(-1)
	low = math.Inf(1)
	for _, b := range bars {
		if b.High > high {
			high = b.High
		}
		if b.Low < low {
			low = b.Low
		}
	}
	return high, low, nil
}

// CalculateRangePosition returns where the current price sits within [low, high] (0.0~1.0).
func CalculateRangePosition(current, high, low float64) (float64, error) {
	if high == low {
		return 0.5, nil
	}
	if high < low {
		return 0, errors.New("high must be >= low")
	}
	pos := (current - low) / (high - low)
	if pos < 0 {
		pos = 0
	}
	if pos > 1 {
		pos = 1
	}
	return pos, nil
}

// Summarize aggregates an analyzed table into period statistics.
func Summarize(table *model.AnalyzedTable) (*model.Summary, error) {
	n := len(table.Rows)
	if n == 0 {
		return nil, errors.New("empty table")
	}

	bars := make([]model.OHLCV, n)
	for i, r := range table.Rows {
		bars[i] = r.OHLCV
	}
	high, low, err := CalculateRange(bars)
	if err != nil {
		return nil, err
	}

	first, last := table.Rows[0], table.Rows[n-1]
	pos, err := CalculateRangePosition(last.Close, high, low)
	if err != nil {
		return nil, err
	}

	s := &model.Summary{
		Symbol:     table.Symbol,
		First:      first.Time,
		Last:       last.Time,
		Rows:       n,
		FirstClose: first.Close,
		LastClose:  last.Close,
		High:       high,
		Low:        low,
		Position:   pos,
	}
	if first.Close != 0 {
		s.TotalReturn = (last.Close - first.Close) / first.Close
	}

	for i := n - 1; i >= 0; i-- {
		if table.Rows[i].MovingAverage.Valid {
			s.LatestMA = table.Rows[i].MovingAverage
			break
		}
	}

	var sum float64
	var count int
	for _, r := range table.Rows {
		if r.DailyReturn.Valid {
			sum += r.DailyReturn.Float64
			count++
		}
	}
	if count > 0 {
		s.MeanDailyReturn = null.FloatFrom(sum / float64(count))
	}
	return s, nil
}
