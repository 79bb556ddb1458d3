package calculator

import (
	"errors"

	"github.com/guregu/null/v6"
)

// ErrInvalidWindow is returned when a moving-average window is not positive.
var ErrInvalidWindow = errors.New("window must be positive")

// CalculateSMA computes the simple moving average of the given prices over the specified period.
func CalculateSMA(prices []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, ErrInvalidWindow
	}
	if len(prices) < period {
		return 0, errors.New("not enough data for SMA calculation")
	}
	sum := 0.0
	for i := len(prices) - period; i < len(prices); i++ {
		sum += prices[i]
	}
	return sum / float64(period), nil
}

// MovingAverage returns the trailing simple moving average of closes, aligned to the input.
// Entry i averages closes[i-window+1..i]; the first window-1 entries are null.
// A series shorter than the window yields all nulls.
func MovingAverage(closes []float64, window int) ([]null.Float, error) {
	if window <= 0 {
		return nil, ErrInvalidWindow
	}
	out := make([]null.Float, len(closes))
	for i := window - 1; i < len(closes); i++ {
		ma, err := CalculateSMA(closes[:i+1], window)
		if err != nil {
			return nil, err
		}
		out[i] = null.FloatFrom(ma)
	}
	return out, nil
}
