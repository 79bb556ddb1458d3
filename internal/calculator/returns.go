package calculator

import "github.com/guregu/null/v6"

// DailyReturn returns the fractional change of each close versus the previous one.
// Row 0 is null, as is any row whose previous close is zero.
func DailyReturn(closes []float64) []null.Float {
	out := make([]null.Float, len(closes))
	for i := 1; i < len(closes); i++ {
		prev := closes[i-1]
		if prev == 0 {
			continue
		}
		out[i] = null.FloatFrom((closes[i] - prev) / prev)
	}
	return out
}
