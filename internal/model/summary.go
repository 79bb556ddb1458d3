package model

import (
	"time"

	"github.com/guregu/null/v6"
)

// Summary aggregates an AnalyzedTable for the console report.
type Summary struct {
	Symbol          string
	First           time.Time
	Last            time.Time
	Rows            int
	FirstClose      float64
	LastClose       float64
	TotalReturn     float64
	High            float64
	Low             float64
	Position        float64 // 0.0 ~ 1.0
	LatestMA        null.Float
	MeanDailyReturn null.Float
}
