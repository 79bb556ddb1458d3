package calculator

import (
	"fmt"

	"StockScope/internal/model"
)

// Augment attaches the moving average and daily return to a copy of the table's bars.
// The input table is not modified.
func Augment(table *model.PriceTable, window int) (*model.AnalyzedTable, error) {
	closes := table.Closes()

	ma, err := MovingAverage(closes, window)
	if err != nil {
		return nil, fmt.Errorf("moving average: %w", err)
	}
	ret := DailyReturn(closes)

	rows := make([]model.Row, len(table.Bars))
	for i, b := range table.Bars {
		rows[i] = model.Row{
			OHLCV:         b,
			MovingAverage: ma[i],
			DailyReturn:   ret[i],
		}
	}

	return &model.AnalyzedTable{
		Symbol:    table.Symbol,
		Window:    window,
		Start:     table.Start,
		End:       table.End,
		Rows:      rows,
		FetchedAt: table.FetchedAt,
	}, nil
}
