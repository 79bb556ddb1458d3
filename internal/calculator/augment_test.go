package calculator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockScope/internal/model"
)

func testTable(closes ...float64) *model.PriceTable {
	start := time.Date(2022, 1, 3, 0, 0, 0, 0, time.UTC)
	bars := make([]model.OHLCV, len(closes))
	for i, c := range closes {
		bars[i] = model.OHLCV{
			Time:   start.AddDate(0, 0, i),
			Open:   c - 1,
			High:   c + 2,
			Low:    c - 2,
			Close:  c,
			Volume: 1000 * float64(i+1),
		}
	}
	return &model.PriceTable{
		Symbol: "TEST",
		Start:  start,
		End:    start.AddDate(0, 0, len(closes)),
		Bars:   bars,
	}
}

func TestAugment(t *testing.T) {
	table := testTable(10, 20, 30, 40)

	out, err := Augment(table, 3)
	require.NoError(t, err)
	require.Len(t, out.Rows, 4)
	assert.Equal(t, "TEST", out.Symbol)
	assert.Equal(t, 3, out.Window)

	assert.False(t, out.Rows[0].MovingAverage.Valid)
	assert.False(t, out.Rows[1].MovingAverage.Valid)
	assert.InDelta(t, 20, out.Rows[2].MovingAverage.Float64, 1e-12)
	assert.InDelta(t, 30, out.Rows[3].MovingAverage.Float64, 1e-12)

	assert.False(t, out.Rows[0].DailyReturn.Valid)
	assert.InDelta(t, 1.0, out.Rows[1].DailyReturn.Float64, 1e-12)

	for i, r := range out.Rows {
		assert.Equal(t, table.Bars[i], r.OHLCV, "provider fields must be carried unchanged")
	}
}

func TestAugment_DoesNotMutateInput(t *testing.T) {
	table := testTable(100, 110, 99)
	before := append([]model.OHLCV(nil), table.Bars...)

	_, err := Augment(table, 2)
	require.NoError(t, err)
	assert.Equal(t, before, table.Bars)
}

func TestAugment_Idempotent(t *testing.T) {
	table := testTable(5, 6, 7, 6, 5, 8, 9)

	first, err := Augment(table, 3)
	require.NoError(t, err)
	second, err := Augment(table, 3)
	require.NoError(t, err)

	assert.Equal(t, first.Rows, second.Rows)
}

func TestAugment_InvalidWindow(t *testing.T) {
	_, err := Augment(testTable(1, 2), 0)
	assert.ErrorIs(t, err, ErrInvalidWindow)
}
