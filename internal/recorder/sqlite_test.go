package recorder

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/guregu/null/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockScope/internal/model"
)

func sampleSnapshot() *RunSnapshot {
	start := time.Date(2022, 1, 3, 0, 0, 0, 0, time.UTC)
	rows := []model.Row{
		{OHLCV: model.OHLCV{Time: start, Open: 1, High: 2, Low: 0.5, Close: 10, Volume: 100}},
		{OHLCV: model.OHLCV{Time: start.AddDate(0, 0, 1), Close: 11}, DailyReturn: null.FloatFrom(0.1)},
		{OHLCV: model.OHLCV{Time: start.AddDate(0, 0, 2), Close: 12},
			MovingAverage: null.FloatFrom(11), DailyReturn: null.FloatFrom(1.0 / 11)},
	}
	return &RunSnapshot{
		Source: "mock",
		RanAt:  time.Unix(1700000000, 0),
		Table: &model.AnalyzedTable{
			Symbol: "AAPL",
			Window: 3,
			Start:  start,
			End:    start.AddDate(0, 0, 3),
			Rows:   rows,
		},
		Summary: &model.Summary{FirstClose: 10, LastClose: 12, TotalReturn: 0.2, LatestMA: null.FloatFrom(11)},
	}
}

func TestSQLiteRecorder_RecordRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	rec, err := NewSQLiteRecorder(path)
	require.NoError(t, err)

	snap := sampleSnapshot()
	require.NoError(t, rec.RecordRun(snap))
	assert.NotEmpty(t, snap.RunID, "run id is assigned")
	require.NoError(t, rec.Close())

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	var symbol, startDate string
	var window, rowCount int
	var latestMA sql.NullFloat64
	require.NoError(t, db.QueryRow(`SELECT symbol, start_date, ma_window, row_count, latest_ma FROM runs WHERE run_id = ?`, snap.RunID).
		Scan(&symbol, &startDate, &window, &rowCount, &latestMA))
	assert.Equal(t, "AAPL", symbol)
	assert.Equal(t, "2022-01-03", startDate)
	assert.Equal(t, 3, window)
	assert.Equal(t, 3, rowCount)
	assert.Equal(t, sql.NullFloat64{Float64: 11, Valid: true}, latestMA)

	rows, err := db.Query(`SELECT date, moving_average, daily_return FROM run_rows WHERE run_id = ? ORDER BY date`, snap.RunID)
	require.NoError(t, err)
	defer rows.Close()

	var dates []string
	var mas, rets []null.Float
	for rows.Next() {
		var d string
		var ma, ret null.Float
		require.NoError(t, rows.Scan(&d, &ma, &ret))
		dates = append(dates, d)
		mas = append(mas, ma)
		rets = append(rets, ret)
	}
	require.NoError(t, rows.Err())

	assert.Equal(t, []string{"2022-01-03", "2022-01-04", "2022-01-05"}, dates)
	assert.False(t, mas[0].Valid)
	assert.False(t, rets[0].Valid)
	assert.True(t, mas[2].Valid)
	assert.InDelta(t, 0.1, rets[1].Float64, 1e-12)
}

func TestSQLiteRecorder_TwoRuns(t *testing.T) {
	rec, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	defer rec.Close()

	a, b := sampleSnapshot(), sampleSnapshot()
	require.NoError(t, rec.RecordRun(a))
	require.NoError(t, rec.RecordRun(b))
	assert.NotEqual(t, a.RunID, b.RunID)

	var n int
	require.NoError(t, rec.db.QueryRow(`SELECT COUNT(*) FROM run_rows`).Scan(&n))
	assert.Equal(t, 6, n)
}

func TestSQLiteRecorder_EmptySnapshot(t *testing.T) {
	rec, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	defer rec.Close()

	assert.Error(t, rec.RecordRun(&RunSnapshot{}))
}

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NewNoopRecorder()
	assert.NoError(t, r.RecordRun(sampleSnapshot()))
	assert.NoError(t, r.Close())
}
