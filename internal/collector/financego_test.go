package collector

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	finance "github.com/piquette/finance-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFinanceGo(t *testing.T, status int, body string) (*FinanceGoFetcher, *capturedRequest) {
	t.Helper()
	got := &capturedRequest{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.URL = r.URL
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	f := NewFinanceGoFetcher("", 5*time.Second)
	f.Backend.(*chartBackend).URL = srv.URL
	return f, got
}

func TestConvertChartBar(t *testing.T) {
	bar := &finance.ChartBar{
		Open:      decimal.RequireFromString("177.83"),
		High:      decimal.RequireFromString("182.88"),
		Low:       decimal.RequireFromString("177.71"),
		Close:     decimal.RequireFromString("182.01"),
		Volume:    104487900,
		Timestamp: 1641220200,
	}
	got := convertChartBar(bar, -18000)
	assert.Equal(t, day("2022-01-03"), got.Time)
	assert.InDelta(t, 182.01, got.Close, 1e-9)
	assert.InDelta(t, 177.71, got.Low, 1e-9)
	assert.Equal(t, 104487900.0, got.Volume)
}

func TestConvertChartBar_EasternExchange(t *testing.T) {
	// 10:00 Australia/Sydney (UTC+11) on 2022-01-04 is 23:00 UTC on 2022-01-03.
	bar := &finance.ChartBar{Close: decimal.NewFromInt(1), Timestamp: 1641250800}
	assert.Equal(t, day("2022-01-03"), convertChartBar(bar, 0).Time)
	assert.Equal(t, day("2022-01-04"), convertChartBar(bar, 39600).Time)
}

func TestToDatetime(t *testing.T) {
	dt := toDatetime(day("2022-03-07"))
	assert.Equal(t, 2022, dt.Year)
	assert.Equal(t, 3, dt.Month)
	assert.Equal(t, 7, dt.Day)
	assert.Equal(t, int(day("2022-03-07").Unix()), dt.Unix())
}

func TestFinanceGoFetcher_ParsesChart(t *testing.T) {
	f, req := newTestFinanceGo(t, http.StatusOK, yahooFixture)

	bars, err := f.FetchDailyBars(context.Background(), "AAPL", day("2022-01-01"), day("2022-01-10"))
	require.NoError(t, err)
	require.Len(t, bars, 2, "zero-close placeholder must be skipped")

	assert.Equal(t, day("2022-01-03"), bars[0].Time)
	assert.InDelta(t, 182.01, bars[0].Close, 1e-9)
	assert.Equal(t, day("2022-01-05"), bars[1].Time)
	assert.InDelta(t, 174.64, bars[1].Low, 1e-9)

	assert.Equal(t, "/v8/finance/chart/AAPL", req.URL.Path)
	assert.Equal(t, "1d", req.URL.Query().Get("interval"))
	assert.Equal(t, "1640995200", req.URL.Query().Get("period1"))
}

func TestFinanceGoFetcher_NotFound(t *testing.T) {
	f, _ := newTestFinanceGo(t, http.StatusNotFound, yahooNotFound)
	_, err := f.FetchDailyBars(context.Background(), "NOPE", day("2022-01-01"), day("2022-01-10"))
	assert.ErrorIs(t, err, ErrSymbolNotFound)
}

func TestFinanceGoFetcher_NotFoundInBody(t *testing.T) {
	f, _ := newTestFinanceGo(t, http.StatusOK, yahooNotFound)
	_, err := f.FetchDailyBars(context.Background(), "NOPE", day("2022-01-01"), day("2022-01-10"))
	assert.ErrorIs(t, err, ErrSymbolNotFound)
}

func TestFinanceGoFetcher_ServerError(t *testing.T) {
	f, _ := newTestFinanceGo(t, http.StatusInternalServerError, "oops")
	_, err := f.FetchDailyBars(context.Background(), "AAPL", day("2022-01-01"), day("2022-01-10"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrSymbolNotFound)
	assert.Contains(t, err.Error(), "status 500")
}
