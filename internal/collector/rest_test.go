package collector

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRESTFetcher(t *testing.T) {
	var auth, query string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		query = r.URL.RawQuery
		if r.URL.Query().Get("symbol") == "NOPE" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`[
			{"timestamp": 1641254400, "open": 10, "high": 12, "low": 9, "close": 11, "volume": 500},
			{"timestamp": 1641168000, "open": 9, "high": 11, "low": 8, "close": 10, "volume": 400}
		]`))
	}))
	defer srv.Close()

	f := NewRESTFetcher(srv.URL+"/", "secret", "", time.Second)
	bars, err := f.FetchDailyBars(context.Background(), "AAPL", day("2022-01-01"), day("2022-01-10"))
	require.NoError(t, err)
	require.Len(t, bars, 2)
	assert.Equal(t, day("2022-01-04"), bars[0].Time)
	assert.Equal(t, 11.0, bars[0].Close)
	assert.Equal(t, "Bearer secret", auth)
	assert.Contains(t, query, "start=2022-01-01")
	assert.Contains(t, query, "end=2022-01-10")

	_, err = f.FetchDailyBars(context.Background(), "NOPE", day("2022-01-01"), day("2022-01-10"))
	assert.ErrorIs(t, err, ErrSymbolNotFound)
}
