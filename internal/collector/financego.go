package collector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	finance "github.com/piquette/finance-go"
	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
	"github.com/piquette/finance-go/form"
	"github.com/shopspring/decimal"

	"StockScope/internal/model"
)

// FinanceGoFetcher implements Fetcher with the finance-go chart client.
type FinanceGoFetcher struct {
	Backend finance.Backend
}

// NewFinanceGoFetcher creates a fetcher backed by github.com/piquette/finance-go.
func NewFinanceGoFetcher(proxyURL string, timeout time.Duration) *FinanceGoFetcher {
	return &FinanceGoFetcher{
		Backend: &chartBackend{&finance.BackendConfiguration{
			Type:       finance.YFinBackend,
			URL:        finance.YFinURL,
			HTTPClient: newHTTPClient(proxyURL, timeout),
		}},
	}
}

func (f *FinanceGoFetcher) Name() string { return "finance-go" }

// chartBackend reads the chart body on error statuses too, so Yahoo's
// 404 "Not Found" reaches the caller instead of a bare remote error.
type chartBackend struct {
	*finance.BackendConfiguration
}

func (b *chartBackend) Call(path string, body *form.Values, ctx *context.Context, v interface{}) error {
	if body != nil && !body.Empty() {
		path += "?" + body.Encode()
	}
	req, err := b.NewRequest(http.MethodGet, path, ctx)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := b.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode == http.StatusNotFound {
		return ErrSymbolNotFound
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	return json.Unmarshal(raw, v)
}

func toDatetime(t time.Time) *datetime.Datetime {
	return datetime.New(&t)
}

func decimalToFloat(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}

// convertChartBar maps a finance-go bar onto the domain model, dating it in
// exchange-local time.
func convertChartBar(b *finance.ChartBar, gmtOffset int) model.OHLCV {
	return model.OHLCV{
		Time:   tradingDay(time.Unix(int64(b.Timestamp+gmtOffset), 0).UTC()),
		Open:   decimalToFloat(b.Open),
		High:   decimalToFloat(b.High),
		Low:    decimalToFloat(b.Low),
		Close:  decimalToFloat(b.Close),
		Volume: float64(b.Volume),
	}
}

func isNotFound(err error) bool {
	if errors.Is(err, ErrSymbolNotFound) {
		return true
	}
	var yerr *finance.YfinError
	return errors.As(err, &yerr) && strings.EqualFold(yerr.Code, "Not Found")
}

func (f *FinanceGoFetcher) FetchDailyBars(ctx context.Context, symbol string, start, end time.Time) ([]model.OHLCV, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	backend := f.Backend
	if backend == nil {
		backend = finance.GetBackend(finance.YFinBackend)
	}
	params := &chart.Params{
		Symbol:   symbol,
		Interval: datetime.OneDay,
		Start:    toDatetime(start),
		End:      toDatetime(end),
	}
	params.Context = &ctx

	// The request runs eagerly; Err and Meta are known before iterating.
	iter := chart.Client{B: backend}.Get(params)
	if err := iter.Err(); err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("finance-go %s: %w", symbol, ErrSymbolNotFound)
		}
		return nil, fmt.Errorf("finance-go fetch: %w", err)
	}
	offset := iter.Meta().Gmtoffset

	var bars []model.OHLCV
	for iter.Next() {
		b := iter.Bar()
		// null placeholders decode as zero
		if b.Close.IsZero() {
			continue
		}
		bars = append(bars, convertChartBar(b, offset))
	}
	return bars, nil
}
