package report

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/guregu/null/v6"

	"StockScope/internal/model"
)

// Column headers for the preview, in print order.
var previewColumns = []string{"Date", "Open", "High", "Low", "Close", "Volume", "Moving_Average", "Daily_Return"}

func formatNull(v null.Float, prec int) string {
	if !v.Valid {
		return "NaN"
	}
	return strconv.FormatFloat(v.Float64, 'f', prec, 64)
}

// FormatPreview renders the first n rows of the table as an aligned text table.
func FormatPreview(table *model.AnalyzedTable, n int) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s | %d rows | %d-day moving average\n", table.Symbol, len(table.Rows), table.Window))

	w := tabwriter.NewWriter(&b, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, strings.Join(previewColumns, "\t")+"\t")
	for _, r := range table.Head(n) {
		fmt.Fprintf(w, "%s\t%.6f\t%.6f\t%.6f\t%.6f\t%.0f\t%s\t%s\t\n",
			r.Time.Format("2006-01-02"), r.Open, r.High, r.Low, r.Close, r.Volume,
			formatNull(r.MovingAverage, 6), formatNull(r.DailyReturn, 6))
	}
	_ = w.Flush()
	return b.String()
}

// FormatSummary formats the period statistics for display.
func FormatSummary(s *model.Summary) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s summary | %s ~ %s (%d rows)\n",
		s.Symbol, s.First.Format("2006-01-02"), s.Last.Format("2006-01-02"), s.Rows))
	b.WriteString(fmt.Sprintf("Close: %.2f -> %.2f (%+.2f%%)\n", s.FirstClose, s.LastClose, s.TotalReturn*100))
	b.WriteString(fmt.Sprintf("Range: %.2f ~ %.2f | position %.0f%%\n", s.Low, s.High, s.Position*100))
	if s.LatestMA.Valid {
		dev := 0.0
		if s.LatestMA.Float64 != 0 {
			dev = (s.LastClose - s.LatestMA.Float64) / s.LatestMA.Float64 * 100
		}
		b.WriteString(fmt.Sprintf("Latest MA: %.2f (deviation %+.1f%%)\n", s.LatestMA.Float64, dev))
	} else {
		b.WriteString("Latest MA: n/a (not enough rows for window)\n")
	}
	if s.MeanDailyReturn.Valid {
		b.WriteString(fmt.Sprintf("Mean daily return: %+.4f%%\n", s.MeanDailyReturn.Float64*100))
	}
	return b.String()
}
