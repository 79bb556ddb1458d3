package chart

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"go.uber.org/zap"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"StockScope/internal/model"
)

// ErrNoDisplay is returned by Show when no graphical display is available.
var ErrNoDisplay = errors.New("no display available")

// Options controls chart output.
type Options struct {
	OutputDir string
	WidthIn   float64
	HeightIn  float64
}

// Plotter renders close price and moving average charts to PNG.
type Plotter struct {
	Options Options

	// lookupEnv and startViewer are swapped in tests.
	lookupEnv   func(string) string
	startViewer func(name string, args ...string) error
}

// New creates a Plotter.
func New(opts Options) *Plotter {
	return &Plotter{
		Options:   opts,
		lookupEnv: os.Getenv,
		startViewer: func(name string, args ...string) error {
			return exec.Command(name, args...).Start()
		},
	}
}

// ChartPath returns the file the chart for table is written to.
func (p *Plotter) ChartPath(table *model.AnalyzedTable) string {
	name := fmt.Sprintf("%s_%s_%s_ma%d.png", table.Symbol,
		table.Start.Format("20060102"), table.End.Format("20060102"), table.Window)
	return filepath.Join(p.Options.OutputDir, name)
}

// closeAndMA splits the table into the close series and the defined moving-average points.
func closeAndMA(table *model.AnalyzedTable) (closes, ma plotter.XYs) {
	closes = make(plotter.XYs, 0, len(table.Rows))
	ma = make(plotter.XYs, 0, len(table.Rows))
	for _, r := range table.Rows {
		x := float64(r.Time.Unix())
		closes = append(closes, plotter.XY{X: x, Y: r.Close})
		if r.MovingAverage.Valid {
			ma = append(ma, plotter.XY{X: x, Y: r.MovingAverage.Float64})
		}
	}
	return closes, ma
}

// Render draws the closing price and moving average and saves the chart as PNG.
func (p *Plotter) Render(table *model.AnalyzedTable) (string, error) {
	if len(table.Rows) == 0 {
		return "", errors.New("nothing to plot")
	}

	pl := plot.New()
	pl.Title.Text = fmt.Sprintf("%s closing price", table.Symbol)
	pl.X.Label.Text = "Date"
	pl.Y.Label.Text = "Price"
	pl.X.Tick.Marker = plot.TimeTicks{Format: "2006-01-02"}
	pl.Legend.Top = true
	pl.Legend.Left = true
	pl.Add(plotter.NewGrid())

	closes, ma := closeAndMA(table)

	closeLine, err := plotter.NewLine(closes)
	if err != nil {
		return "", fmt.Errorf("close series: %w", err)
	}
	closeLine.LineStyle.Width = vg.Points(1.2)
	closeLine.LineStyle.Color = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	pl.Add(closeLine)
	pl.Legend.Add("Closing Price", closeLine)

	maLabel := fmt.Sprintf("%d-day Moving Average", table.Window)
	if len(ma) > 0 {
		maLine, err := plotter.NewLine(ma)
		if err != nil {
			return "", fmt.Errorf("moving average series: %w", err)
		}
		maLine.LineStyle.Width = vg.Points(1.2)
		maLine.LineStyle.Color = color.RGBA{R: 255, G: 127, B: 14, A: 255}
		pl.Add(maLine)
		pl.Legend.Add(maLabel, maLine)
	} else {
		zap.L().Warn("moving average undefined for every row, plotting close only",
			zap.Int("window", table.Window), zap.Int("rows", len(table.Rows)))
	}

	if p.Options.OutputDir != "" {
		if err := os.MkdirAll(p.Options.OutputDir, 0o755); err != nil {
			return "", fmt.Errorf("create output dir: %w", err)
		}
	}
	path := p.ChartPath(table)
	w := vg.Length(p.Options.WidthIn) * vg.Inch
	h := vg.Length(p.Options.HeightIn) * vg.Inch
	if err := pl.Save(w, h, path); err != nil {
		return "", fmt.Errorf("save chart: %w", err)
	}
	return path, nil
}

// Show opens the chart in the platform image viewer.
func (p *Plotter) Show(path string) error {
	var name string
	var args []string
	switch runtime.GOOS {
	case "darwin":
		name, args = "open", []string{path}
	case "windows":
		name, args = "rundll32", []string{"url.dll,FileProtocolHandler", path}
	default:
		if p.lookupEnv("DISPLAY") == "" && p.lookupEnv("WAYLAND_DISPLAY") == "" {
			return ErrNoDisplay
		}
		name, args = "xdg-open", []string{path}
	}
	if err := p.startViewer(name, args...); err != nil {
		return fmt.Errorf("open %s: %w", name, err)
	}
	return nil
}
