package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"StockScope/internal/chart"
	"StockScope/internal/collector"
	"StockScope/internal/config"
	"StockScope/internal/logging"
	"StockScope/internal/recorder"
	"StockScope/internal/scheduler"
)

type flags struct {
	configPath string
	ticker     string
	start      string
	end        string
	window     int
	rows       int
	schedule   string
	noPlot     bool
	noShow     bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd, _ := buildRootCmd()
	return cmd
}

func buildRootCmd() (*cobra.Command, *flags) {
	f := &flags{}
	cmd := &cobra.Command{
		Use:           "stockscope",
		Short:         "Download daily prices, derive moving average and daily return, plot",
		Long:          `Downloads historical daily bars for one ticker, adds a trailing moving average and a daily return column, prints a preview and renders a chart of close vs. moving average.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			err := run(cmd, f)
			if err != nil {
				fmt.Fprintf(os.Stderr, "stockscope: %v\n", err)
			}
			return err
		},
	}

	defaultCfg := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		defaultCfg = v
	}
	fl := cmd.Flags()
	fl.StringVarP(&f.configPath, "config", "c", defaultCfg, "path to YAML config")
	fl.StringVarP(&f.ticker, "ticker", "t", "", "ticker symbol (overrides analysis.symbol)")
	fl.StringVar(&f.start, "start", "", "start date YYYY-MM-DD, inclusive")
	fl.StringVar(&f.end, "end", "", "end date YYYY-MM-DD, exclusive")
	fl.IntVarP(&f.window, "window", "w", 0, "moving-average window in trading days")
	fl.IntVar(&f.rows, "rows", 0, "number of preview rows")
	fl.StringVar(&f.schedule, "schedule", "", "cron spec (with seconds) to re-run on; empty runs once")
	fl.BoolVar(&f.noPlot, "no-plot", false, "skip chart rendering")
	fl.BoolVar(&f.noShow, "no-show", false, "render the chart but do not open a viewer")
	return cmd, f
}

// loadConfig reads the config file and applies command-line overrides.
func loadConfig(cmd *cobra.Command, f *flags) (*config.Config, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return nil, err
	}
	fl := cmd.Flags()
	if fl.Changed("ticker") {
		cfg.Analysis.Symbol = f.ticker
	}
	if fl.Changed("start") {
		cfg.Analysis.Start = f.start
	}
	if fl.Changed("end") {
		cfg.Analysis.End = f.end
	}
	if fl.Changed("window") {
		cfg.Analysis.Window = f.window
	}
	if fl.Changed("rows") {
		cfg.Analysis.PreviewRows = f.rows
	}
	if fl.Changed("schedule") {
		cfg.Schedule.Cron = f.schedule
	}
	if f.noPlot {
		off := false
		cfg.Plot.Enabled = &off
	}
	if f.noShow {
		off := false
		cfg.Plot.Show = &off
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

func newFetcher(cfg *config.Config) collector.Fetcher {
	switch cfg.DataSource.Provider {
	case config.ProviderFinanceGo:
		return collector.NewFinanceGoFetcher(cfg.Proxy, cfg.DataSource.Timeout)
	case config.ProviderREST:
		return collector.NewRESTFetcher(cfg.DataSource.BaseURL, cfg.DataSource.APIKey, cfg.Proxy, cfg.DataSource.Timeout)
	case config.ProviderMock:
		return &collector.MockFetcher{Price: 100}
	default:
		return collector.NewYahooFetcher(cfg.Proxy, cfg.DataSource.Timeout)
	}
}

func newRecorder(path string) recorder.Recorder {
	if path == "" {
		return recorder.NewNoopRecorder()
	}
	sr, err := recorder.NewSQLiteRecorder(path)
	if err != nil {
		zap.L().Warn("init sqlite recorder failed, using noop", zap.Error(err))
		return recorder.NewNoopRecorder()
	}
	return sr
}

func run(cmd *cobra.Command, f *flags) error {
	// .env is optional; real environment variables take precedence.
	_ = godotenv.Load()

	cfg, err := loadConfig(cmd, f)
	if err != nil {
		return err
	}

	logger, err := logging.Setup(cfg.Log.Level, cfg.Log.File)
	if err != nil {
		return err
	}
	defer logger.Sync()
	defer logging.Install(logger)()

	start, end, err := cfg.DateRange()
	if err != nil {
		return err
	}

	fetcher := newFetcher(cfg)
	zap.L().Info("data source", zap.String("provider", fetcher.Name()))
	col := collector.NewCollector(fetcher, cfg.Analysis.Window, cfg.FetchRetries())

	rec := newRecorder(cfg.Database.SQLitePath)
	defer rec.Close()

	var charter scheduler.Charter
	if cfg.PlotEnabled() {
		charter = chart.New(chart.Options{
			OutputDir: cfg.Plot.OutputDir,
			WidthIn:   cfg.Plot.WidthIn,
			HeightIn:  cfg.Plot.HeightIn,
		})
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	sched := scheduler.NewScheduler(ctx, col, rec, charter, scheduler.Request{
		Symbol:      cfg.Analysis.Symbol,
		Start:       start,
		End:         end,
		PreviewRows: cfg.Analysis.PreviewRows,
	}, cmd.OutOrStdout())
	sched.ShowChart = cfg.PlotShow()

	if cfg.Schedule.Cron == "" {
		return sched.RunNow(ctx)
	}

	if err := sched.Register(cfg.Schedule.Cron); err != nil {
		return err
	}
	sched.Start()
	defer sched.Stop()
	zap.L().Info("stockscope is running on schedule, press Ctrl+C to stop", zap.String("cron", cfg.Schedule.Cron))

	<-ctx.Done()
	zap.L().Info("shutdown signal received, stopping")
	return nil
}
