package scheduler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"StockScope/internal/calculator"
	"StockScope/internal/chart"
	"StockScope/internal/collector"
	"StockScope/internal/model"
	"StockScope/internal/recorder"
	"StockScope/internal/report"
)

// Request describes what a run analyzes.
type Request struct {
	Symbol      string
	Start       time.Time
	End         time.Time
	PreviewRows int
}

// Charter renders a table to an image and presents it.
type Charter interface {
	Render(table *model.AnalyzedTable) (string, error)
	Show(path string) error
}

// Scheduler runs the analysis once or on a cron schedule.
type Scheduler struct {
	Cron      *cron.Cron
	Collector *collector.Collector
	Recorder  recorder.Recorder
	Chart     Charter // nil disables plotting
	ShowChart bool
	Request   Request
	Out       io.Writer
	Ctx       context.Context
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, col *collector.Collector, rec recorder.Recorder, ch Charter, req Request, out io.Writer) *Scheduler {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Scheduler{
		Cron:      cron.New(cron.WithSeconds()),
		Collector: col,
		Recorder:  rec,
		Chart:     ch,
		ShowChart: true,
		Request:   req,
		Out:       out,
		Ctx:       ctx,
	}
}

// Register schedules a full run on the given cron spec (seconds field included).
func (s *Scheduler) Register(spec string) error {
	if _, err := s.Cron.AddFunc(spec, s.scheduledRun); err != nil {
		return fmt.Errorf("register run task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	zap.L().Info("scheduler started")
}

// Stop stops the cron scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	zap.L().Info("scheduler stopped")
}

func (s *Scheduler) scheduledRun() {
	if err := s.RunNow(s.Ctx); err != nil {
		zap.L().Error("scheduled run failed", zap.Error(err))
	}
}

// RunNow fetches, derives, prints, records and plots once.
// Only a failure to obtain the table is returned; recording and plotting failures are logged.
func (s *Scheduler) RunNow(ctx context.Context) error {
	req := s.Request
	zap.L().Info("running analysis",
		zap.String("symbol", req.Symbol),
		zap.String("start", req.Start.Format(time.DateOnly)),
		zap.String("end", req.End.Format(time.DateOnly)),
		zap.Int("window", s.Collector.Window))

	table, err := s.Collector.Collect(ctx, req.Symbol, req.Start, req.End)
	if err != nil {
		return fmt.Errorf("collect %s: %w", req.Symbol, err)
	}

	fmt.Fprintln(s.Out, report.FormatPreview(table, req.PreviewRows))

	summary, err := calculator.Summarize(table)
	if err != nil {
		zap.L().Warn("summary unavailable", zap.Error(err))
	} else {
		fmt.Fprintln(s.Out, report.FormatSummary(summary))
	}

	if err := s.Recorder.RecordRun(&recorder.RunSnapshot{
		RunID:   uuid.NewString(),
		Source:  s.Collector.Fetcher.Name(),
		RanAt:   time.Now(),
		Table:   table,
		Summary: summary,
	}); err != nil {
		zap.L().Error("record run", zap.Error(err))
	}

	s.plot(table)
	return nil
}

func (s *Scheduler) plot(table *model.AnalyzedTable) {
	if s.Chart == nil {
		return
	}
	path, err := s.Chart.Render(table)
	if err != nil {
		zap.L().Warn("chart render failed", zap.Error(err))
		return
	}
	zap.L().Info("chart written", zap.String("path", path))

	if !s.ShowChart {
		return
	}
	if err := s.Chart.Show(path); err != nil {
		if errors.Is(err, chart.ErrNoDisplay) {
			zap.L().Warn("no display available, chart saved only", zap.String("path", path))
			return
		}
		zap.L().Warn("chart display failed", zap.String("path", path), zap.Error(err))
	}
}
