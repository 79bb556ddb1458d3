package recorder

import (
	"time"

	"StockScope/internal/model"
)

// RunSnapshot holds everything produced by one analysis run.
type RunSnapshot struct {
	RunID   string
	Source  string
	RanAt   time.Time
	Table   *model.AnalyzedTable
	Summary *model.Summary
}

// Recorder exports run results for offline analysis. Records are never read back.
type Recorder interface {
	RecordRun(snap *RunSnapshot) error
	Close() error
}
