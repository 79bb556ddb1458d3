package recorder

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/guregu/null/v6"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists run results to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so external readers do not block the writer.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	zap.L().Info("sqlite recorder opened", zap.String("path", dbPath))
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			run_id            TEXT PRIMARY KEY,
			timestamp         INTEGER NOT NULL,
			source            TEXT,
			symbol            TEXT NOT NULL,
			start_date        TEXT NOT NULL,
			end_date          TEXT NOT NULL,
			ma_window         INTEGER NOT NULL,
			row_count         INTEGER NOT NULL,
			first_close       REAL,
			last_close        REAL,
			total_return      REAL,
			high              REAL,
			low               REAL,
			position          REAL,
			latest_ma         REAL,
			mean_daily_return REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_symbol_ts ON runs(symbol, timestamp)`,

		`CREATE TABLE IF NOT EXISTS run_rows (
			run_id         TEXT NOT NULL REFERENCES runs(run_id),
			date           TEXT NOT NULL,
			open           REAL,
			high           REAL,
			low            REAL,
			close          REAL,
			volume         REAL,
			moving_average REAL,
			daily_return   REAL,
			PRIMARY KEY (run_id, date)
		)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// RecordRun writes the run header and every row in one transaction.
// A missing RunID is filled with a new UUID.
func (r *SQLiteRecorder) RecordRun(snap *RunSnapshot) error {
	if snap == nil || snap.Table == nil {
		return errors.New("record run: empty snapshot")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if snap.RunID == "" {
		snap.RunID = uuid.NewString()
	}
	ranAt := snap.RanAt
	if ranAt.IsZero() {
		ranAt = time.Now()
	}
	tbl := snap.Table

	var s struct {
		firstClose, lastClose, totalReturn, high, low, position sql.NullFloat64
		latestMA, meanReturn                                    null.Float
	}
	if sum := snap.Summary; sum != nil {
		s.firstClose = sql.NullFloat64{Float64: sum.FirstClose, Valid: true}
		s.lastClose = sql.NullFloat64{Float64: sum.LastClose, Valid: true}
		s.totalReturn = sql.NullFloat64{Float64: sum.TotalReturn, Valid: true}
		s.high = sql.NullFloat64{Float64: sum.High, Valid: true}
		s.low = sql.NullFloat64{Float64: sum.Low, Valid: true}
		s.position = sql.NullFloat64{Float64: sum.Position, Valid: true}
		s.latestMA = sum.LatestMA
		s.meanReturn = sum.MeanDailyReturn
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`INSERT INTO runs
		(run_id, timestamp, source, symbol, start_date, end_date, ma_window, row_count,
		 first_close, last_close, total_return, high, low, position, latest_ma, mean_daily_return)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		snap.RunID, ranAt.Unix(), snap.Source, tbl.Symbol,
		tbl.Start.Format(time.DateOnly), tbl.End.Format(time.DateOnly), tbl.Window, len(tbl.Rows),
		s.firstClose, s.lastClose, s.totalReturn, s.high, s.low, s.position, s.latestMA, s.meanReturn,
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO run_rows
		(run_id, date, open, high, low, close, volume, moving_average, daily_return)
		VALUES (?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return fmt.Errorf("prepare rows: %w", err)
	}
	defer stmt.Close()

	for _, row := range tbl.Rows {
		if _, err := stmt.Exec(snap.RunID, row.Time.Format(time.DateOnly),
			row.Open, row.High, row.Low, row.Close, row.Volume,
			row.MovingAverage, row.DailyReturn,
		); err != nil {
			return fmt.Errorf("insert row %s: %w", row.Time.Format(time.DateOnly), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (r *SQLiteRecorder) Close() error {
	zap.L().Info("closing sqlite recorder")
	return r.db.Close()
}
