package recorder

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"StockScreener/internal/model"
)

// SQLiteRecorder persists runs and their analyses to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL lets the API read while a run is being written.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info().Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			seq            INTEGER PRIMARY KEY AUTOINCREMENT,
			id             TEXT NOT NULL UNIQUE,
			trigger        TEXT,
			condition_name TEXT,
			started_at     INTEGER NOT NULL,
			finished_at    INTEGER,
			total_stocks   INTEGER,
			average_score  REAL,
			sentiment      TEXT,
			error_count    INTEGER,
			summary        TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at)`,

		`CREATE TABLE IF NOT EXISTS analyses (
			id               INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id           TEXT NOT NULL REFERENCES runs(id),
			symbol           TEXT NOT NULL,
			name             TEXT,
			status           TEXT,
			analyzed_at      INTEGER,
			overall_score    REAL,
			buy_signals      REAL,
			trend_score      REAL,
			rsi_score        REAL,
			macd_score       REAL,
			volume_score     REAL,
			bollinger_score  REAL,
			stochastic_score REAL,
			signal_count     INTEGER,
			risk_level       TEXT,
			recommendation   TEXT,
			ai_recommendation TEXT,
			result           TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_analyses_run ON analyses(run_id)`,
		`CREATE INDEX IF NOT EXISTS idx_analyses_symbol ON analyses(symbol, analyzed_at)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// RecordRun stores the run row and one row per analysis in a single
// transaction.
func (r *SQLiteRecorder) RecordRun(ctx context.Context, report *model.RunReport) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	summary, err := json.Marshal(report.Summary)
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `INSERT INTO runs
		(id, trigger, condition_name, started_at, finished_at,
		 total_stocks, average_score, sentiment, error_count, summary)
		VALUES (?,?,?,?,?,?,?,?,?,?)`,
		report.ID, string(report.Trigger), report.Condition,
		report.StartedAt.Unix(), report.FinishedAt.Unix(),
		report.Summary.TotalStocks, report.Summary.AverageScore, report.Summary.Sentiment,
		len(report.Errors), string(summary),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO analyses
		(run_id, symbol, name, status, analyzed_at, overall_score,
		 buy_signals, trend_score, rsi_score, macd_score, volume_score,
		 bollinger_score, stochastic_score, signal_count, risk_level,
		 recommendation, ai_recommendation, result)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return fmt.Errorf("prepare analysis insert: %w", err)
	}
	defer stmt.Close()

	for _, res := range report.Results {
		blob, err := json.Marshal(res)
		if err != nil {
			return fmt.Errorf("marshal %s: %w", res.Symbol, err)
		}
		var aiRec sql.NullString
		if res.Opinion != nil {
			aiRec = sql.NullString{String: res.Opinion.Recommendation, Valid: true}
		}
		s := res.Scores
		_, err = stmt.ExecContext(ctx,
			report.ID, res.Symbol, res.Name, string(res.Status), res.AnalyzedAt.Unix(), s.Overall,
			s.BuySignals, s.Trend, s.RSI, s.MACD, s.Volume,
			s.Bollinger, s.Stochastic, len(res.Signals), string(res.Risk),
			string(res.Recommendation), aiRec, string(blob),
		)
		if err != nil {
			return fmt.Errorf("insert analysis %s: %w", res.Symbol, err)
		}
	}
	return tx.Commit()
}

// LatestResults returns up to limit analyses, newest run first and best
// score first within a run.
func (r *SQLiteRecorder) LatestResults(ctx context.Context, limit int) ([]*model.AnalysisResult, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT a.result
		FROM analyses a JOIN runs r ON r.id = a.run_id
		ORDER BY r.seq DESC, a.overall_score DESC, a.id ASC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query latest: %w", err)
	}
	defer rows.Close()

	var out []*model.AnalysisResult
	for rows.Next() {
		var blob string
		if err := rows.Scan(&blob); err != nil {
			return nil, err
		}
		var res model.AnalysisResult
		if err := json.Unmarshal([]byte(blob), &res); err != nil {
			return nil, fmt.Errorf("decode result: %w", err)
		}
		out = append(out, &res)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	log.Info().Msg("closing sqlite recorder")
	return r.db.Close()
}
