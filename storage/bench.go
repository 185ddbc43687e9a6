package storage

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"farchat/bench"
)

// BenchStorage keeps benchmark runs and their per-prompt results.
type BenchStorage struct {
	db *sql.DB
}

// NewBenchStorage opens (creating if needed) the SQLite database at dbPath.
func NewBenchStorage(dbPath string) (*BenchStorage, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	storage := &BenchStorage{db: db}

	if err := storage.initialize(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return storage, nil
}

func (bs *BenchStorage) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		model TEXT NOT NULL,
		host TEXT,
		num_predict INTEGER NOT NULL,
		start_time DATETIME NOT NULL,
		end_time DATETIME NOT NULL,
		duration_ns INTEGER NOT NULL,
		passed INTEGER NOT NULL,
		failed INTEGER NOT NULL,
		avg_duration_ns INTEGER NOT NULL,
		avg_tokens_per_sec REAL NOT NULL
	);
	CREATE TABLE IF NOT EXISTS results (
		run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		idx INTEGER NOT NULL,
		prompt TEXT NOT NULL,
		status TEXT NOT NULL,
		start_time DATETIME NOT NULL,
		duration_ns INTEGER NOT NULL,
		response TEXT,
		eval_count INTEGER NOT NULL,
		prompt_eval_count INTEGER NOT NULL,
		tokens_per_sec REAL NOT NULL,
		error TEXT,
		PRIMARY KEY (run_id, idx)
	);
	CREATE INDEX IF NOT EXISTS idx_runs_start ON runs(start_time);
	`

	_, err := bs.db.Exec(schema)
	return err
}

// SaveRun stores run and all of its results in one transaction.
func (bs *BenchStorage) SaveRun(run *bench.Run) error {
	tx, err := bs.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
	INSERT OR REPLACE INTO runs (id, model, host, num_predict, start_time, end_time, duration_ns, passed, failed, avg_duration_ns, avg_tokens_per_sec)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		run.Model,
		run.Host,
		run.NumPredict,
		run.StartTime,
		run.EndTime,
		int64(run.Duration),
		run.Passed,
		run.Failed,
		int64(run.AvgDuration),
		run.AvgTokensSec,
	)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM results WHERE run_id = ?`, run.ID); err != nil {
		return fmt.Errorf("failed to clear results: %w", err)
	}

	for _, res := range run.Results {
		_, err := tx.Exec(`
		INSERT INTO results (run_id, idx, prompt, status, start_time, duration_ns, response, eval_count, prompt_eval_count, tokens_per_sec, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			run.ID,
			res.Index,
			res.Prompt,
			string(res.Status),
			res.StartTime,
			int64(res.Duration),
			res.Response,
			res.EvalCount,
			res.PromptEvalCount,
			res.TokensPerSec,
			res.Error,
		)
		if err != nil {
			return fmt.Errorf("failed to save result %d: %w", res.Index, err)
		}
	}

	return tx.Commit()
}

// ListRuns returns stored runs, newest first, without their results.
func (bs *BenchStorage) ListRuns() ([]bench.Run, error) {
	rows, err := bs.db.Query(`
	SELECT id, model, host, num_predict, start_time, end_time, duration_ns, passed, failed, avg_duration_ns, avg_tokens_per_sec
	FROM runs
	ORDER BY start_time DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []bench.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, *run)
	}

	return runs, rows.Err()
}

// LoadRun returns the run with its results, or nil if id is unknown.
func (bs *BenchStorage) LoadRun(id string) (*bench.Run, error) {
	row := bs.db.QueryRow(`
	SELECT id, model, host, num_predict, start_time, end_time, duration_ns, passed, failed, avg_duration_ns, avg_tokens_per_sec
	FROM runs
	WHERE id = ?
	`, id)

	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	results, err := bs.loadResults(id)
	if err != nil {
		return nil, err
	}
	run.Results = results

	return run, nil
}

func (bs *BenchStorage) loadResults(runID string) ([]bench.PromptResult, error) {
	rows, err := bs.db.Query(`
	SELECT idx, prompt, status, start_time, duration_ns, response, eval_count, prompt_eval_count, tokens_per_sec, error
	FROM results
	WHERE run_id = ?
	ORDER BY idx
	`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []bench.PromptResult
	for rows.Next() {
		var res bench.PromptResult
		var status string
		var durationNs int64
		var response, errText sql.NullString
		err := rows.Scan(
			&res.Index,
			&res.Prompt,
			&status,
			&res.StartTime,
			&durationNs,
			&response,
			&res.EvalCount,
			&res.PromptEvalCount,
			&res.TokensPerSec,
			&errText,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}
		res.Status = bench.Status(status)
		res.Duration = time.Duration(durationNs)
		res.Response = response.String
		res.Error = errText.String
		results = append(results, res)
	}

	return results, rows.Err()
}

func (bs *BenchStorage) DeleteRun(id string) error {
	tx, err := bs.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM results WHERE run_id = ?`, id); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM runs WHERE id = ?`, id); err != nil {
		return err
	}
	return tx.Commit()
}

func (bs *BenchStorage) Close() error {
	if bs.db != nil {
		return bs.db.Close()
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (*bench.Run, error) {
	var run bench.Run
	var host sql.NullString
	var durationNs, avgNs int64
	err := s.Scan(
		&run.ID,
		&run.Model,
		&host,
		&run.NumPredict,
		&run.StartTime,
		&run.EndTime,
		&durationNs,
		&run.Passed,
		&run.Failed,
		&avgNs,
		&run.AvgTokensSec,
	)
	if err != nil {
		return nil, err
	}
	run.Host = host.String
	run.Duration = time.Duration(durationNs)
	run.AvgDuration = time.Duration(avgNs)
	return &run, nil
}
