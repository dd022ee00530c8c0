package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/bkyoung/diffscope/internal/store"
)

// Store implements the store.Store interface using SQLite.
type Store struct {
	db *sql.DB
}

// NewStore creates a new SQLite store at the given path.
// Use ":memory:" for in-memory database (useful for testing).
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	s := &Store{db: db}

	if err := s.createSchema(); err != nil {
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return s, nil
}

// createSchema creates all tables and indexes if they don't exist.
func (s *Store) createSchema() error {
	schema := `
	-- One row per skill run over a diff
	CREATE TABLE IF NOT EXISTS runs (
		run_id TEXT PRIMARY KEY,
		timestamp INTEGER NOT NULL,
		skill TEXT NOT NULL,
		model TEXT NOT NULL,
		repository TEXT NOT NULL,
		base_ref TEXT NOT NULL,
		target_ref TEXT NOT NULL,
		summary TEXT,
		input_tokens INTEGER DEFAULT 0,
		output_tokens INTEGER DEFAULT 0,
		cost_usd REAL DEFAULT 0.0,
		duration_ms INTEGER DEFAULT 0,
		failed_hunks INTEGER DEFAULT 0,
		skipped_files INTEGER DEFAULT 0
	);

	-- Findings the run produced, after dedup
	CREATE TABLE IF NOT EXISTS findings (
		finding_id TEXT PRIMARY KEY,
		run_id TEXT NOT NULL,
		content_hash TEXT NOT NULL,
		file TEXT,
		line_start INTEGER DEFAULT 0,
		line_end INTEGER DEFAULT 0,
		severity TEXT NOT NULL,
		title TEXT NOT NULL,
		description TEXT,
		fix_diff TEXT,
		FOREIGN KEY (run_id) REFERENCES runs(run_id) ON DELETE CASCADE
	);

	-- Indexes for performance
	CREATE INDEX IF NOT EXISTS idx_findings_run ON findings(run_id);
	CREATE INDEX IF NOT EXISTS idx_findings_hash ON findings(content_hash);
	CREATE INDEX IF NOT EXISTS idx_runs_timestamp ON runs(timestamp DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// SaveRun stores a new run row.
func (s *Store) SaveRun(ctx context.Context, run store.Run) error {
	query := `
		INSERT INTO runs (run_id, timestamp, skill, model, repository, base_ref, target_ref, summary,
			input_tokens, output_tokens, cost_usd, duration_ms, failed_hunks, skipped_files)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		run.RunID,
		run.Timestamp.Unix(),
		run.Skill,
		run.Model,
		run.Repository,
		run.BaseRef,
		run.TargetRef,
		run.Summary,
		run.InputTokens,
		run.OutputTokens,
		run.CostUSD,
		run.DurationMS,
		run.FailedHunks,
		run.SkippedFiles,
	)

	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}

	return nil
}

// GetRun retrieves a run by ID.
func (s *Store) GetRun(ctx context.Context, runID string) (store.Run, error) {
	query := `
		SELECT run_id, timestamp, skill, model, repository, base_ref, target_ref, summary,
			input_tokens, output_tokens, cost_usd, duration_ms, failed_hunks, skipped_files
		FROM runs
		WHERE run_id = ?
	`

	var run store.Run
	var timestamp int64

	err := s.db.QueryRowContext(ctx, query, runID).Scan(
		&run.RunID,
		&timestamp,
		&run.Skill,
		&run.Model,
		&run.Repository,
		&run.BaseRef,
		&run.TargetRef,
		&run.Summary,
		&run.InputTokens,
		&run.OutputTokens,
		&run.CostUSD,
		&run.DurationMS,
		&run.FailedHunks,
		&run.SkippedFiles,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return store.Run{}, fmt.Errorf("run not found: %s", runID)
		}
		return store.Run{}, fmt.Errorf("failed to get run: %w", err)
	}

	run.Timestamp = time.Unix(timestamp, 0)
	return run, nil
}

// ListRuns retrieves the most recent runs, limited by the given count.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]store.Run, error) {
	query := `
		SELECT run_id, timestamp, skill, model, repository, base_ref, target_ref, summary,
			input_tokens, output_tokens, cost_usd, duration_ms, failed_hunks, skipped_files
		FROM runs
		ORDER BY timestamp DESC
		LIMIT ?
	`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []store.Run
	for rows.Next() {
		var run store.Run
		var timestamp int64

		if err := rows.Scan(
			&run.RunID,
			&timestamp,
			&run.Skill,
			&run.Model,
			&run.Repository,
			&run.BaseRef,
			&run.TargetRef,
			&run.Summary,
			&run.InputTokens,
			&run.OutputTokens,
			&run.CostUSD,
			&run.DurationMS,
			&run.FailedHunks,
			&run.SkippedFiles,
		); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}

		run.Timestamp = time.Unix(timestamp, 0)
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}

	return runs, nil
}

// SaveFindings stores multiple findings in a single transaction.
func (s *Store) SaveFindings(ctx context.Context, findings []store.FindingRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO findings (finding_id, run_id, content_hash, file, line_start, line_end, severity, title, description, fix_diff)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, finding := range findings {
		if _, err := stmt.ExecContext(ctx,
			finding.FindingID,
			finding.RunID,
			finding.ContentHash,
			finding.File,
			finding.LineStart,
			finding.LineEnd,
			finding.Severity,
			finding.Title,
			finding.Description,
			finding.FixDiff,
		); err != nil {
			return fmt.Errorf("failed to insert finding: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// FindingsByRun retrieves all findings for a given run.
func (s *Store) FindingsByRun(ctx context.Context, runID string) ([]store.FindingRecord, error) {
	query := `
		SELECT finding_id, run_id, content_hash, file, line_start, line_end, severity, title, description, fix_diff
		FROM findings
		WHERE run_id = ?
		ORDER BY finding_id ASC
	`

	rows, err := s.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get findings by run: %w", err)
	}
	defer rows.Close()

	var findings []store.FindingRecord
	for rows.Next() {
		var finding store.FindingRecord

		if err := rows.Scan(
			&finding.FindingID,
			&finding.RunID,
			&finding.ContentHash,
			&finding.File,
			&finding.LineStart,
			&finding.LineEnd,
			&finding.Severity,
			&finding.Title,
			&finding.Description,
			&finding.FixDiff,
		); err != nil {
			return nil, fmt.Errorf("failed to scan finding: %w", err)
		}

		findings = append(findings, finding)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating findings: %w", err)
	}

	return findings, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
