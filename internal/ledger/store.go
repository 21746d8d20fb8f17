package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/Alexgichamba/denoiser/internal/config"
)

// RunStatus tracks a run through its lifetime.
type RunStatus string

const (
	RunRunning   RunStatus = "running"
	RunCompleted RunStatus = "completed"
	RunFailed    RunStatus = "failed"
)

// FileStatus records the outcome of a single file within a run.
type FileStatus string

const (
	FileEnhanced FileStatus = "enhanced"
	FileFailed   FileStatus = "failed"
)

// Run is one invocation of the enhancement pipeline.
type Run struct {
	ID         string
	Model      string
	Device     string
	Status     RunStatus
	TotalFiles int
	Enhanced   int
	Failed     int
	StartedAt  time.Time
	FinishedAt *time.Time
}

// FileRecord is the per-file outcome within a run.
type FileRecord struct {
	ID         int64
	RunID      string
	SourcePath string
	OutputPath string
	Status     FileStatus
	Error      string
	Duration   time.Duration
	CreatedAt  time.Time
}

// Store persists run history backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the ledger database under the state
// directory and applies migrations.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := filepath.Join(cfg.Paths.StateDir, "ledger.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// BeginRun inserts a new run in the running state.
func (s *Store) BeginRun(ctx context.Context, runID, model, device string, totalFiles int) error {
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO runs (id, model, device, status, total_files, started_at)
         VALUES (?, ?, ?, ?, ?, ?)`,
		runID,
		model,
		device,
		RunRunning,
		totalFiles,
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// RecordFile appends one file outcome to a run.
func (s *Store) RecordFile(ctx context.Context, runID string, rec FileRecord) error {
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO run_files (run_id, source_path, output_path, status, error_message, duration_ms, created_at)
         VALUES (?, ?, ?, ?, ?, ?, ?)`,
		runID,
		rec.SourcePath,
		nullableString(rec.OutputPath),
		rec.Status,
		nullableString(rec.Error),
		rec.Duration.Milliseconds(),
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert run file: %w", err)
	}
	return nil
}

// FinishRun stores the final counts and status of a run.
func (s *Store) FinishRun(ctx context.Context, runID string, enhanced, failed int, status RunStatus) error {
	_, err := s.db.ExecContext(
		ctx,
		`UPDATE runs SET status = ?, enhanced_count = ?, failed_count = ?, finished_at = ? WHERE id = ?`,
		status,
		enhanced,
		failed,
		time.Now().UTC().Format(time.RFC3339Nano),
		runID,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return nil
}

// GetRun fetches a run by identifier, or nil when absent.
func (s *Store) GetRun(ctx context.Context, runID string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, runID)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	return run, nil
}

// ListRuns returns the most recent runs, newest first. limit <= 0 means all.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]*Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY started_at DESC`
	var (
		rows *sql.Rows
		err  error
	)
	if limit > 0 {
		rows, err = s.db.QueryContext(ctx, query+` LIMIT ?`, limit)
	} else {
		rows, err = s.db.QueryContext(ctx, query)
	}
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// FilesForRun returns a run's file outcomes in insertion order.
func (s *Store) FilesForRun(ctx context.Context, runID string) ([]*FileRecord, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, run_id, source_path, output_path, status, error_message, duration_ms, created_at
         FROM run_files WHERE run_id = ? ORDER BY id`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("list run files: %w", err)
	}
	defer rows.Close()

	var records []*FileRecord
	for rows.Next() {
		var (
			rec        FileRecord
			outputPath sql.NullString
			errMsg     sql.NullString
			durationMS int64
			createdRaw string
		)
		if err := rows.Scan(&rec.ID, &rec.RunID, &rec.SourcePath, &outputPath, &rec.Status, &errMsg, &durationMS, &createdRaw); err != nil {
			return nil, err
		}
		rec.OutputPath = outputPath.String
		rec.Error = errMsg.String
		rec.Duration = time.Duration(durationMS) * time.Millisecond
		if created, err := parseTimeString(createdRaw); err == nil {
			rec.CreatedAt = created
		}
		records = append(records, &rec)
	}
	return records, rows.Err()
}

const runColumns = "id, model, device, status, total_files, enhanced_count, failed_count, started_at, finished_at"

func scanRun(scanner interface{ Scan(dest ...any) error }) (*Run, error) {
	var (
		run         Run
		statusStr   string
		startedRaw  string
		finishedRaw sql.NullString
	)
	if err := scanner.Scan(
		&run.ID,
		&run.Model,
		&run.Device,
		&statusStr,
		&run.TotalFiles,
		&run.Enhanced,
		&run.Failed,
		&startedRaw,
		&finishedRaw,
	); err != nil {
		return nil, err
	}
	run.Status = RunStatus(statusStr)
	if started, err := parseTimeString(startedRaw); err == nil {
		run.StartedAt = started
	}
	if finishedRaw.Valid {
		if finished, err := parseTimeString(finishedRaw.String); err == nil {
			run.FinishedAt = &finished
		}
	}
	return &run, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	return time.Parse(time.RFC3339Nano, value)
}
