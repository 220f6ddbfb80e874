package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/nhle/automation-sync/internal/model"
)

// SQLiteStore implements the Store interface using a local SQLite database.
type SQLiteStore struct {
	db *sqlx.DB
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens (or creates) a SQLite database at dbPath,
// enables WAL mode, and runs any pending schema migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// A single connection serializes writers and keeps :memory:
	// databases from splitting across connections.
	db.SetMaxOpenConns(1)

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order.
func (s *SQLiteStore) runMigrations() error {
	currentVersion := 0

	// Check if schema_version table exists.
	var tableCount int
	err := s.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}

	if tableCount > 0 {
		err = s.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := s.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}

	return nil
}

// CreateRun inserts a new run. If the run has no ID, a new UUID is
// generated; a zero StartedAt is set to now.
func (s *SQLiteStore) CreateRun(ctx context.Context, run model.Run) (model.Run, error) {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}
	run.StartedAt = run.StartedAt.UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, org_url, started_at, tests_seen, updated, errors)
		VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, run.OrgURL, run.StartedAt,
		run.TestsSeen, run.Updated, run.Errors,
	)
	if err != nil {
		return model.Run{}, fmt.Errorf("creating run: %w", err)
	}

	return run, nil
}

// FinishRun stamps a run as finished with its final counters.
func (s *SQLiteStore) FinishRun(ctx context.Context, id string, stats RunStats) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE runs
		SET finished_at = ?, tests_seen = ?, updated = ?, errors = ?
		WHERE id = ?`,
		time.Now().UTC(), stats.TestsSeen, stats.Updated, stats.Errors, id,
	)
	if err != nil {
		return fmt.Errorf("finishing run %s: %w", id, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking finished run %s: %w", id, err)
	}
	if rows == 0 {
		return fmt.Errorf("run %s not found", id)
	}
	return nil
}

// GetRuns retrieves the most recent runs, newest first.
func (s *SQLiteStore) GetRuns(ctx context.Context, limit int) ([]model.Run, error) {
	query := "SELECT * FROM runs ORDER BY started_at DESC"
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	var runs []model.Run
	if err := s.db.SelectContext(ctx, &runs, query); err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	return runs, nil
}

// RecordSync inserts a sync record. If the record has no ID, a new UUID is
// generated.
func (s *SQLiteStore) RecordSync(ctx context.Context, rec model.SyncRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.SyncedAt.IsZero() {
		rec.SyncedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sync_records (
			id, run_id, case_id, test_name,
			previous_status, new_status, action, synced_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.RunID, rec.CaseID, rec.TestName,
		rec.PreviousStatus, rec.NewStatus, rec.Action, rec.SyncedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("recording sync of case %d: %w", rec.CaseID, err)
	}
	return nil
}

// GetSyncRecords retrieves sync records matching the filter, newest first.
func (s *SQLiteStore) GetSyncRecords(
	ctx context.Context,
	filter SyncFilter,
) ([]model.SyncRecord, error) {
	var conditions []string
	var args []interface{}

	if filter.RunID != nil {
		conditions = append(conditions, "run_id = ?")
		args = append(args, *filter.RunID)
	}
	if filter.CaseID != nil {
		conditions = append(conditions, "case_id = ?")
		args = append(args, *filter.CaseID)
	}
	if filter.Action != nil {
		conditions = append(conditions, "action = ?")
		args = append(args, *filter.Action)
	}

	query := "SELECT * FROM sync_records"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY synced_at DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}
	if filter.Offset > 0 {
		if filter.Limit <= 0 {
			query += " LIMIT -1"
		}
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	var records []model.SyncRecord
	if err := s.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, fmt.Errorf("querying sync records: %w", err)
	}
	return records, nil
}

// RunRecorder records sync outcomes against a single run.
type RunRecorder struct {
	store Store
	runID string
}

// ForRun returns a recorder that stamps every record with runID.
func (s *SQLiteStore) ForRun(runID string) *RunRecorder {
	return &RunRecorder{store: s, runID: runID}
}

// RecordSync implements reporter.Recorder.
func (r *RunRecorder) RecordSync(ctx context.Context, rec model.SyncRecord) error {
	rec.RunID = r.runID
	return r.store.RecordSync(ctx, rec)
}
