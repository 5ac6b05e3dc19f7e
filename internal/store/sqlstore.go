package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// nowUTC returns the current UTC time as an ISO 8601 string.
func nowUTC() string { return time.Now().UTC().Format(time.RFC3339) }

// SqlStore implements Store with SQLite.
type SqlStore struct {
	db *sql.DB
}

// Open opens or creates a SQLite DB at path and runs migrations.
// Creates the parent directory (e.g. .liftgate) if it does not exist.
func Open(path string) (*SqlStore, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	s := &SqlStore{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// OpenMemory opens an in-memory SQLite DB, mainly for tests.
func OpenMemory() (*SqlStore, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open memory sqlite: %w", err)
	}
	s := &SqlStore{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SqlStore) Close() error { return s.db.Close() }

func (s *SqlStore) migrate() error {
	var tableCount int
	err := s.db.QueryRow(
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableCount)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableCount == 0 {
		if _, err := s.db.Exec(schemaV1); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_version(version) VALUES(?)", schemaVersionV1); err != nil {
			return fmt.Errorf("set schema version: %w", err)
		}
		return nil
	}

	var v int
	err = s.db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		v = schemaVersionV1
		if _, err := s.db.Exec("INSERT INTO schema_version(version) VALUES(?)", v); err != nil {
			return fmt.Errorf("set schema version: %w", err)
		}
	} else if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	if v != schemaVersionV1 {
		return fmt.Errorf("unknown schema version %d", v)
	}
	return nil
}

func (s *SqlStore) SaveRun(run *Run) (int64, error) {
	if run.CreatedAt == "" {
		run.CreatedAt = nowUTC()
	}
	res, err := s.db.Exec(
		`INSERT INTO runs(experiment_id, definition, seed, verdict, justification, created_at)
		 VALUES(?, ?, ?, ?, ?, ?)`,
		run.ExperimentID, run.Definition, int64(run.Seed), run.Verdict, run.Justification, run.CreatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	run.ID = id
	return id, nil
}

func (s *SqlStore) GetRun(id int64) (*Run, error) {
	var r Run
	var seed int64
	err := s.db.QueryRow(
		`SELECT id, experiment_id, definition, seed, verdict, justification, created_at
		 FROM runs WHERE id = ?`, id,
	).Scan(&r.ID, &r.ExperimentID, &r.Definition, &seed, &r.Verdict, &r.Justification, &r.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get run %d: %w", id, err)
	}
	r.Seed = uint64(seed)
	return &r, nil
}

func (s *SqlStore) ListRuns(limit int) ([]*Run, error) {
	q := `SELECT id, experiment_id, definition, seed, verdict, justification, created_at
	      FROM runs ORDER BY id DESC`
	var rows *sql.Rows
	var err error
	if limit > 0 {
		rows, err = s.db.Query(q+" LIMIT ?", limit)
	} else {
		rows, err = s.db.Query(q)
	}
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		var r Run
		var seed int64
		if err := rows.Scan(&r.ID, &r.ExperimentID, &r.Definition, &seed, &r.Verdict, &r.Justification, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.Seed = uint64(seed)
		runs = append(runs, &r)
	}
	return runs, rows.Err()
}

func (s *SqlStore) SaveResult(r *MetricResult) (int64, error) {
	res, err := s.db.Exec(
		`INSERT INTO results(run_id, metric, is_primary,
			control_trials, control_successes, treatment_trials, treatment_successes,
			rate_control, rate_treatment, relative_lift, lift_defined,
			p_value, ci_low, ci_high, significant, harm_threshold)
		 VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RunID, r.Metric, boolInt(r.Primary),
		r.ControlTrials, r.ControlSuccesses, r.TreatmentTrials, r.TreatmentSuccesses,
		r.RateControl, r.RateTreatment, r.RelativeLift, boolInt(r.LiftDefined),
		r.PValue, r.CILow, r.CIHigh, boolInt(r.Significant), r.HarmThreshold,
	)
	if err != nil {
		return 0, fmt.Errorf("insert result: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	r.ID = id
	return id, nil
}

func (s *SqlStore) ListResultsByRun(runID int64) ([]*MetricResult, error) {
	rows, err := s.db.Query(
		`SELECT id, run_id, metric, is_primary,
			control_trials, control_successes, treatment_trials, treatment_successes,
			rate_control, rate_treatment, relative_lift, lift_defined,
			p_value, ci_low, ci_high, significant, harm_threshold
		 FROM results WHERE run_id = ? ORDER BY is_primary DESC, id ASC`, runID,
	)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	defer rows.Close()

	var out []*MetricResult
	for rows.Next() {
		var r MetricResult
		var primary, liftDefined, significant int
		if err := rows.Scan(&r.ID, &r.RunID, &r.Metric, &primary,
			&r.ControlTrials, &r.ControlSuccesses, &r.TreatmentTrials, &r.TreatmentSuccesses,
			&r.RateControl, &r.RateTreatment, &r.RelativeLift, &liftDefined,
			&r.PValue, &r.CILow, &r.CIHigh, &significant, &r.HarmThreshold); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		r.Primary = primary != 0
		r.LiftDefined = liftDefined != 0
		r.Significant = significant != 0
		out = append(out, &r)
	}
	return out, rows.Err()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
