package store

// schemaVersionV1 is the current schema.
const schemaVersionV1 = 1

// schemaV1 holds runs and their per-metric inference results.
var schemaV1 = `
CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL);

CREATE TABLE IF NOT EXISTS runs (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	experiment_id  TEXT NOT NULL,
	definition     TEXT NOT NULL,
	seed           INTEGER NOT NULL DEFAULT 0,
	verdict        TEXT NOT NULL,
	justification  TEXT NOT NULL,
	created_at     TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS results (
	id                   INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id               INTEGER NOT NULL REFERENCES runs(id),
	metric               TEXT NOT NULL,
	is_primary           INTEGER NOT NULL DEFAULT 0,
	control_trials       INTEGER NOT NULL,
	control_successes    INTEGER NOT NULL,
	treatment_trials     INTEGER NOT NULL,
	treatment_successes  INTEGER NOT NULL,
	rate_control         REAL NOT NULL,
	rate_treatment       REAL NOT NULL,
	relative_lift        REAL NOT NULL,
	lift_defined         INTEGER NOT NULL DEFAULT 1,
	p_value              REAL NOT NULL,
	ci_low               REAL NOT NULL,
	ci_high              REAL NOT NULL,
	significant          INTEGER NOT NULL DEFAULT 0,
	harm_threshold       REAL NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_runs_experiment ON runs(experiment_id);
CREATE INDEX IF NOT EXISTS idx_results_run ON results(run_id);
`
