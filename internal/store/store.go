// Package store persists experiment runs and their inference results.
//
// Every pipeline run writes one Run row plus one MetricResult row per
// metric (primary and each guardrail), so past decisions can be listed and
// re-rendered without re-deriving any statistic.
package store

// DefaultDBPath is the default relative path for the SQLite DB
// (per-workspace). Open() creates the parent dir (e.g. .liftgate).
const DefaultDBPath = ".liftgate/liftgate.db"

// Run is one recorded pipeline execution.
type Run struct {
	ID            int64
	ExperimentID  string
	Definition    string // definition name (embedded name or file path)
	Seed          uint64
	Verdict       string
	Justification string
	CreatedAt     string // RFC3339 UTC
}

// MetricResult is one metric's full inference output within a run.
type MetricResult struct {
	ID      int64
	RunID   int64
	Metric  string
	Primary bool

	ControlTrials      int64
	ControlSuccesses   int64
	TreatmentTrials    int64
	TreatmentSuccesses int64

	RateControl   float64
	RateTreatment float64
	RelativeLift  float64
	LiftDefined   bool
	PValue        float64
	CILow         float64
	CIHigh        float64
	Significant   bool

	// HarmThreshold is meaningful only for guardrail rows.
	HarmThreshold float64
}

// Store is the persistence facade. Domain and CLI code use only this
// interface; implementation is SQLite or in-memory.
type Store interface {
	// SaveRun inserts a run and returns its id. CreatedAt is set by the
	// store if empty.
	SaveRun(run *Run) (int64, error)
	// GetRun returns the run by id, or nil if absent.
	GetRun(id int64) (*Run, error)
	// ListRuns returns the most recent runs, newest first. limit <= 0
	// means no limit.
	ListRuns(limit int) ([]*Run, error)

	// SaveResult inserts one metric result row.
	SaveResult(r *MetricResult) (int64, error)
	// ListResultsByRun returns the run's results, primary metric first,
	// then guardrails in insertion order.
	ListResultsByRun(runID int64) ([]*MetricResult, error)

	Close() error
}
