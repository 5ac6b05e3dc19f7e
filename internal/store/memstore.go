package store

import (
	"sort"
	"sync"
)

// MemStore is an in-memory Store for tests and dry runs.
type MemStore struct {
	mu      sync.Mutex
	runs    map[int64]*Run
	results map[int64]*MetricResult
	nextRun int64
	nextRes int64
}

// NewMemStore returns an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		runs:    make(map[int64]*Run),
		results: make(map[int64]*MetricResult),
		nextRun: 1,
		nextRes: 1,
	}
}

func (m *MemStore) Close() error { return nil }

func (m *MemStore) SaveRun(run *Run) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if run.CreatedAt == "" {
		run.CreatedAt = nowUTC()
	}
	run.ID = m.nextRun
	m.nextRun++
	cp := *run
	m.runs[run.ID] = &cp
	return run.ID, nil
}

func (m *MemStore) GetRun(id int64) (*Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.runs[id]
	if !ok {
		return nil, nil
	}
	cp := *r
	return &cp, nil
}

func (m *MemStore) ListRuns(limit int) ([]*Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Run, 0, len(m.runs))
	for _, r := range m.runs {
		cp := *r
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MemStore) SaveResult(r *MetricResult) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r.ID = m.nextRes
	m.nextRes++
	cp := *r
	m.results[r.ID] = &cp
	return r.ID, nil
}

func (m *MemStore) ListResultsByRun(runID int64) ([]*MetricResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*MetricResult
	for _, r := range m.results {
		if r.RunID == runID {
			cp := *r
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Primary != out[j].Primary {
			return out[i].Primary
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}
