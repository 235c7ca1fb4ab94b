package mcd

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/mcdist/mcdist/internal/metrics"
	"github.com/mcdist/mcdist/pkg/models"
	"github.com/mcdist/mcdist/pkg/utils"
)

// RunRecord couples a run's state with its input and metrics collector
type RunRecord struct {
	Run       *models.Run
	Input     *RunInput
	Collector *metrics.Collector
}

// RunStore is the in-memory registry of estimation runs
type RunStore struct {
	mu   sync.RWMutex
	runs map[string]*RunRecord
}

// NewRunStore creates an empty run store
func NewRunStore() *RunStore {
	return &RunStore{
		runs: make(map[string]*RunRecord),
	}
}

// snapshot copies the record's run state so callers can read it without
// racing the executor's mutations. Must be called with the lock held.
// Input is immutable after Create and Collector carries its own lock, so
// both are shared.
func snapshot(rec *RunRecord) *RunRecord {
	run := *rec.Run
	return &RunRecord{
		Run:       &run,
		Input:     rec.Input,
		Collector: rec.Collector,
	}
}

// Create registers a new pending run. An empty runID gets a generated one.
func (s *RunStore) Create(runID string, input *RunInput) (*RunRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if runID == "" {
		runID = utils.GenerateRunID()
	}
	if strings.ContainsAny(runID, "/:") {
		return nil, fmt.Errorf("run ID cannot contain '/' or ':': %s", runID)
	}
	if _, exists := s.runs[runID]; exists {
		return nil, fmt.Errorf("run already exists: %s", runID)
	}

	rec := &RunRecord{
		Run: &models.Run{
			ID:        runID,
			Status:    models.RunStatusPending,
			CreatedAt: time.Now().UTC(),
		},
		Input: input,
	}
	s.runs[runID] = rec
	return snapshot(rec), nil
}

// Get returns a snapshot of the record for runID
func (s *RunStore) Get(runID string) (*RunRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.runs[runID]
	if !ok {
		return nil, false
	}
	return snapshot(rec), true
}

// List returns up to limit records, newest first
func (s *RunStore) List(limit int) []*RunRecord {
	return s.ListFiltered(limit, 0, "")
}

// ListFiltered returns records filtered by status with pagination, newest first.
// An empty status matches everything.
func (s *RunStore) ListFiltered(limit, offset int, status models.RunStatus) []*RunRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 50
	}
	offset = utils.Max(offset, 0)

	all := make([]*RunRecord, 0, len(s.runs))
	for _, rec := range s.runs {
		if status != "" && rec.Run.Status != status {
			continue
		}
		all = append(all, snapshot(rec))
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].Run.CreatedAt.After(all[j].Run.CreatedAt)
	})

	if offset >= len(all) {
		return []*RunRecord{}
	}
	end := utils.Min(offset+limit, len(all))
	return all[offset:end]
}

// SetStatus transitions a run and stamps the relevant timestamps
func (s *RunStore) SetStatus(runID string, status models.RunStatus, errMsg string) (*RunRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.runs[runID]
	if !ok {
		return nil, fmt.Errorf("run not found: %s", runID)
	}

	rec.Run.Status = status
	if errMsg != "" {
		rec.Run.Error = errMsg
	}

	now := time.Now().UTC()
	switch status {
	case models.RunStatusRunning:
		if rec.Run.StartedAt.IsZero() {
			rec.Run.StartedAt = now
		}
	case models.RunStatusCompleted, models.RunStatusFailed, models.RunStatusCancelled:
		rec.Run.EndedAt = now
	}

	return snapshot(rec), nil
}

// SetResult attaches the final estimate to a run
func (s *RunStore) SetResult(runID string, result *models.EstimateResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.runs[runID]
	if !ok {
		return fmt.Errorf("run not found: %s", runID)
	}
	rec.Run.Result = result
	return nil
}

// SetCollector attaches the metrics collector feeding a running run
func (s *RunStore) SetCollector(runID string, collector *metrics.Collector) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.runs[runID]
	if !ok {
		return fmt.Errorf("run not found: %s", runID)
	}
	rec.Collector = collector
	return nil
}

// GetCollector returns the collector for a run, if any
func (s *RunStore) GetCollector(runID string) (*metrics.Collector, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.runs[runID]
	if !ok || rec.Collector == nil {
		return nil, false
	}
	return rec.Collector, true
}
