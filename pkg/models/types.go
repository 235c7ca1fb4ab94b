package models

import "time"

// RunStatus represents the status of an estimation run
type RunStatus string

const (
	RunStatusPending   RunStatus = "pending"
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
	RunStatusCancelled RunStatus = "cancelled"
)

// IsTerminal reports whether the status is a final state
func (s RunStatus) IsTerminal() bool {
	switch s {
	case RunStatusCompleted, RunStatusFailed, RunStatusCancelled:
		return true
	}
	return false
}

// Run represents one estimation run tracked by the daemon
type Run struct {
	ID        string          `json:"id"`
	Status    RunStatus       `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
	StartedAt time.Time       `json:"started_at,omitempty"`
	EndedAt   time.Time       `json:"ended_at,omitempty"`
	Result    *EstimateResult `json:"result,omitempty"`
	Error     string          `json:"error,omitempty"`
}

// EstimateResult contains the outcome of a completed estimation
type EstimateResult struct {
	Estimate   float64       `json:"estimate"`
	Samples    int           `json:"samples"`
	Method     string        `json:"method"`
	Seed       int64         `json:"seed"`
	Elapsed    time.Duration `json:"elapsed_ns"`
	PerSecond  float64       `json:"samples_per_second"`
}

// MetricPoint is one time-series observation recorded during a run
type MetricPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Name      string    `json:"name"`
	Value     float64   `json:"value"`
}

// Aggregation summarizes a metric's time series
type Aggregation struct {
	Count int     `json:"count"`
	Mean  float64 `json:"mean"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Last  float64 `json:"last"`
}
