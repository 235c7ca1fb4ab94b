// Package convergence runs a Monte Carlo estimator over a grid of sample
// counts and reports how the estimate tightens around the analytical
// constant as the sample count grows.
package convergence

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/mcdist/mcdist/internal/estimator"
	"github.com/mcdist/mcdist/pkg/utils"
)

// Config describes the study grid
type Config struct {
	// SampleCounts is the grid of n values, typically spanning decades
	SampleCounts []int
	// Repeats is the number of independent estimates per n
	Repeats int
	// Seed seeds the study; repeat sources are forked from it
	Seed int64
}

// Point summarizes the repeated estimates for one sample count
type Point struct {
	Samples   int       `json:"samples"`
	Estimate  float64   `json:"estimate"`
	StdDev    float64   `json:"std_dev"`
	AbsError  float64   `json:"abs_error"`
	Estimates []float64 `json:"estimates,omitempty"`
}

// EstimatorFactory builds a fresh estimator around the given source.
// Each repeat gets its own deterministically forked source.
type EstimatorFactory func(rng *utils.RandSource) estimator.Estimator

// ProgressFunc is invoked after each completed repeat
type ProgressFunc func(completed, total int)

// Study runs repeated estimates over the sample-count grid
type Study struct {
	cfg      Config
	factory  EstimatorFactory
	progress ProgressFunc
}

// New creates a study. The factory defaults to the batch strategy.
func New(cfg Config, factory EstimatorFactory) *Study {
	if factory == nil {
		factory = func(rng *utils.RandSource) estimator.Estimator {
			return estimator.NewBatchEstimator(rng)
		}
	}
	return &Study{cfg: cfg, factory: factory}
}

// WithProgress registers a per-repeat progress callback
func (s *Study) WithProgress(fn ProgressFunc) *Study {
	s.progress = fn
	return s
}

// Total returns the number of individual estimates the study will run
func (s *Study) Total() int {
	return len(s.cfg.SampleCounts) * s.cfg.Repeats
}

// Run executes the full grid and returns one point per sample count.
// The standard deviation across repeats shrinks roughly as 1/sqrt(n).
func (s *Study) Run(ctx context.Context) ([]Point, error) {
	if len(s.cfg.SampleCounts) == 0 {
		return nil, fmt.Errorf("study requires at least one sample count")
	}
	if s.cfg.Repeats <= 0 {
		return nil, fmt.Errorf("study repeats must be positive, got %d", s.cfg.Repeats)
	}
	for i, n := range s.cfg.SampleCounts {
		if n <= 0 {
			return nil, fmt.Errorf("sample count %d at index %d: %w", n, i, estimator.ErrInvalidSamples)
		}
	}

	base := utils.NewRandSource(s.cfg.Seed)
	total := s.Total()

	points := make([]Point, 0, len(s.cfg.SampleCounts))
	completed := 0
	for i, n := range s.cfg.SampleCounts {
		estimates := make([]float64, 0, s.cfg.Repeats)
		for r := 0; r < s.cfg.Repeats; r++ {
			est := s.factory(base.Fork(i*s.cfg.Repeats + r))
			value, err := est.EstimateMeanDistance(ctx, n)
			if err != nil {
				return nil, fmt.Errorf("estimate at n=%d repeat %d: %w", n, r, err)
			}
			estimates = append(estimates, value)

			completed++
			if s.progress != nil {
				s.progress(completed, total)
			}
		}

		mean := stat.Mean(estimates, nil)
		stddev := 0.0
		if len(estimates) > 1 {
			stddev = stat.StdDev(estimates, nil)
		}
		points = append(points, Point{
			Samples:   n,
			Estimate:  mean,
			StdDev:    stddev,
			AbsError:  math.Abs(mean - estimator.Exact),
			Estimates: estimates,
		})
	}

	return points, nil
}
