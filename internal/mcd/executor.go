package mcd

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mcdist/mcdist/internal/estimator"
	"github.com/mcdist/mcdist/internal/metrics"
	"github.com/mcdist/mcdist/pkg/config"
	"github.com/mcdist/mcdist/pkg/logger"
	"github.com/mcdist/mcdist/pkg/models"
	"github.com/mcdist/mcdist/pkg/utils"
)

// RunExecutor manages asynchronous run execution and per-run cancellation.
type RunExecutor struct {
	store    *RunStore
	defaults config.EstimatorConfig

	mu      sync.Mutex
	cancels map[string]context.CancelFunc
}

var (
	ErrRunNotFound  = errors.New("run not found")
	ErrRunTerminal  = errors.New("run is terminal")
	ErrRunIDMissing = errors.New("run_id is required")
)

// NewRunExecutor creates an executor over the store, with defaults applied
// to run inputs that leave fields unset.
func NewRunExecutor(store *RunStore, defaults config.EstimatorConfig) *RunExecutor {
	return &RunExecutor{
		store:    store,
		defaults: defaults,
		cancels:  make(map[string]context.CancelFunc),
	}
}

// Start begins executing a run asynchronously.
// Returns the updated run state (RUNNING) or an error.
func (e *RunExecutor) Start(runID string) (*RunRecord, error) {
	if runID == "" {
		return nil, ErrRunIDMissing
	}

	rec, ok := e.store.Get(runID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}

	switch {
	case rec.Run.Status == models.RunStatusRunning:
		return rec, nil
	case rec.Run.Status.IsTerminal():
		return nil, fmt.Errorf("%w: %s", ErrRunTerminal, runID)
	}

	updated, err := e.store.SetStatus(runID, models.RunStatusRunning, "")
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	e.mu.Lock()
	// Replace any existing cancel func (shouldn't happen for non-running, but safe).
	if old, exists := e.cancels[runID]; exists {
		old()
	}
	e.cancels[runID] = cancel
	e.mu.Unlock()

	go e.runEstimate(ctx, runID)
	return updated, nil
}

// Stop requests cancellation for a running run and marks it cancelled.
func (e *RunExecutor) Stop(runID string) (*RunRecord, error) {
	if runID == "" {
		return nil, ErrRunIDMissing
	}

	e.mu.Lock()
	cancel, ok := e.cancels[runID]
	e.mu.Unlock()

	if ok {
		cancel()
	}

	updated, err := e.store.SetStatus(runID, models.RunStatusCancelled, "")
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return updated, nil
}

func (e *RunExecutor) cleanup(runID string) {
	e.mu.Lock()
	if cancel, ok := e.cancels[runID]; ok {
		cancel()
		delete(e.cancels, runID)
	}
	e.mu.Unlock()
}

func (e *RunExecutor) runEstimate(ctx context.Context, runID string) {
	defer e.cleanup(runID)

	rec, ok := e.store.Get(runID)
	if !ok {
		logger.Error("run not found", "run_id", runID)
		return
	}
	input := rec.Input

	collector := metrics.NewCollector()
	collector.Start()
	if err := e.store.SetCollector(runID, collector); err != nil {
		logger.Error("failed to store collector", "run_id", runID, "error", err)
		// Continue anyway, the run itself does not depend on the collector
	}

	rng := utils.NewRandSource(input.Seed)
	est := e.buildEstimator(input, rng, collector)

	logger.Info("starting estimation", "run_id", runID,
		"method", est.Name(), "samples", input.Samples, "seed", rng.Seed())

	started := time.Now()
	value, err := est.EstimateMeanDistance(ctx, input.Samples)
	elapsed := time.Since(started)
	collector.Stop()

	if err != nil {
		if ctx.Err() != nil {
			// Stop() already marked the run cancelled
			logger.Info("estimation cancelled", "run_id", runID)
			return
		}
		logger.Error("estimation failed", "run_id", runID, "error", err)
		if _, setErr := e.store.SetStatus(runID, models.RunStatusFailed, err.Error()); setErr != nil {
			logger.Error("failed to set failed status", "run_id", runID, "error", setErr)
		}
		return
	}

	if input.HistogramBins > 0 {
		// The spectrum pass draws its own samples from a forked source so
		// the estimate above stays reproducible for a given seed.
		hist := estimator.NewDistanceHistogram(rng.Fork(0), input.HistogramBins)
		if histErr := hist.Collect(ctx, input.Samples); histErr != nil {
			logger.Warn("histogram collection failed", "run_id", runID, "error", histErr)
		} else {
			collector.RecordNow(metrics.MetricDistanceMean, hist.Mean())
			collector.RecordNow(metrics.MetricDistanceStdDev, hist.StdDev())
		}
	}

	result := &models.EstimateResult{
		Estimate:  value,
		Samples:   input.Samples,
		Method:    est.Name(),
		Seed:      rng.Seed(),
		Elapsed:   elapsed,
		PerSecond: float64(input.Samples) / elapsed.Seconds(),
	}
	if err := e.store.SetResult(runID, result); err != nil {
		logger.Error("failed to set result", "run_id", runID, "error", err)
	}

	rec, ok = e.store.Get(runID)
	if ok && rec.Run.Status == models.RunStatusRunning {
		if _, err := e.store.SetStatus(runID, models.RunStatusCompleted, ""); err != nil {
			logger.Error("failed to set completed status", "run_id", runID, "error", err)
		} else {
			logger.Info("run completed", "run_id", runID,
				"estimate", value, "samples", input.Samples, "elapsed", elapsed)
		}
	}
}

// buildEstimator wires the requested strategy, with chunk progress feeding
// the run's metrics collector.
func (e *RunExecutor) buildEstimator(input *RunInput, rng *utils.RandSource, collector *metrics.Collector) estimator.Estimator {
	progress := func(completed int, running float64) {
		collector.RecordNow(metrics.MetricRunningEstimate, running)
		collector.RecordNow(metrics.MetricSamplesCompleted, float64(completed))
	}

	switch input.Method {
	case "loop":
		return estimator.NewLoopEstimator(rng).
			WithChunkSize(input.ChunkSize).
			WithProgress(progress)
	case "parallel":
		// Workers report partial means independently, so the parallel
		// strategy records no running estimate.
		return estimator.NewParallelEstimator(rng, input.Workers).
			WithChunkSize(input.ChunkSize)
	default:
		return estimator.NewBatchEstimator(rng).
			WithChunkSize(input.ChunkSize).
			WithProgress(progress)
	}
}
