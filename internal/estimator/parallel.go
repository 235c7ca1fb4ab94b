package estimator

import (
	"context"
	"runtime"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/mcdist/mcdist/pkg/utils"
)

// ParallelEstimator partitions the sample count across workers and combines
// the partial means as a weighted mean. Samples are independent and
// identically distributed, so no ordering guarantees are needed; each worker
// draws from a sub-source forked deterministically from the base seed.
type ParallelEstimator struct {
	rng     *utils.RandSource
	workers int
	chunk   int
}

// NewParallelEstimator creates a parallel estimator forking worker sources
// from rng. workers <= 0 means GOMAXPROCS.
func NewParallelEstimator(rng *utils.RandSource, workers int) *ParallelEstimator {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &ParallelEstimator{rng: rng, workers: workers, chunk: DefaultChunkSize}
}

// WithChunkSize overrides the per-chunk sample count of each worker
func (e *ParallelEstimator) WithChunkSize(chunk int) *ParallelEstimator {
	if chunk > 0 {
		e.chunk = chunk
	}
	return e
}

func (e *ParallelEstimator) Name() string { return "parallel" }

// EstimateMeanDistance splits n across the workers and returns the mean of
// the partial estimates weighted by partition size.
func (e *ParallelEstimator) EstimateMeanDistance(ctx context.Context, n int) (float64, error) {
	if err := validateSamples(n); err != nil {
		return 0, err
	}

	workers := utils.Min(e.workers, n)

	means := make([]float64, workers)
	weights := make([]float64, workers)
	errs := make([]error, workers)

	var wg sync.WaitGroup
	wg.Add(workers)
	for j := 0; j < workers; j++ {
		go func(job int) {
			defer wg.Done()
			begin := n * job / workers
			end := n * (job + 1) / workers
			size := end - begin
			if size == 0 {
				return
			}

			part := NewBatchEstimator(e.rng.Fork(job)).WithChunkSize(e.chunk)
			mean, err := part.EstimateMeanDistance(ctx, size)
			if err != nil {
				errs[job] = err
				return
			}
			means[job] = mean
			weights[job] = float64(size) / float64(n)
		}(j)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return 0, err
		}
	}

	return stat.Mean(means, weights), nil
}
