package estimator

import (
	"context"

	"github.com/mcdist/mcdist/pkg/utils"
)

// BatchEstimator fills a reusable coordinate buffer with one bulk call per
// chunk instead of 4n scalar draws. Chunking keeps memory bounded for large
// n while preserving the exact draw order of the loop strategy.
type BatchEstimator struct {
	rng      *utils.RandSource
	chunk    int
	progress ProgressFunc
}

// NewBatchEstimator creates a batch estimator drawing from rng
func NewBatchEstimator(rng *utils.RandSource) *BatchEstimator {
	return &BatchEstimator{rng: rng, chunk: DefaultChunkSize}
}

// WithProgress registers a progress callback invoked after every chunk
func (e *BatchEstimator) WithProgress(fn ProgressFunc) *BatchEstimator {
	e.progress = fn
	return e
}

// WithChunkSize overrides the per-chunk sample count
func (e *BatchEstimator) WithChunkSize(chunk int) *BatchEstimator {
	if chunk > 0 {
		e.chunk = chunk
	}
	return e
}

func (e *BatchEstimator) Name() string { return "batch" }

// EstimateMeanDistance samples n point pairs with bulk draws and returns
// the mean distance.
func (e *BatchEstimator) EstimateMeanDistance(ctx context.Context, n int) (float64, error) {
	if err := validateSamples(n); err != nil {
		return 0, err
	}

	// Four coordinates per sample: x1, x2, y1, y2.
	buf := make([]float64, 4*utils.Min(e.chunk, n))

	sum := 0.0
	done := 0
	for done < n {
		if err := ctx.Err(); err != nil {
			return 0, err
		}

		m := utils.Min(e.chunk, n-done)
		draws := buf[:4*m]
		e.rng.Float64s(draws)

		for i := 0; i < m; i++ {
			sum += distance(draws[4*i], draws[4*i+1], draws[4*i+2], draws[4*i+3])
		}
		done += m

		if e.progress != nil {
			e.progress(done, sum/float64(done))
		}
	}

	return sum / float64(n), nil
}
