package estimator

import (
	"context"

	"github.com/mcdist/mcdist/pkg/utils"
)

// LoopEstimator draws the four coordinates of every sample with individual
// scalar calls. It is the reference implementation and the benchmark
// baseline for the batched strategy.
type LoopEstimator struct {
	rng      *utils.RandSource
	chunk    int
	progress ProgressFunc
}

// NewLoopEstimator creates a loop estimator drawing from rng
func NewLoopEstimator(rng *utils.RandSource) *LoopEstimator {
	return &LoopEstimator{rng: rng, chunk: DefaultChunkSize}
}

// WithProgress registers a progress callback invoked after every chunk
func (e *LoopEstimator) WithProgress(fn ProgressFunc) *LoopEstimator {
	e.progress = fn
	return e
}

// WithChunkSize overrides the samples processed between context checks
func (e *LoopEstimator) WithChunkSize(chunk int) *LoopEstimator {
	if chunk > 0 {
		e.chunk = chunk
	}
	return e
}

func (e *LoopEstimator) Name() string { return "loop" }

// EstimateMeanDistance samples n point pairs one draw at a time and
// returns the mean distance.
func (e *LoopEstimator) EstimateMeanDistance(ctx context.Context, n int) (float64, error) {
	if err := validateSamples(n); err != nil {
		return 0, err
	}

	sum := 0.0
	done := 0
	for done < n {
		if err := ctx.Err(); err != nil {
			return 0, err
		}

		m := utils.Min(e.chunk, n-done)
		for i := 0; i < m; i++ {
			x1 := e.rng.Float64()
			x2 := e.rng.Float64()
			y1 := e.rng.Float64()
			y2 := e.rng.Float64()
			sum += distance(x1, x2, y1, y2)
		}
		done += m

		if e.progress != nil {
			e.progress(done, sum/float64(done))
		}
	}

	return sum / float64(n), nil
}
