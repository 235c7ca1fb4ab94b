// Package estimator computes Monte Carlo estimates of the expected
// Euclidean distance between two points drawn uniformly at random from
// the unit square.
package estimator

import (
	"context"
	"errors"
	"fmt"
	"math"
)

// Exact is the closed-form expected distance between two uniformly
// distributed points in the unit square: (2 + sqrt(2) + 5*asinh(1)) / 15.
const Exact = 0.5214054331647207

// MaxDistance is the largest possible distance between two points in the
// unit square (the diagonal).
const MaxDistance = math.Sqrt2

// DefaultChunkSize bounds the number of samples processed between context
// checks and progress reports. For the batch strategy it also bounds the
// coordinate buffer (4 draws per sample).
const DefaultChunkSize = 65536

// ErrInvalidSamples is returned when the requested sample count is not a
// positive integer.
var ErrInvalidSamples = errors.New("sample count must be a positive integer")

// Estimator produces a statistical estimate of the expected point-to-point
// distance from n independent samples.
type Estimator interface {
	// Name returns the strategy name
	Name() string
	// EstimateMeanDistance returns the mean of n sampled distances.
	// The result lies in [0, MaxDistance] and converges to Exact as n grows.
	EstimateMeanDistance(ctx context.Context, n int) (float64, error)
}

// ProgressFunc receives the number of samples processed so far and the
// running mean over those samples.
type ProgressFunc func(completed int, runningMean float64)

func validateSamples(n int) error {
	if n <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidSamples, n)
	}
	return nil
}

// distance returns the Euclidean distance between (x1,y1) and (x2,y2).
// math.Sqrt compiles to a hardware square root; math.Pow(v, 0.5) does not.
func distance(x1, x2, y1, y2 float64) float64 {
	dx := x1 - x2
	dy := y1 - y2
	return math.Sqrt(dx*dx + dy*dy)
}
