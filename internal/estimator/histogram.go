package estimator

import (
	"context"

	"go-hep.org/x/hep/hbook"

	"github.com/mcdist/mcdist/pkg/utils"
)

// DefaultHistogramBins is the bin count used when none is given
const DefaultHistogramBins = 100

// DistanceHistogram accumulates sampled distances into a 1-dim histogram
// over [0, MaxDistance] for spectrum inspection and plotting.
type DistanceHistogram struct {
	rng   *utils.RandSource
	h     *hbook.H1D
	chunk int
}

// NewDistanceHistogram creates a histogram with the given bin count
// filled from rng. bins <= 0 means DefaultHistogramBins.
func NewDistanceHistogram(rng *utils.RandSource, bins int) *DistanceHistogram {
	if bins <= 0 {
		bins = DefaultHistogramBins
	}
	return &DistanceHistogram{
		rng:   rng,
		h:     hbook.NewH1D(bins, 0, MaxDistance),
		chunk: DefaultChunkSize,
	}
}

// Collect samples n point pairs with bulk draws and fills the histogram
// with each distance.
func (d *DistanceHistogram) Collect(ctx context.Context, n int) error {
	if err := validateSamples(n); err != nil {
		return err
	}

	buf := make([]float64, 4*utils.Min(d.chunk, n))

	done := 0
	for done < n {
		if err := ctx.Err(); err != nil {
			return err
		}

		m := utils.Min(d.chunk, n-done)
		draws := buf[:4*m]
		d.rng.Float64s(draws)

		for i := 0; i < m; i++ {
			d.h.Fill(distance(draws[4*i], draws[4*i+1], draws[4*i+2], draws[4*i+3]), 1)
		}
		done += m
	}

	return nil
}

// H1D returns the underlying histogram
func (d *DistanceHistogram) H1D() *hbook.H1D {
	return d.h
}

// Entries returns the number of distances filled so far
func (d *DistanceHistogram) Entries() int64 {
	return d.h.Entries()
}

// Mean returns the histogram mean distance
func (d *DistanceHistogram) Mean() float64 {
	return d.h.XMean()
}

// StdDev returns the histogram standard deviation
func (d *DistanceHistogram) StdDev() float64 {
	return d.h.XStdDev()
}
