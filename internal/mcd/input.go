package mcd

import (
	"fmt"

	"github.com/mcdist/mcdist/internal/estimator"
	"github.com/mcdist/mcdist/pkg/config"
)

// RunInput describes one estimation request. Zero fields are filled from
// the daemon's configured defaults before validation.
type RunInput struct {
	// Samples is the number of point pairs to draw
	Samples int `json:"samples"`
	// Method is the sampling strategy: loop, batch or parallel
	Method string `json:"method,omitempty"`
	// Seed seeds the run's random source; 0 means time-based
	Seed int64 `json:"seed,omitempty"`
	// Workers is the partition count for the parallel method
	Workers int `json:"workers,omitempty"`
	// ChunkSize bounds the per-chunk sample count
	ChunkSize int `json:"chunk_size,omitempty"`
	// HistogramBins, when positive, also collects a distance histogram
	HistogramBins int `json:"histogram_bins,omitempty"`
}

// ApplyDefaults fills unset fields from the daemon defaults
func (in *RunInput) ApplyDefaults(defaults config.EstimatorConfig) {
	if in.Method == "" {
		in.Method = defaults.Method
	}
	if in.Samples == 0 {
		in.Samples = defaults.Samples
	}
	if in.Seed == 0 {
		in.Seed = defaults.Seed
	}
	if in.Workers == 0 {
		in.Workers = defaults.Workers
	}
	if in.ChunkSize == 0 {
		in.ChunkSize = defaults.ChunkSize
	}
}

// Validate checks the input after defaults have been applied
func (in *RunInput) Validate() error {
	if !config.ValidMethod(in.Method) {
		return fmt.Errorf("invalid method: %q (must be loop, batch, or parallel)", in.Method)
	}
	if in.Samples <= 0 {
		return fmt.Errorf("%w: got %d", estimator.ErrInvalidSamples, in.Samples)
	}
	if in.Workers < 0 {
		return fmt.Errorf("workers cannot be negative, got %d", in.Workers)
	}
	if in.ChunkSize < 0 {
		return fmt.Errorf("chunk_size cannot be negative, got %d", in.ChunkSize)
	}
	if in.HistogramBins < 0 {
		return fmt.Errorf("histogram_bins cannot be negative, got %d", in.HistogramBins)
	}
	return nil
}
