// Command mcdist estimates the expected distance between two uniform
// random points in the unit square from the command line, without the
// daemon.
package main

import (
	"fmt"
	"math"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/mcdist/mcdist/internal/convergence"
	"github.com/mcdist/mcdist/internal/estimator"
	"github.com/mcdist/mcdist/pkg/config"
	"github.com/mcdist/mcdist/pkg/logger"
	"github.com/mcdist/mcdist/pkg/utils"
)

var logLevel string

var rootCmd = &cobra.Command{
	Use:   "mcdist",
	Short: "Monte Carlo mean point-pair distance in the unit square",
	Long: `mcdist estimates the expected Euclidean distance between two points
drawn uniformly at random from the unit square. The analytical value is
(2 + sqrt(2) + 5*asinh(1)) / 15.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.SetDefault(logger.NewText(logLevel, os.Stderr))
	},
}

func buildEstimator(method string, rng *utils.RandSource, workers, chunkSize int) (estimator.Estimator, error) {
	switch method {
	case "loop":
		return estimator.NewLoopEstimator(rng).WithChunkSize(chunkSize), nil
	case "batch":
		return estimator.NewBatchEstimator(rng).WithChunkSize(chunkSize), nil
	case "parallel":
		return estimator.NewParallelEstimator(rng, workers).WithChunkSize(chunkSize), nil
	default:
		return nil, fmt.Errorf("unknown method %q (must be one of %v)", method, config.Methods)
	}
}

func newEstimateCmd() *cobra.Command {
	var (
		method    string
		samples   int
		seed      int64
		workers   int
		chunkSize int
	)

	cmd := &cobra.Command{
		Use:   "estimate",
		Short: "Run a single estimate and print the result",
		RunE: func(cmd *cobra.Command, args []string) error {
			rng := utils.NewRandSource(seed)
			est, err := buildEstimator(method, rng, workers, chunkSize)
			if err != nil {
				return err
			}

			started := time.Now()
			value, err := est.EstimateMeanDistance(cmd.Context(), samples)
			if err != nil {
				return err
			}
			elapsed := time.Since(started)

			fmt.Printf("method:      %s\n", est.Name())
			fmt.Printf("samples:     %d\n", samples)
			fmt.Printf("seed:        %d\n", rng.Seed())
			fmt.Printf("estimate:    %.10f\n", value)
			fmt.Printf("analytical:  %.10f\n", estimator.Exact)
			fmt.Printf("abs error:   %.2e\n", math.Abs(value-estimator.Exact))
			fmt.Printf("elapsed:     %s (%.0f samples/s)\n",
				elapsed.Round(time.Microsecond), float64(samples)/elapsed.Seconds())
			return nil
		},
	}

	cmd.Flags().StringVarP(&method, "method", "m", "batch", "sampling strategy: loop, batch or parallel")
	cmd.Flags().IntVarP(&samples, "samples", "n", 1_000_000, "number of point pairs to draw")
	cmd.Flags().Int64VarP(&seed, "seed", "s", 0, "random seed (0 means time-based)")
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "worker count for the parallel method (0 means GOMAXPROCS)")
	cmd.Flags().IntVar(&chunkSize, "chunk-size", 0, "samples per chunk (0 means default)")
	return cmd
}

func newConvergeCmd() *cobra.Command {
	var (
		method   string
		samples  []int
		repeats  int
		seed     int64
		plotPath string
	)

	cmd := &cobra.Command{
		Use:   "converge",
		Short: "Study how the estimate tightens as the sample count grows",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !config.ValidMethod(method) {
				return fmt.Errorf("unknown method %q (must be one of %v)", method, config.Methods)
			}

			study := convergence.New(convergence.Config{
				SampleCounts: samples,
				Repeats:      repeats,
				Seed:         seed,
			}, func(rng *utils.RandSource) estimator.Estimator {
				est, _ := buildEstimator(method, rng, 0, 0)
				return est
			})

			bar := progressbar.Default(int64(study.Total()), "estimating")
			study.WithProgress(func(completed, total int) {
				_ = bar.Set(completed)
			})

			points, err := study.Run(cmd.Context())
			if err != nil {
				return err
			}
			_ = bar.Finish()

			fmt.Printf("\nanalytical value: %.10f\n\n", estimator.Exact)
			fmt.Printf("%12s  %14s  %12s  %12s\n", "samples", "estimate", "std dev", "abs error")
			for _, pt := range points {
				fmt.Printf("%12d  %14.10f  %12.2e  %12.2e\n",
					pt.Samples, pt.Estimate, pt.StdDev, pt.AbsError)
			}

			if plotPath != "" {
				if err := convergence.PlotCurve(points, estimator.Exact, plotPath); err != nil {
					return err
				}
				fmt.Printf("\nwrote %s\n", plotPath)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&method, "method", "m", "batch", "sampling strategy: loop, batch or parallel")
	cmd.Flags().IntSliceVarP(&samples, "samples", "n", []int{100, 1000, 10_000, 100_000, 1_000_000}, "sample count grid")
	cmd.Flags().IntVarP(&repeats, "repeats", "r", 10, "independent estimates per sample count")
	cmd.Flags().Int64VarP(&seed, "seed", "s", 0, "random seed (0 means time-based)")
	cmd.Flags().StringVar(&plotPath, "plot", "", "write an estimate-vs-samples plot to this path")
	return cmd
}

func newHistCmd() *cobra.Command {
	var (
		samples int
		bins    int
		seed    int64
		outPath string
	)

	cmd := &cobra.Command{
		Use:   "hist",
		Short: "Sample the distance spectrum into a histogram",
		RunE: func(cmd *cobra.Command, args []string) error {
			rng := utils.NewRandSource(seed)
			hist := estimator.NewDistanceHistogram(rng, bins)
			if err := hist.Collect(cmd.Context(), samples); err != nil {
				return err
			}

			fmt.Printf("entries:     %d\n", hist.Entries())
			fmt.Printf("mean:        %.10f\n", hist.Mean())
			fmt.Printf("analytical:  %.10f\n", estimator.Exact)
			fmt.Printf("std dev:     %.10f\n", hist.StdDev())

			if outPath != "" {
				if err := convergence.PlotHistogram(hist.H1D(), outPath); err != nil {
					return err
				}
				fmt.Printf("wrote %s\n", outPath)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&samples, "samples", "n", 1_000_000, "number of point pairs to draw")
	cmd.Flags().IntVarP(&bins, "bins", "b", estimator.DefaultHistogramBins, "histogram bin count")
	cmd.Flags().Int64VarP(&seed, "seed", "s", 0, "random seed (0 means time-based)")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "write the histogram plot to this path")
	return cmd
}

func main() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	rootCmd.AddCommand(newEstimateCmd(), newConvergeCmd(), newHistCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
