package testkit

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/montanaflynn/stats"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat/distuv"

	"abcalc/domain/abtest"
	"abcalc/internal/analysis"
)

// SimulationConfig describes a Monte Carlo run of repeated two-proportion tests
type SimulationConfig struct {
	ControlRate    float64           // True conversion rate of the control arm
	ExperimentRate float64           // True conversion rate of the experiment arm
	Size           abtest.SampleSize // Units drawn per arm in each trial
	Test           abtest.TestConfig // Test applied to each simulated experiment
	Trials         int
	Workers        int
	Seed           uint64 // Worker w draws from PCG(Seed, w)
}

// SimulationResult summarises how often the test rejected H0
type SimulationResult struct {
	Trials      int
	Rejections  int
	Power       float64 // Rejections / Trials
	MeanDelta   float64 // Mean observed effect across trials
	StdDevDelta float64 // Spread of the observed effect
}

// SimulatePower draws Trials independent experiments at the given sizes and
// rates and reports the fraction in which the test's interval excluded 0.
// With ExperimentRate == ControlRate the result estimates the false positive
// rate instead.
func SimulatePower(ctx context.Context, cfg SimulationConfig) (*SimulationResult, error) {
	if cfg.Trials <= 0 {
		return nil, fmt.Errorf("trials must be positive, got %d", cfg.Trials)
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = 4
	}
	if workers > cfg.Trials {
		workers = cfg.Trials
	}

	rejections := make([]int, workers)
	deltas := make([][]float64, workers)

	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		trials := cfg.Trials / workers
		if w < cfg.Trials%workers {
			trials++
		}
		g.Go(func() error {
			src := rand.NewPCG(cfg.Seed, uint64(w))
			control := distuv.Binomial{N: float64(cfg.Size.Control), P: cfg.ControlRate, Src: src}
			experiment := distuv.Binomial{N: float64(cfg.Size.Experiment), P: cfg.ExperimentRate, Src: src}

			local := make([]float64, 0, trials)
			for i := 0; i < trials; i++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				est, err := analysis.SignificanceTest(
					abtest.BinomialSample{Successes: int(control.Rand()), Total: cfg.Size.Control},
					abtest.BinomialSample{Successes: int(experiment.Rand()), Total: cfg.Size.Experiment},
					cfg.Test,
				)
				if err != nil {
					return err
				}
				if est.Significant() {
					rejections[w]++
				}
				local = append(local, est.Delta)
			}
			deltas[w] = local
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &SimulationResult{Trials: cfg.Trials}
	all := make([]float64, 0, cfg.Trials)
	for w := 0; w < workers; w++ {
		result.Rejections += rejections[w]
		all = append(all, deltas[w]...)
	}
	result.Power = float64(result.Rejections) / float64(result.Trials)

	var err error
	if result.MeanDelta, err = stats.Mean(all); err != nil {
		return nil, err
	}
	if result.StdDevDelta, err = stats.StandardDeviation(all); err != nil {
		return nil, err
	}
	return result, nil
}
