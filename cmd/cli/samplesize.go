package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"abcalc/domain/abtest"
	"abcalc/internal/prompt"
	"abcalc/internal/report"
)

const (
	flagMetric   = "metric"
	flagPower    = "power"
	flagDelta    = "delta"
	flagBaseline = "baseline"
	flagRatio    = "ratio"
	flagStd      = "std"
	flagDeltaSE  = "delta-se"
	flagAANum1   = "aa-num1"
	flagAANum2   = "aa-num2"
)

// requiredByMetric lists the flags each variance strategy reads besides alpha, power and sidedness.
var requiredByMetric = map[abtest.VarianceStrategy][]string{
	abtest.StrategyProportion: {flagDelta, flagBaseline},
	abtest.StrategyMean:       {flagDelta},
	abtest.StrategyEmpirical:  {flagDelta, flagDeltaSE, flagAANum1, flagAANum2},
}

func newSampleSizeCmd(app *cli) *cobra.Command {
	var (
		req    abtest.SampleSizeRequest
		metric string
		std    float64
	)

	cmd := &cobra.Command{
		Use:     "samplesize",
		Aliases: []string{"size", "n"},
		Short:   "Minimum sample size per group for an A/B test",
		Long: `Compute the minimum number of units per group needed to detect a given
minimum detectable effect (--delta, absolute units) at the chosen alpha and power.

Metrics:
  proportion  binomial metric such as click-through rate; needs --baseline
  mean        mean metric with a known standard deviation; needs --std
  empirical   any metric, using the delta standard error from an A/A test;
              needs --delta-se, --aa-num1 and --aa-num2; always 1:1 allocation

Example: abcalc samplesize --metric proportion --baseline 0.2 --delta 0.05 --equal-variance`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			interactive, err := sampleSizeWantsPrompts(cmd, metric)
			if err != nil {
				return err
			}

			if interactive {
				p := prompt.New(cmd.InOrStdin(), cmd.OutOrStdout())
				req, err = prompt.SampleSizeSession(p, prompt.Defaults{EqualVariance: req.EqualVariance})
				if err != nil {
					return err
				}
			} else {
				if req.Strategy, err = abtest.ParseVarianceStrategy(metric); err != nil {
					return err
				}
				if cmd.Flags().Changed(flagStd) {
					req.StdDev = &std
				}
			}

			return app.runSampleSize(cmd, req)
		},
	}

	cmd.Flags().StringVar(&metric, flagMetric, "", "Metric type (proportion|mean|empirical)")
	cmd.Flags().Float64Var(&req.Alpha, flagAlpha, app.cfg.Defaults.Alpha, "Significance level")
	cmd.Flags().Float64Var(&req.Power, flagPower, app.cfg.Defaults.Power, "Statistical power (1 - beta)")
	cmd.Flags().Float64Var(&req.Delta, flagDelta, 0, "Minimum detectable effect, absolute")
	cmd.Flags().BoolVar(&req.TwoSided, flagTwoSided, app.cfg.Defaults.TwoSided, "Two-sided test (--two-sided=false for one-sided)")
	cmd.Flags().Float64Var(&req.Baseline, flagBaseline, 0, "Baseline proportion of the control group (proportion metric)")
	cmd.Flags().Float64Var(&req.Ratio, flagRatio, app.cfg.Defaults.Ratio, "Experiment : control size ratio (proportion and mean metrics)")
	cmd.Flags().BoolVar(&req.EqualVariance, flagEqualVariance, false, "Pool baseline and target variance (proportion metric)")
	cmd.Flags().Float64Var(&std, flagStd, 0, "Standard deviation of the metric (mean metric)")
	cmd.Flags().Float64Var(&req.DeltaSE, flagDeltaSE, 0, "Standard error of the delta in the A/A test (empirical metric)")
	cmd.Flags().IntVar(&req.AANum1, flagAANum1, 0, "Units in group 1 of the A/A test (empirical metric)")
	cmd.Flags().IntVar(&req.AANum2, flagAANum2, 0, "Units in group 2 of the A/A test (empirical metric)")

	return cmd
}

func (c *cli) runSampleSize(cmd *cobra.Command, req abtest.SampleSizeRequest) error {
	c.logger.Debug().
		Stringer("metric", req.Strategy).
		Float64("alpha", req.Alpha).
		Float64("power", req.Power).
		Float64("delta", req.Delta).
		Msg("running sample size calculation")

	size, err := c.calc.SampleSize(req)
	if err != nil {
		return err
	}

	return c.renderer.Render(cmd.OutOrStdout(), report.NewSampleSize(req, size))
}

// sampleSizeWantsPrompts is wantsPrompts for a command whose required flags depend on --metric.
func sampleSizeWantsPrompts(cmd *cobra.Command, metric string) (bool, error) {
	interactive, err := cmd.Flags().GetBool(flagInteractive)
	if err != nil {
		return false, err
	}
	if interactive {
		return true, nil
	}

	if !cmd.Flags().Changed(flagMetric) {
		for _, name := range []string{flagDelta, flagBaseline, flagStd, flagDeltaSE, flagAANum1, flagAANum2} {
			if cmd.Flags().Changed(name) {
				return false, fmt.Errorf("--%s is required when inputs are given as flags (or run with --interactive)", flagMetric)
			}
		}
		return true, nil
	}

	strategy, err := abtest.ParseVarianceStrategy(metric)
	if err != nil {
		return false, err
	}
	var missing []string
	for _, name := range requiredByMetric[strategy] {
		if !cmd.Flags().Changed(name) {
			missing = append(missing, "--"+name)
		}
	}
	if len(missing) > 0 {
		return false, fmt.Errorf("missing required flags for %s metric %v", strategy, missing)
	}
	return false, nil
}
