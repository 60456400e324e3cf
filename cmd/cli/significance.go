package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"abcalc/domain/abtest"
	"abcalc/internal/prompt"
	"abcalc/internal/report"
)

const (
	flagAlpha               = "alpha"
	flagControlTotal        = "control-total"
	flagControlSuccesses    = "control-successes"
	flagExperimentTotal     = "experiment-total"
	flagExperimentSuccesses = "experiment-successes"
	flagTwoSided            = "two-sided"
	flagEqualVariance       = "equal-variance"
)

func newSignificanceCmd(app *cli) *cobra.Command {
	var req abtest.SignificanceRequest

	cmd := &cobra.Command{
		Use:     "significance",
		Aliases: []string{"sig", "ztest"},
		Short:   "Two-proportion z-test: effect size and confidence interval",
		Long: `Compare the success rate of an experiment group against a control group.

Prints the difference in rates (experiment - control) with its confidence
bounds. If the interval contains 0 the difference is not statistically
significant at the chosen alpha.

Example: abcalc significance --control-total 17293 --control-successes 3785 \
           --experiment-total 17260 --experiment-successes 3423 --alpha 0.05`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			interactive, err := wantsPrompts(cmd,
				flagControlTotal, flagControlSuccesses, flagExperimentTotal, flagExperimentSuccesses)
			if err != nil {
				return err
			}
			if interactive {
				p := prompt.New(cmd.InOrStdin(), cmd.OutOrStdout())
				if req, err = prompt.SignificanceSession(p); err != nil {
					return err
				}
			}
			return app.runSignificance(cmd, req)
		},
	}

	cmd.Flags().Float64Var(&req.Config.Alpha, flagAlpha, app.cfg.Defaults.Alpha, "Significance level (false positive rate)")
	cmd.Flags().IntVar(&req.Control.Total, flagControlTotal, 0, "Total events in the control group")
	cmd.Flags().IntVar(&req.Control.Successes, flagControlSuccesses, 0, "Successes in the control group")
	cmd.Flags().IntVar(&req.Experiment.Total, flagExperimentTotal, 0, "Total events in the experiment group")
	cmd.Flags().IntVar(&req.Experiment.Successes, flagExperimentSuccesses, 0, "Successes in the experiment group")
	cmd.Flags().BoolVar(&req.Config.TwoSided, flagTwoSided, app.cfg.Defaults.TwoSided, "Two-sided test (--two-sided=false for one-sided)")
	cmd.Flags().BoolVar(&req.Config.EqualVariance, flagEqualVariance, app.cfg.Defaults.EqualVariance, "Pool the two groups' variance")

	return cmd
}

func (c *cli) runSignificance(cmd *cobra.Command, req abtest.SignificanceRequest) error {
	c.logger.Debug().
		Int("control_total", req.Control.Total).
		Int("experiment_total", req.Experiment.Total).
		Float64("alpha", req.Config.Alpha).
		Msg("running significance test")

	est, err := c.calc.SignificanceTest(req.Control, req.Experiment, req.Config)
	if err != nil {
		return err
	}

	return c.renderer.Render(cmd.OutOrStdout(), report.NewSignificance(req, est))
}

// wantsPrompts decides between flag mode and interactive mode. Prompts are
// used with --interactive or when none of the required flags were given;
// giving only some of them is an error.
func wantsPrompts(cmd *cobra.Command, required ...string) (bool, error) {
	interactive, err := cmd.Flags().GetBool(flagInteractive)
	if err != nil {
		return false, err
	}
	if interactive {
		return true, nil
	}

	var missing []string
	for _, name := range required {
		if !cmd.Flags().Changed(name) {
			missing = append(missing, "--"+name)
		}
	}
	switch len(missing) {
	case 0:
		return false, nil
	case len(required):
		return true, nil
	default:
		return false, fmt.Errorf("missing required flags %v (or run with --interactive)", missing)
	}
}
