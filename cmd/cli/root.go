package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"abcalc/internal/analysis"
	"abcalc/internal/config"
	"abcalc/internal/report"
)

const (
	flagLogLevel    = "log-level"
	flagLogFormat   = "log-format"
	flagFormat      = "format"
	flagNoColor     = "no-color"
	flagInteractive = "interactive"

	logFormatJSON = "json"
	logFormatText = "text"
)

// cli carries what every subcommand needs once flags are parsed
type cli struct {
	cfg      *config.Config
	logger   zerolog.Logger
	calc     *analysis.Calculator
	renderer *report.Renderer
}

func newRootCmd(cfg *config.Config) *cobra.Command {
	app := &cli{cfg: cfg, logger: zerolog.Nop()}

	rootCmd := &cobra.Command{
		Use:   "abcalc",
		Short: "A/B test significance and sample size calculators",
		Long: `Statistical calculators for two-group A/B tests.

  significance   two-proportion z-test with a confidence interval for the effect
  samplesize     minimum sample size per group for a proportion, mean or
                 empirical-variance metric

Every input can be passed as a flag. With --interactive, or when none of a
command's inputs are given, they are asked for one at a time.

Defaults are read from the environment (or a .env file):
- ABCALC_ALPHA (default: 0.05)
- ABCALC_POWER (default: 0.8)
- ABCALC_RATIO (default: 1)
- ABCALC_TWO_SIDED (default: true)
- ABCALC_EQUAL_VARIANCE (default: true, significance test only)
- ABCALC_FORMAT text|json|markdown|html (default: text)
- ABCALC_LOG_LEVEL, ABCALC_LOG_FORMAT`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.setup(cmd)
		},
	}

	rootCmd.PersistentFlags().String(flagLogLevel, cfg.Logging.Level, "Log level (trace|debug|info|warn|error|disabled)")
	rootCmd.PersistentFlags().String(flagLogFormat, cfg.Logging.Format, "Log format (text|json)")
	rootCmd.PersistentFlags().String(flagFormat, cfg.Output.Format, "Result format (text|json|markdown|html)")
	rootCmd.PersistentFlags().Bool(flagNoColor, !cfg.Output.Color, "Disable styled text output")
	rootCmd.PersistentFlags().BoolP(flagInteractive, "i", false, "Ask for every input interactively")

	rootCmd.AddCommand(
		newSignificanceCmd(app),
		newSampleSizeCmd(app),
	)

	return rootCmd
}

// setup builds the logger, calculator and renderer from the parsed persistent flags.
func (c *cli) setup(cmd *cobra.Command) error {
	logLvlStr, err := cmd.Flags().GetString(flagLogLevel)
	if err != nil {
		return err
	}
	logLvl, err := zerolog.ParseLevel(logLvlStr)
	if err != nil {
		return err
	}

	logFormatStr, err := cmd.Flags().GetString(flagLogFormat)
	if err != nil {
		return err
	}

	var logWriter io.Writer
	switch strings.ToLower(logFormatStr) {
	case logFormatJSON:
		logWriter = cmd.ErrOrStderr()
	case logFormatText:
		logWriter = zerolog.ConsoleWriter{Out: cmd.ErrOrStderr(), NoColor: true}
	default:
		return fmt.Errorf("invalid logging format: %s", logFormatStr)
	}
	c.logger = zerolog.New(logWriter).Level(logLvl).With().Timestamp().Logger()

	formatStr, err := cmd.Flags().GetString(flagFormat)
	if err != nil {
		return err
	}
	format, err := report.ParseFormat(formatStr)
	if err != nil {
		return err
	}
	noColor, err := cmd.Flags().GetBool(flagNoColor)
	if err != nil {
		return err
	}

	c.calc = analysis.NewCalculator(c.logger)
	c.renderer = report.NewRenderer(format, !noColor)
	return nil
}
