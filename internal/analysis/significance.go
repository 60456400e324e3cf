package analysis

import (
	"math"

	"github.com/rs/zerolog"

	"abcalc/domain/abtest"
	"abcalc/internal/errors"
	"abcalc/internal/validation"
)

// Calculator runs the significance test and sample-size formulas. It holds
// no state beyond a logger; every call is independent.
type Calculator struct {
	logger zerolog.Logger
}

// NewCalculator creates a calculator that logs intermediate values at debug level.
func NewCalculator(logger zerolog.Logger) *Calculator {
	return &Calculator{logger: logger.With().Str("module", "analysis").Logger()}
}

var defaultCalculator = NewCalculator(zerolog.Nop())

// SignificanceTest compares two binomial samples with a two-proportion z-test.
// It returns the difference in rates (experiment - control) and its
// confidence bounds, each rounded to 4 decimals. If the interval contains 0
// the difference is not significant at cfg.Alpha.
func SignificanceTest(control, experiment abtest.BinomialSample, cfg abtest.TestConfig) (abtest.EffectEstimate, error) {
	return defaultCalculator.SignificanceTest(control, experiment, cfg)
}

// SignificanceTest is the logging form of the package-level SignificanceTest.
func (c *Calculator) SignificanceTest(control, experiment abtest.BinomialSample, cfg abtest.TestConfig) (abtest.EffectEstimate, error) {
	req := abtest.SignificanceRequest{Control: control, Experiment: experiment, Config: cfg}
	if err := validation.Significance(req); err != nil {
		return abtest.EffectEstimate{}, errors.Wrap(err, "significance test")
	}

	pCont := control.Rate()
	pExp := experiment.Rate()
	delta := pExp - pCont

	se := standardError(control, experiment, cfg.EqualVariance)
	z := NormalQuantile(1 - cfg.EffectiveAlpha())

	c.logger.Debug().
		Float64("p_control", pCont).
		Float64("p_experiment", pExp).
		Float64("se", se).
		Float64("z_alpha", z).
		Bool("two_sided", cfg.TwoSided).
		Bool("equal_variance", cfg.EqualVariance).
		Msg("two-proportion z-test")

	return abtest.EffectEstimate{
		Delta: round4(delta),
		Lower: round4(delta - z*se),
		Upper: round4(delta + z*se),
	}, nil
}

// standardError of the difference in proportions. With equal variance the
// rates are pooled under H0; otherwise each arm contributes its own variance.
func standardError(control, experiment abtest.BinomialSample, equalVariance bool) float64 {
	nCont := float64(control.Total)
	nExp := float64(experiment.Total)

	if equalVariance {
		pPool := float64(control.Successes+experiment.Successes) / (nCont + nExp)
		return math.Sqrt(pPool * (1 - pPool) * (1/nCont + 1/nExp))
	}

	pCont := control.Rate()
	pExp := experiment.Rate()
	return math.Sqrt(pCont*(1-pCont)/nCont + pExp*(1-pExp)/nExp)
}
