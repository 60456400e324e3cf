package analysis

import (
	"math"

	"abcalc/domain/abtest"
	"abcalc/internal/errors"
	"abcalc/internal/validation"
)

// maxSampleSize keeps ceil(N) exactly representable before converting to int.
const maxSampleSize = 1 << 53

// SampleSizeProportion is the minimum per-group size for a binomial metric
// (click-through rate, conversion) with baseline rate prop1. ratio is
// n_experiment / n_control.
func SampleSizeProportion(alpha, power, delta, prop1 float64, equalVariance, twoSided bool, ratio float64) (abtest.SampleSize, error) {
	return defaultCalculator.SampleSize(abtest.SampleSizeRequest{
		Alpha:         alpha,
		Power:         power,
		Delta:         delta,
		TwoSided:      twoSided,
		Strategy:      abtest.StrategyProportion,
		Ratio:         ratio,
		Baseline:      prop1,
		EqualVariance: equalVariance,
	})
}

// SampleSizeMean is the minimum per-group size for a mean metric whose
// standard deviation is known from historical data. Both groups are assumed
// to share that variance. A nil std is rejected.
func SampleSizeMean(alpha, power, delta float64, std *float64, twoSided bool, ratio float64) (abtest.SampleSize, error) {
	return defaultCalculator.SampleSize(abtest.SampleSizeRequest{
		Alpha:    alpha,
		Power:    power,
		Delta:    delta,
		TwoSided: twoSided,
		Strategy: abtest.StrategyMean,
		Ratio:    ratio,
		StdDev:   std,
	})
}

// SampleSizeEmpirical is the minimum per-group size for any metric, given the
// standard error of the delta measured in an A/A test with num1AA and num2AA
// units per arm. Control and experiment always get the same size.
func SampleSizeEmpirical(alpha, power, delta, deltaSE float64, num1AA, num2AA int, twoSided bool) (abtest.SampleSize, error) {
	return defaultCalculator.SampleSize(abtest.SampleSizeRequest{
		Alpha:    alpha,
		Power:    power,
		Delta:    delta,
		TwoSided: twoSided,
		Strategy: abtest.StrategyEmpirical,
		DeltaSE:  deltaSE,
		AANum1:   num1AA,
		AANum2:   num2AA,
	})
}

// SampleSize dispatches req to its variance strategy.
func SampleSize(req abtest.SampleSizeRequest) (abtest.SampleSize, error) {
	return defaultCalculator.SampleSize(req)
}

// SampleSize is the logging form of the package-level SampleSize.
func (c *Calculator) SampleSize(req abtest.SampleSizeRequest) (abtest.SampleSize, error) {
	if err := validation.SampleSize(req); err != nil {
		return abtest.SampleSize{}, errors.Wrapf(err, "%s sample size", req.Strategy)
	}

	sePool, err := criticalSE(req.Alpha, req.Power, req.Delta, req.TwoSided)
	if err != nil {
		return abtest.SampleSize{}, errors.Wrapf(err, "%s sample size", req.Strategy)
	}

	ratio := req.Ratio
	if req.Strategy == abtest.StrategyEmpirical {
		ratio = 1
	}
	variance := strategyVariance(req, ratio)
	nCon := variance / (sePool * sePool)
	nExp := ratio * nCon

	c.logger.Debug().
		Stringer("strategy", req.Strategy).
		Float64("se_pool", sePool).
		Float64("variance", variance).
		Float64("n_control", nCon).
		Float64("n_experiment", nExp).
		Msg("sample size")

	if !(variance > 0) {
		if math.IsNaN(variance) {
			return abtest.SampleSize{}, errors.InvalidArgument("", "metric variance is undefined for these inputs")
		}
		return abtest.SampleSize{}, errors.InvalidArgument("delta",
			"metric has zero variance at the baseline and target, any sample detects the effect")
	}
	if !(nCon <= maxSampleSize && nExp <= maxSampleSize) {
		// Blame the allocation when a 1:1 design of the same inputs fits.
		if balanced := strategyVariance(req, 1) / (sePool * sePool); ratio != 1 && balanced <= maxSampleSize {
			return abtest.SampleSize{}, errors.InvalidArgumentf("ratio",
				"%g is too unbalanced, required size of one group overflows", ratio)
		}
		return abtest.SampleSize{}, errors.InvalidArgumentf("delta",
			"%g is too small relative to the metric variance, required size overflows", req.Delta)
	}

	return abtest.SampleSize{
		Control:    int(math.Ceil(nCon)),
		Experiment: int(math.Ceil(nExp)),
	}, nil
}

// criticalSE is the standard error of the delta at which an effect of size
// |delta| sits exactly z_alpha + z_beta standard errors from zero.
func criticalSE(alpha, power, delta float64, twoSided bool) (float64, error) {
	zAlpha := CriticalValue(alpha, twoSided)
	zBeta := NormalQuantile(power)
	if zAlpha+zBeta <= 0 {
		return 0, errors.InvalidArgumentf("power",
			"%g is too low for alpha %g: z_alpha + z_beta must be positive", power, alpha)
	}
	return math.Abs(delta) / (zAlpha + zBeta), nil
}

// strategyVariance is the per-control-unit variance of the delta under req's
// strategy at the given allocation ratio.
func strategyVariance(req abtest.SampleSizeRequest, ratio float64) float64 {
	switch req.Strategy {
	case abtest.StrategyProportion:
		return proportionVariance(req.Baseline, req.Baseline+req.Delta, ratio, req.EqualVariance)
	case abtest.StrategyMean:
		return meanVariance(*req.StdDev, ratio)
	case abtest.StrategyEmpirical:
		return empiricalVariance(req.DeltaSE, req.AANum1, req.AANum2)
	default:
		return math.NaN()
	}
}

// proportionVariance is the per-control-unit variance of the delta for
// Bernoulli arms at rates prop1 (control) and prop2 (experiment).
func proportionVariance(prop1, prop2, ratio float64, equalVariance bool) float64 {
	if equalVariance {
		pPool := (prop1 + ratio*prop2) / (1 + ratio)
		return (1 - pPool) * pPool * (1 + 1/ratio)
	}
	return (1-prop1)*prop1 + (1-prop2)*prop2/ratio
}

func meanVariance(std, ratio float64) float64 {
	return std * std * (1 + 1/ratio)
}

// empiricalVariance rescales the A/A delta variance, observed at harmonic
// arm size 2/(1/n1 + 1/n2), to a single unit per arm.
func empiricalVariance(deltaSE float64, num1AA, num2AA int) float64 {
	return deltaSE * deltaSE * 2 / (1/float64(num1AA) + 1/float64(num2AA))
}
