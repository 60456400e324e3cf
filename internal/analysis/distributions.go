package analysis

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"abcalc/domain/abtest"
)

// NormalQuantile computes the quantile function for the standard normal (inverse CDF)
func NormalQuantile(p float64) float64 {
	return distuv.UnitNormal.Quantile(p)
}

// NormalCDF computes the cumulative distribution function for the standard normal
func NormalCDF(x float64) float64 {
	return distuv.UnitNormal.CDF(x)
}

// CriticalValue is the z-score leaving alpha (halved when two-sided) in the upper tail.
func CriticalValue(alpha float64, twoSided bool) float64 {
	return NormalQuantile(1 - abtest.EffectiveAlpha(alpha, twoSided))
}

func round4(x float64) float64 {
	return math.Round(x*1e4) / 1e4
}
