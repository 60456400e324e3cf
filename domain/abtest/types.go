package abtest

import (
	"fmt"
	"strings"
)

// ============================================================================
// SAMPLES AND CONFIGURATION
// ============================================================================

// BinomialSample is one arm of a two-proportion test.
// INVARIANTS:
// - Total > 0
// - 0 <= Successes <= Total
type BinomialSample struct {
	Successes int `json:"successes" validate:"gte=0,ltefield=Total"` // Converting events (x)
	Total     int `json:"total" validate:"gt=0"`                     // All events (n)
}

// Rate returns the sample proportion x/n.
func (s BinomialSample) Rate() float64 {
	return float64(s.Successes) / float64(s.Total)
}

// TestConfig controls how the critical value and standard error are formed.
type TestConfig struct {
	Alpha         float64 `json:"alpha" validate:"gt=0,lt=1"` // Significance level (type I error rate)
	TwoSided      bool    `json:"two_sided"`                  // Split alpha across both tails
	EqualVariance bool    `json:"equal_variance"`             // Pool proportions under H0
}

// DefaultTestConfig is a two-sided, pooled-variance test at the given alpha.
func DefaultTestConfig(alpha float64) TestConfig {
	return TestConfig{
		Alpha:         alpha,
		TwoSided:      true,
		EqualVariance: true,
	}
}

// EffectiveAlpha is the tail probability used for the critical value.
func (c TestConfig) EffectiveAlpha() float64 {
	return EffectiveAlpha(c.Alpha, c.TwoSided)
}

// EffectiveAlpha halves alpha for two-sided tests.
func EffectiveAlpha(alpha float64, twoSided bool) float64 {
	if twoSided {
		return alpha / 2
	}
	return alpha
}

// SignificanceRequest bundles the inputs of a two-proportion z-test.
type SignificanceRequest struct {
	Control    BinomialSample `json:"control"`
	Experiment BinomialSample `json:"experiment"`
	Config     TestConfig     `json:"config"`
}

// ============================================================================
// RESULTS
// ============================================================================

// EffectEstimate is the experiment-minus-control difference in proportions
// with its confidence bounds. All fields are rounded to 4 decimal places.
type EffectEstimate struct {
	Delta float64 `json:"delta"`
	Lower float64 `json:"lower_bound"`
	Upper float64 `json:"upper_bound"`
}

// ContainsZero reports whether the interval [Lower, Upper] includes 0.
func (e EffectEstimate) ContainsZero() bool {
	return e.Lower <= 0 && e.Upper >= 0
}

// Significant reports whether the effect is statistically significant at
// the level the estimate was computed with.
func (e EffectEstimate) Significant() bool {
	return !e.ContainsZero()
}

// Width is Upper - Lower.
func (e EffectEstimate) Width() float64 {
	return e.Upper - e.Lower
}

// SampleSize is the minimum number of units per group.
type SampleSize struct {
	Control    int `json:"control"`
	Experiment int `json:"experiment"`
}

// Total is Control + Experiment.
func (s SampleSize) Total() int {
	return s.Control + s.Experiment
}

// ============================================================================
// SAMPLE SIZE STRATEGIES
// ============================================================================

// VarianceStrategy selects how the variance of the metric is estimated.
type VarianceStrategy int

const (
	// StrategyProportion derives variance from the baseline proportion.
	StrategyProportion VarianceStrategy = iota + 1
	// StrategyMean uses a known standard deviation of the metric.
	StrategyMean
	// StrategyEmpirical rescales the delta standard error observed in an A/A test.
	StrategyEmpirical
)

func (s VarianceStrategy) String() string {
	switch s {
	case StrategyProportion:
		return "proportion"
	case StrategyMean:
		return "mean"
	case StrategyEmpirical:
		return "empirical"
	default:
		return fmt.Sprintf("VarianceStrategy(%d)", int(s))
	}
}

// Valid reports whether s is one of the known strategies.
func (s VarianceStrategy) Valid() bool {
	return s >= StrategyProportion && s <= StrategyEmpirical
}

// MarshalText implements encoding.TextMarshaler.
func (s VarianceStrategy) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("unknown variance strategy %d", int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *VarianceStrategy) UnmarshalText(text []byte) error {
	parsed, err := ParseVarianceStrategy(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseVarianceStrategy accepts the strategy name or the menu number used
// by the interactive calculator (1=proportion, 2=mean, 3=other).
func ParseVarianceStrategy(s string) (VarianceStrategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "proportion", "prop":
		return StrategyProportion, nil
	case "2", "mean":
		return StrategyMean, nil
	case "3", "empirical", "other", "aa":
		return StrategyEmpirical, nil
	default:
		return 0, fmt.Errorf("unknown variance strategy %q (want proportion, mean or empirical)", s)
	}
}

// SampleSizeRequest carries the inputs for every strategy. Only the fields
// read by Strategy are checked:
// - StrategyProportion: Baseline, Ratio, EqualVariance
// - StrategyMean: StdDev, Ratio
// - StrategyEmpirical: DeltaSE, AANum1, AANum2 (allocation is always 1:1)
type SampleSizeRequest struct {
	Alpha    float64          `json:"alpha" validate:"gt=0,lt=1"`
	Power    float64          `json:"power" validate:"gt=0,lt=1"`
	Delta    float64          `json:"delta" validate:"ne=0"` // Minimum detectable effect, absolute units, signed
	TwoSided bool             `json:"two_sided"`
	Strategy VarianceStrategy `json:"strategy"`

	Ratio         float64  `json:"ratio,omitempty"`    // n_exp / n_con
	Baseline      float64  `json:"baseline,omitempty"` // Control proportion
	EqualVariance bool     `json:"equal_variance,omitempty"`
	StdDev        *float64 `json:"std_dev,omitempty"`
	DeltaSE       float64  `json:"delta_se,omitempty"` // Standard error of the A/A delta
	AANum1        int      `json:"aa_num1,omitempty"`
	AANum2        int      `json:"aa_num2,omitempty"`
}
