package validation

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"abcalc/domain/abtest"
	"abcalc/internal/errors"
)

func validSignificance() abtest.SignificanceRequest {
	return abtest.SignificanceRequest{
		Control:    abtest.BinomialSample{Successes: 3785, Total: 17293},
		Experiment: abtest.BinomialSample{Successes: 3423, Total: 17260},
		Config:     abtest.DefaultTestConfig(0.05),
	}
}

func TestSignificance_Valid(t *testing.T) {
	assert.NoError(t, Significance(validSignificance()))
}

func TestSignificance_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*abtest.SignificanceRequest)
		field  string
	}{
		{"zero control total", func(r *abtest.SignificanceRequest) { r.Control = abtest.BinomialSample{} }, "control.total"},
		{"negative experiment total", func(r *abtest.SignificanceRequest) { r.Experiment.Total = -5 }, "experiment.successes"},
		{"negative successes", func(r *abtest.SignificanceRequest) { r.Control.Successes = -1 }, "control.successes"},
		{"successes above total", func(r *abtest.SignificanceRequest) { r.Experiment.Successes = 17261 }, "experiment.successes"},
		{"alpha zero", func(r *abtest.SignificanceRequest) { r.Config.Alpha = 0 }, "config.alpha"},
		{"alpha one", func(r *abtest.SignificanceRequest) { r.Config.Alpha = 1 }, "config.alpha"},
		{"alpha NaN", func(r *abtest.SignificanceRequest) { r.Config.Alpha = math.NaN() }, "config.alpha"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validSignificance()
			tt.mutate(&req)

			err := Significance(req)
			require.Error(t, err)
			assert.True(t, errors.IsInvalidArgument(err), "got %v", err)

			appErr, ok := err.(*errors.AppError)
			require.True(t, ok)
			assert.Equal(t, tt.field, appErr.Field)
		})
	}
}

func ptr(v float64) *float64 { return &v }

func TestSampleSize_StrategyFields(t *testing.T) {
	base := abtest.SampleSizeRequest{Alpha: 0.05, Power: 0.8, Delta: 0.05, TwoSided: true}

	tests := []struct {
		name  string
		req   func() abtest.SampleSizeRequest
		field string // empty means valid
	}{
		{"proportion ok", func() abtest.SampleSizeRequest {
			r := base
			r.Strategy, r.Baseline, r.Ratio = abtest.StrategyProportion, 0.2, 1
			return r
		}, ""},
		{"proportion zero ratio", func() abtest.SampleSizeRequest {
			r := base
			r.Strategy, r.Baseline = abtest.StrategyProportion, 0.2
			return r
		}, "ratio"},
		{"proportion infinite ratio", func() abtest.SampleSizeRequest {
			r := base
			r.Strategy, r.Baseline, r.Ratio, r.EqualVariance = abtest.StrategyProportion, 0.2, math.Inf(1), true
			return r
		}, "ratio"},
		{"proportion subnormal ratio", func() abtest.SampleSizeRequest {
			r := base
			r.Strategy, r.Baseline, r.Ratio = abtest.StrategyProportion, 0.2, 1e-320
			return r
		}, "ratio"},
		{"proportion baseline of zero", func() abtest.SampleSizeRequest {
			r := base
			r.Strategy, r.Baseline, r.Ratio = abtest.StrategyProportion, 0, 1
			return r
		}, ""},
		{"proportion baseline above one", func() abtest.SampleSizeRequest {
			r := base
			r.Strategy, r.Baseline, r.Ratio = abtest.StrategyProportion, 1.2, 1
			return r
		}, "baseline"},
		{"proportion target out of range", func() abtest.SampleSizeRequest {
			r := base
			r.Strategy, r.Baseline, r.Ratio, r.Delta = abtest.StrategyProportion, 0.98, 1, 0.05
			return r
		}, "delta"},
		{"zero delta", func() abtest.SampleSizeRequest {
			r := base
			r.Strategy, r.Baseline, r.Ratio, r.Delta = abtest.StrategyProportion, 0.2, 1, 0
			return r
		}, "delta"},
		{"infinite delta", func() abtest.SampleSizeRequest {
			r := base
			r.Strategy, r.StdDev, r.Ratio, r.Delta = abtest.StrategyMean, ptr(1), 1, math.Inf(1)
			return r
		}, "delta"},
		{"power one", func() abtest.SampleSizeRequest {
			r := base
			r.Strategy, r.StdDev, r.Ratio, r.Power = abtest.StrategyMean, ptr(1), 1, 1
			return r
		}, "power"},
		{"mean ok", func() abtest.SampleSizeRequest {
			r := base
			r.Strategy, r.StdDev, r.Ratio = abtest.StrategyMean, ptr(0.1), 2
			return r
		}, ""},
		{"mean missing std", func() abtest.SampleSizeRequest {
			r := base
			r.Strategy, r.Ratio = abtest.StrategyMean, 1
			return r
		}, "std_dev"},
		{"mean NaN ratio", func() abtest.SampleSizeRequest {
			r := base
			r.Strategy, r.StdDev, r.Ratio = abtest.StrategyMean, ptr(0.1), math.NaN()
			return r
		}, "ratio"},
		{"mean negative std", func() abtest.SampleSizeRequest {
			r := base
			r.Strategy, r.StdDev, r.Ratio = abtest.StrategyMean, ptr(-0.1), 1
			return r
		}, "std_dev"},
		{"empirical ok", func() abtest.SampleSizeRequest {
			r := base
			r.Strategy, r.DeltaSE, r.AANum1, r.AANum2 = abtest.StrategyEmpirical, 0.005, 1000, 1000
			return r
		}, ""},
		{"empirical zero se", func() abtest.SampleSizeRequest {
			r := base
			r.Strategy, r.AANum1, r.AANum2 = abtest.StrategyEmpirical, 1000, 1000
			return r
		}, "delta_se"},
		{"empirical empty arm", func() abtest.SampleSizeRequest {
			r := base
			r.Strategy, r.DeltaSE, r.AANum1 = abtest.StrategyEmpirical, 0.005, 1000
			return r
		}, "aa_num2"},
		{"unknown strategy", func() abtest.SampleSizeRequest {
			return base
		}, "strategy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := SampleSize(tt.req())
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.IsInvalidArgument(err), "got %v", err)
			appErr, ok := err.(*errors.AppError)
			require.True(t, ok)
			assert.Equal(t, tt.field, appErr.Field)
		})
	}
}

func TestConfig_UsesConfigCode(t *testing.T) {
	type defaults struct {
		Alpha float64 `json:"alpha" validate:"gt=0,lt=1"`
	}

	err := Config(defaults{Alpha: 2})
	require.Error(t, err)
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
	assert.Contains(t, err.Error(), "alpha: must be < 1")
}
