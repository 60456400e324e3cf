package testkit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"abcalc/domain/abtest"
	"abcalc/internal/analysis"
)

func TestSimulatePower_MatchesTargetPower(t *testing.T) {
	if testing.Short() {
		t.Skip("Monte Carlo run skipped in short mode")
	}

	const alpha, power, baseline, mde = 0.05, 0.8, 0.20, 0.05

	size, err := analysis.SampleSizeProportion(alpha, power, mde, baseline, true, true, 1)
	require.NoError(t, err)

	result, err := SimulatePower(context.Background(), SimulationConfig{
		ControlRate:    baseline,
		ExperimentRate: baseline + mde,
		Size:           size,
		Test:           abtest.DefaultTestConfig(alpha),
		Trials:         4000,
		Workers:        8,
		Seed:           20240601,
	})
	require.NoError(t, err)

	assert.Equal(t, 4000, result.Trials)
	assert.InDelta(t, power, result.Power, 0.04)
	assert.InDelta(t, mde, result.MeanDelta, 0.002)
}

func TestSimulatePower_NullRejectsAtAlpha(t *testing.T) {
	if testing.Short() {
		t.Skip("Monte Carlo run skipped in short mode")
	}

	result, err := SimulatePower(context.Background(), SimulationConfig{
		ControlRate:    0.2,
		ExperimentRate: 0.2,
		Size:           abtest.SampleSize{Control: 2000, Experiment: 2000},
		Test:           abtest.DefaultTestConfig(0.05),
		Trials:         4000,
		Workers:        4,
		Seed:           7,
	})
	require.NoError(t, err)

	assert.InDelta(t, 0.05, result.Power, 0.02)
	assert.InDelta(t, 0, result.MeanDelta, 0.002)
	assert.Greater(t, result.StdDevDelta, 0.0)
}

func TestSimulatePower_Deterministic(t *testing.T) {
	cfg := SimulationConfig{
		ControlRate:    0.1,
		ExperimentRate: 0.12,
		Size:           abtest.SampleSize{Control: 500, Experiment: 500},
		Test:           abtest.DefaultTestConfig(0.05),
		Trials:         101,
		Workers:        3,
		Seed:           99,
	}

	a, err := SimulatePower(context.Background(), cfg)
	require.NoError(t, err)
	b, err := SimulatePower(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Equal(t, 101, a.Trials)
}

func TestSimulatePower_Errors(t *testing.T) {
	_, err := SimulatePower(context.Background(), SimulationConfig{Trials: 0})
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = SimulatePower(ctx, SimulationConfig{
		ControlRate: 0.1, ExperimentRate: 0.1,
		Size:   abtest.SampleSize{Control: 100, Experiment: 100},
		Test:   abtest.DefaultTestConfig(0.05),
		Trials: 10,
	})
	assert.ErrorIs(t, err, context.Canceled)
}
