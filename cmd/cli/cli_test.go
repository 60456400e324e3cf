package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"abcalc/internal/config"
	"abcalc/internal/errors"
)

func testConfig() *config.Config {
	return &config.Config{
		Defaults: config.DefaultsConfig{Alpha: 0.05, Power: 0.8, Ratio: 1, TwoSided: true, EqualVariance: true},
		Output:   config.OutputConfig{Format: "text"},
		Logging:  config.LoggingConfig{Level: "info", Format: "text"},
	}
}

func run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd(testConfig())
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestSignificance_Flags(t *testing.T) {
	out, _, err := run(t, "", "significance",
		"--control-total", "17293", "--control-successes", "3785",
		"--experiment-total", "17260", "--experiment-successes", "3423")
	require.NoError(t, err)

	assert.Contains(t, out, "effect size:-0.0206 , lower bound:-0.0291, upper bound:-0.012")
	assert.Contains(t, out, "Significant at alpha=0.05")
}

func TestSignificance_Interactive(t *testing.T) {
	stdin := strings.Join([]string{"0.05", "17293", "2033", "17260", "1945", "2", "1"}, "\n") + "\n"

	out, _, err := run(t, stdin, "significance")
	require.NoError(t, err)

	assert.Contains(t, out, "What is your significance level")
	assert.Contains(t, out, "effect size:-0.0049 , lower bound:-0.0116, upper bound:0.0019")
	assert.Contains(t, out, "Not significant")
}

func TestSignificance_PartialFlagsRejected(t *testing.T) {
	_, stderr, err := run(t, "", "significance", "--control-total", "100")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--control-successes")
	assert.Contains(t, stderr, "Error:")
}

func TestSignificance_InvalidCounts(t *testing.T) {
	_, _, err := run(t, "", "significance",
		"--control-total", "100", "--control-successes", "120",
		"--experiment-total", "100", "--experiment-successes", "10")
	require.Error(t, err)
	assert.True(t, errors.IsInvalidArgument(err))
	assert.Contains(t, err.Error(), "control.successes")
}

func TestSampleSize_ProportionFlags(t *testing.T) {
	out, _, err := run(t, "", "samplesize",
		"--metric", "proportion", "--baseline", "0.2", "--delta", "0.05", "--equal-variance")
	require.NoError(t, err)
	assert.Contains(t, out, "control group:1095 \nexperiment group:1095")
}

func TestSampleSize_InfiniteRatioRejected(t *testing.T) {
	out, _, err := run(t, "", "samplesize",
		"--metric", "proportion", "--baseline", "0.2", "--delta", "0.05", "--equal-variance", "--ratio", "+Inf")
	require.Error(t, err)
	assert.True(t, errors.IsInvalidArgument(err), "got %v", err)
	assert.Contains(t, err.Error(), "ratio: must be finite")
	assert.NotContains(t, out, "control group:")
}

func TestSampleSize_InteractiveInfiniteRatioIsAskedAgain(t *testing.T) {
	stdin := strings.Join([]string{"0.05", "0.8", "2", "1", "0.2", "0.05", "inf", "1"}, "\n") + "\n"

	out, _, err := run(t, stdin, "samplesize")
	require.NoError(t, err)
	assert.Contains(t, out, "Sorry, ratio must be a finite number")
	assert.Contains(t, out, "control group:1091 \nexperiment group:1091")
}

func TestSampleSize_MeanMissingStd(t *testing.T) {
	_, _, err := run(t, "", "samplesize", "--metric", "mean", "--delta", "0.025")
	require.Error(t, err)
	assert.True(t, errors.IsInvalidArgument(err))
	assert.Contains(t, err.Error(), "std_dev")
}

func TestSampleSize_InteractiveEmpirical(t *testing.T) {
	stdin := strings.Join([]string{"0.05", "0.8", "2", "3", "0.01", "0.005", "1000", "1000"}, "\n") + "\n"

	out, _, err := run(t, stdin, "samplesize")
	require.NoError(t, err)
	assert.Contains(t, out, "Is your metric proportion")
	assert.Contains(t, out, "control group:1963 \nexperiment group:1963")
}

func TestSampleSize_InteractiveProportionUsesUnpooledDefault(t *testing.T) {
	stdin := strings.Join([]string{"0.05", "0.8", "2", "1", "0.2", "0.05", "1"}, "\n") + "\n"

	out, _, err := run(t, stdin, "samplesize")
	require.NoError(t, err)
	assert.Contains(t, out, "control group:1091 \nexperiment group:1091")
}

func TestSampleSize_JSONFormat(t *testing.T) {
	out, _, err := run(t, "", "samplesize", "--format", "json",
		"--metric", "mean", "--delta", "0.025", "--std", "0.1", "--ratio", "2")
	require.NoError(t, err)

	var decoded struct {
		Kind       string `json:"kind"`
		SampleSize struct {
			Result struct {
				Control    int `json:"control"`
				Experiment int `json:"experiment"`
			} `json:"result"`
		} `json:"sample_size"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, "sample_size", decoded.Kind)
	assert.Equal(t, 189, decoded.SampleSize.Result.Control)
	assert.Equal(t, 377, decoded.SampleSize.Result.Experiment)
}

func TestSampleSize_FlagsWithoutMetric(t *testing.T) {
	_, _, err := run(t, "", "samplesize", "--delta", "0.05")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--metric is required")
}

func TestDebugLoggingGoesToStderr(t *testing.T) {
	out, stderr, err := run(t, "", "samplesize", "--log-level", "debug",
		"--metric", "empirical", "--delta", "0.01", "--delta-se", "0.005", "--aa-num1", "1000", "--aa-num2", "1200")
	require.NoError(t, err)

	assert.Contains(t, out, "control group:2141")
	assert.Contains(t, stderr, "sample size")
	assert.NotContains(t, out, "se_pool")
}

func TestInvalidFormat(t *testing.T) {
	_, _, err := run(t, "", "samplesize", "--format", "yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown output format")
}
