package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"abcalc/domain/abtest"
)

// Kind identifies which calculator produced a report
type Kind string

const (
	KindSignificance Kind = "significance"
	KindSampleSize   Kind = "sample_size"
)

// Format selects a renderer
type Format string

const (
	FormatText     Format = "text"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
)

// ParseFormat accepts a format name, case-insensitively. "md" is an alias for markdown.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "text", "txt", "":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "html":
		return FormatHTML, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text, json, markdown or html)", s)
	}
}

// Report is one calculator run: its inputs and result. Exactly one of
// Significance and SampleSize is set, matching Kind.
type Report struct {
	RunID        uuid.UUID           `json:"run_id"`
	Kind         Kind                `json:"kind"`
	GeneratedAt  time.Time           `json:"generated_at"`
	Significance *SignificanceResult `json:"significance,omitempty"`
	SampleSize   *SampleSizeResult   `json:"sample_size,omitempty"`
}

// SignificanceResult pairs a z-test request with its estimate
type SignificanceResult struct {
	Request     abtest.SignificanceRequest `json:"request"`
	Estimate    abtest.EffectEstimate      `json:"estimate"`
	Significant bool                       `json:"significant"`
}

// SampleSizeResult pairs a sample-size request with the required sizes
type SampleSizeResult struct {
	Request abtest.SampleSizeRequest `json:"request"`
	Result  abtest.SampleSize        `json:"result"`
}

// NewSignificance builds a report for a finished z-test.
func NewSignificance(req abtest.SignificanceRequest, est abtest.EffectEstimate) Report {
	return Report{
		RunID:       uuid.New(),
		Kind:        KindSignificance,
		GeneratedAt: time.Now().UTC(),
		Significance: &SignificanceResult{
			Request:     req,
			Estimate:    est,
			Significant: est.Significant(),
		},
	}
}

// NewSampleSize builds a report for a finished sample-size calculation.
func NewSampleSize(req abtest.SampleSizeRequest, size abtest.SampleSize) Report {
	return Report{
		RunID:       uuid.New(),
		Kind:        KindSampleSize,
		GeneratedAt: time.Now().UTC(),
		SampleSize: &SampleSizeResult{
			Request: req,
			Result:  size,
		},
	}
}
