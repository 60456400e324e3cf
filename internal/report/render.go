package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"abcalc/domain/abtest"
)

// Renderer writes reports in one format
type Renderer struct {
	format Format
	color  bool
}

// NewRenderer creates a renderer. color only affects FormatText, and only
// when the destination is a terminal.
func NewRenderer(format Format, color bool) *Renderer {
	return &Renderer{format: format, color: color}
}

// Render writes r to w.
func (rn *Renderer) Render(w io.Writer, r Report) error {
	switch rn.format {
	case FormatText:
		return rn.renderText(w, r)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case FormatMarkdown:
		_, err := io.WriteString(w, Markdown(r))
		return err
	case FormatHTML:
		_, err := w.Write(HTML(r))
		return err
	default:
		return fmt.Errorf("unknown output format %q", rn.format)
	}
}

func (rn *Renderer) renderText(w io.Writer, r Report) error {
	lg := lipgloss.NewRenderer(w)
	heading := lg.NewStyle().Bold(true)
	good := lg.NewStyle().Foreground(lipgloss.Color("2"))
	muted := lg.NewStyle().Foreground(lipgloss.Color("8"))
	if !rn.color {
		heading, good, muted = lg.NewStyle(), lg.NewStyle(), lg.NewStyle()
	}

	var b strings.Builder
	switch r.Kind {
	case KindSignificance:
		res := r.Significance
		est := res.Estimate
		fmt.Fprintf(&b, "effect size:%s , lower bound:%s, upper bound:%s\n",
			num(est.Delta), num(est.Lower), num(est.Upper))
		if res.Significant {
			b.WriteString(good.Render(fmt.Sprintf("Significant at alpha=%s: the interval excludes 0.",
				num(res.Request.Config.Alpha))))
		} else {
			b.WriteString(muted.Render(fmt.Sprintf("Not significant at alpha=%s: the interval contains 0.",
				num(res.Request.Config.Alpha))))
		}
		b.WriteString("\n")
	case KindSampleSize:
		size := r.SampleSize.Result
		b.WriteString(heading.Render("You will need:"))
		fmt.Fprintf(&b, " \ncontrol group:%d \nexperiment group:%d\n", size.Control, size.Experiment)
	default:
		return fmt.Errorf("unknown report kind %q", r.Kind)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// Markdown renders r as a Markdown document with one table of inputs and one of results.
func Markdown(r Report) string {
	var b strings.Builder

	switch r.Kind {
	case KindSignificance:
		res := r.Significance
		req := res.Request
		b.WriteString("# Two-proportion significance test\n\n")
		b.WriteString("| Group | Successes | Total | Rate |\n|---|---:|---:|---:|\n")
		fmt.Fprintf(&b, "| Control | %d | %d | %s |\n", req.Control.Successes, req.Control.Total, num(req.Control.Rate()))
		fmt.Fprintf(&b, "| Experiment | %d | %d | %s |\n\n", req.Experiment.Successes, req.Experiment.Total, num(req.Experiment.Rate()))
		fmt.Fprintf(&b, "Alpha %s, %s, %s.\n\n", num(req.Config.Alpha), sidedness(req.Config.TwoSided), varianceLabel(req.Config.EqualVariance))
		b.WriteString("| Effect size | Lower bound | Upper bound | Significant |\n|---:|---:|---:|:---:|\n")
		fmt.Fprintf(&b, "| %s | %s | %s | %s |\n", num(res.Estimate.Delta), num(res.Estimate.Lower), num(res.Estimate.Upper), yesNo(res.Significant))
	case KindSampleSize:
		req := r.SampleSize.Request
		size := r.SampleSize.Result
		b.WriteString("# Minimum sample size\n\n")
		b.WriteString("| Parameter | Value |\n|---|---|\n")
		for _, row := range sampleSizeInputs(req) {
			fmt.Fprintf(&b, "| %s | %s |\n", row[0], row[1])
		}
		b.WriteString("\n| Control group | Experiment group | Total |\n|---:|---:|---:|\n")
		fmt.Fprintf(&b, "| %d | %d | %d |\n", size.Control, size.Experiment, size.Total())
	}

	fmt.Fprintf(&b, "\n_Run %s_\n", r.RunID)
	return b.String()
}

// HTML renders the Markdown form of r as a standalone HTML page.
func HTML(r Report) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := html.NewRenderer(html.RendererOptions{
		Title: "abcalc " + string(r.Kind),
		Flags: html.CommonFlags | html.CompletePage,
	})
	return markdown.ToHTML([]byte(Markdown(r)), p, renderer)
}

func sampleSizeInputs(req abtest.SampleSizeRequest) [][2]string {
	rows := [][2]string{
		{"Metric", req.Strategy.String()},
		{"Alpha", num(req.Alpha)},
		{"Power", num(req.Power)},
		{"Minimum detectable effect", num(req.Delta)},
		{"Test", sidedness(req.TwoSided)},
	}
	switch req.Strategy {
	case abtest.StrategyProportion:
		rows = append(rows,
			[2]string{"Baseline", num(req.Baseline)},
			[2]string{"Ratio (experiment : control)", num(req.Ratio)},
			[2]string{"Variance", varianceLabel(req.EqualVariance)},
		)
	case abtest.StrategyMean:
		if req.StdDev != nil {
			rows = append(rows, [2]string{"Standard deviation", num(*req.StdDev)})
		}
		rows = append(rows, [2]string{"Ratio (experiment : control)", num(req.Ratio)})
	case abtest.StrategyEmpirical:
		rows = append(rows,
			[2]string{"A/A delta standard error", num(req.DeltaSE)},
			[2]string{"A/A group sizes", fmt.Sprintf("%d / %d", req.AANum1, req.AANum2)},
		)
	}
	return rows
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func sidedness(twoSided bool) string {
	if twoSided {
		return "two-sided"
	}
	return "one-sided"
}

func varianceLabel(equal bool) string {
	if equal {
		return "pooled variance"
	}
	return "unpooled variance"
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
