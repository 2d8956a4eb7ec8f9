package ui

import (
	"fmt"
	"strings"

	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"golift/domain/experiment"
	"golift/domain/intelligence"
	"golift/internal/testkit"
)

func demoScenarios() []string {
	return testkit.Scenarios()
}

// BuildMarkdownReport renders one experiment's intelligence bundle as a
// markdown document.
func BuildMarkdownReport(exp *experiment.Experiment, intel intelligence.Intelligence) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", exp.Name)
	if exp.Hypothesis != "" {
		fmt.Fprintf(&b, "> %s\n\n", exp.Hypothesis)
	}
	fmt.Fprintf(&b, "**Status:** %s  \n", exp.Status)
	fmt.Fprintf(&b, "**Health score:** %d/100  \n", intel.HealthScore)
	fmt.Fprintf(&b, "**Progress:** %.0f%% (%d of %d samples)\n\n",
		exp.Progress()*100, exp.TotalSamples(), exp.RequiredSampleSize)

	b.WriteString("## Recommendation\n\n")
	fmt.Fprintf(&b, "**%s** (confidence %.0f%%): %s\n\n",
		strings.ReplaceAll(string(intel.Recommendation.Action), "_", " "),
		intel.Recommendation.Confidence*100, intel.Recommendation.Reason)
	for _, d := range intel.Recommendation.Details {
		fmt.Fprintf(&b, "- %s\n", d)
	}
	if len(intel.Recommendation.Details) > 0 {
		b.WriteString("\n")
	}

	if len(intel.Risks) > 0 {
		b.WriteString("## Risks\n\n")
		for _, r := range intel.Risks {
			fmt.Fprintf(&b, "- **[%s] %s** — %s\n", strings.ToUpper(string(r.Level)), r.Type, r.Message)
			if r.Recommendation != "" {
				fmt.Fprintf(&b, "  - %s\n", r.Recommendation)
			}
		}
		b.WriteString("\n")
	}

	if len(intel.Insights) > 0 {
		b.WriteString("## Insights\n\n")
		for _, ins := range intel.Insights {
			fmt.Fprintf(&b, "- **%s** — %s\n", ins.Title, ins.Message)
		}
		b.WriteString("\n")
	}

	if len(exp.Results) > 0 {
		b.WriteString("## Results\n\n")
		b.WriteString("| Variant | Samples | Conversions | Rate | Lift | p-value | Significant |\n")
		b.WriteString("|---|---|---|---|---|---|---|\n")
		for _, v := range exp.Variants {
			r, ok := exp.ResultFor(v.ID)
			if !ok {
				continue
			}
			name := v.Name
			if v.IsControl {
				name += " (control)"
			}
			fmt.Fprintf(&b, "| %s | %d | %d | %.2f%% | %+.1f%% | %.4f | %v |\n",
				name, r.SampleSize, r.Conversions, r.ConversionRate*100,
				r.Improvement*100, r.PValue, r.IsSignificant)
		}
		b.WriteString("\n")
	}

	return b.String()
}

// RenderHTMLReport converts the markdown report to HTML
func RenderHTMLReport(exp *experiment.Experiment, intel intelligence.Intelligence) []byte {
	md := BuildMarkdownReport(exp, intel)

	p := parser.NewWithExtensions(parser.CommonExtensions | parser.Tables)
	doc := p.Parse([]byte(md))

	renderer := mdhtml.NewRenderer(mdhtml.RendererOptions{
		Flags: mdhtml.CommonFlags | mdhtml.CompletePage,
		Title: exp.Name,
	})
	return markdown.Render(doc, renderer)
}
