package report

import (
	"fmt"
	"math"
	"strings"

	"geolr/domain/evidence"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// Markdown renders the report as a Markdown document
func Markdown(r *evidence.Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Likelihood ratio report\n\n")
	fmt.Fprintf(&b, "- Run: `%s`\n", r.RunID)
	fmt.Fprintf(&b, "- Generated: %s\n", r.GeneratedAt.UTC().Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(&b, "- Evidence point: %s\n", r.Evidence)
	fmt.Fprintf(&b, "- Wedge half-width: %.4f rad (%.1f°)\n", r.HalfWidth, r.HalfWidth*180/math.Pi)
	fmt.Fprintf(&b, "- Bearing wraparound: %t\n\n", r.WrapBearings)

	b.WriteString("## Result\n\n")
	if len(r.Candidates) == 2 {
		fmt.Fprintf(&b, "LR(%s / %s) = **%s**", r.Candidates[0].Label, r.Candidates[1].Label, formatFloat(r.Ratio.Value))
	} else {
		fmt.Fprintf(&b, "LR = **%s**", formatFloat(r.Ratio.Value))
	}
	fmt.Fprintf(&b, " (log10 %s)\n\n", formatFloat(r.Ratio.Log10))
	if r.Favours != "" {
		fmt.Fprintf(&b, "The evidence gives %s for **%s**.\n\n", r.Scale, r.Favours)
	} else {
		fmt.Fprintf(&b, "Verbal scale: %s.\n\n", r.Scale)
	}

	b.WriteString("## Candidates\n\n")
	b.WriteString("| | ")
	for _, c := range r.Candidates {
		fmt.Fprintf(&b, "%s | ", c.Label)
	}
	b.WriteString("\n|---|")
	for range r.Candidates {
		b.WriteString("---|")
	}
	b.WriteString("\n")

	row := func(name string, value func(evidence.CandidateResult) string) {
		fmt.Fprintf(&b, "| %s | ", name)
		for _, c := range r.Candidates {
			fmt.Fprintf(&b, "%s | ", value(c))
		}
		b.WriteString("\n")
	}
	row("Position", func(c evidence.CandidateResult) string { return c.Point.String() })
	row("Reference source", func(c evidence.CandidateResult) string { return "`" + c.Source + "`" })
	row("Reference fixes (raw / kept)", func(c evidence.CandidateResult) string {
		return fmt.Sprintf("%d / %d", c.RawCount, c.ReferenceCount)
	})
	row("Evidence distance (m)", func(c evidence.CandidateResult) string { return fmt.Sprintf("%.2f", c.Evidence.Distance) })
	row("Evidence bearing (°)", func(c evidence.CandidateResult) string { return fmt.Sprintf("%.2f", c.Evidence.BearingDegrees()) })
	row("Wedge fixes", func(c evidence.CandidateResult) string { return fmt.Sprintf("%d of %d", c.Wedge.Count, c.Wedge.Total) })
	row("Wedge mean / median (m)", func(c evidence.CandidateResult) string {
		if c.Summary == nil {
			return "-"
		}
		return fmt.Sprintf("%.2f / %.2f", c.Summary.Mean, c.Summary.Median)
	})
	row("t fit (df, loc, scale)", func(c evidence.CandidateResult) string {
		if c.Fit == nil {
			return "-"
		}
		return fmt.Sprintf("%.3f, %.2f, %.2f", c.Fit.DegreesOfFreedom, c.Fit.Location, c.Fit.Scale)
	})
	row("Angular fraction", func(c evidence.CandidateResult) string { return formatFloat(c.Probabilities.AngularFraction) })
	row("Conditional density", func(c evidence.CandidateResult) string { return formatFloat(c.Probabilities.ConditionalDensity) })

	if len(r.Artifacts) > 0 {
		b.WriteString("\n## Artifacts\n\n")
		for _, a := range r.Artifacts {
			fmt.Fprintf(&b, "- `%s`\n", a)
		}
	}
	return b.String()
}

func encodeMarkdown(r *evidence.Report) ([]byte, error) {
	return []byte(Markdown(r)), nil
}

func encodeHTML(r *evidence.Report) ([]byte, error) {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	renderer := html.NewRenderer(html.RendererOptions{
		Flags: html.CommonFlags | html.CompletePage,
		Title: "Likelihood ratio report " + r.RunID,
	})
	return markdown.ToHTML([]byte(Markdown(r)), p, renderer), nil
}

func formatFloat(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "+Inf"
	case math.IsInf(v, -1):
		return "-Inf"
	case v != 0 && (math.Abs(v) < 1e-3 || math.Abs(v) >= 1e6):
		return fmt.Sprintf("%.4e", v)
	default:
		return fmt.Sprintf("%.4f", v)
	}
}
