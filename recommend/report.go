package recommend

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"

	"github.com/nanoform/nanoform/sym"
)

// decisionColor maps a band to its terminal color.
func decisionColor(d Decision) func(a ...interface{}) string {
	switch d {
	case DecisionApproved:
		return pterm.Green
	case DecisionConditional, DecisionViable:
		return pterm.Yellow
	case DecisionNotApproved:
		return pterm.Red
	default:
		return pterm.LightCyan
	}
}

// RenderTerminal formats a report with pterm coloring for interactive use.
func RenderTerminal(r Report) string {
	var b strings.Builder
	color := decisionColor(r.Decision)

	name := r.Context.DisplayName
	if name == "" {
		name = "(unnamed formulation)"
	}

	fmt.Fprintf(&b, "%s %s\n", sym.Report, pterm.Bold.Sprint(name))
	if r.Context.SourceCode != "" {
		fmt.Fprintf(&b, "  %s %s\n", pterm.Gray("code:"), r.Context.SourceCode)
	}
	fmt.Fprintf(&b, "  %s %s\n", pterm.Gray("rule:"), r.Prediction.RuleID)
	fmt.Fprintf(&b, "  %s %.2f (%s)\n", pterm.Gray("confidence:"), r.Prediction.Confidence, r.ConfidenceLevel)
	fmt.Fprintf(&b, "\n  %s\n  %s\n", r.Affinity, r.Monolayer)

	if len(r.Recommendations) > 0 {
		fmt.Fprintf(&b, "\n%s\n", pterm.LightCyan("Recommendations:"))
		for _, rec := range r.Recommendations {
			fmt.Fprintf(&b, "  %s %s\n", sym.Check, rec)
		}
	}
	if len(r.Warnings) > 0 {
		fmt.Fprintf(&b, "\n%s\n", pterm.Yellow("Warnings:"))
		for _, w := range r.Warnings {
			fmt.Fprintf(&b, "  %s %s\n", sym.Warn, w)
		}
	}
	if len(r.Optimizations) > 0 {
		fmt.Fprintf(&b, "\n%s\n", pterm.LightCyan("Suggested optimizations:"))
		for _, o := range r.Optimizations {
			fmt.Fprintf(&b, "  - %s\n", o)
		}
	}

	fmt.Fprintf(&b, "\n%s %s\n", pterm.Gray("decision:"), color(r.Decision.Headline()))
	return b.String()
}

// RenderPlain formats a report without terminal escapes, for files and logs.
func RenderPlain(r Report) string {
	var b strings.Builder
	rule := strings.Repeat("-", 72)

	name := r.Context.DisplayName
	if name == "" {
		name = "(unnamed formulation)"
	}

	fmt.Fprintf(&b, "%s\n%s\n%s\n", rule, name, rule)
	if r.Context.SourceCode != "" {
		fmt.Fprintf(&b, "Code: %s\n", r.Context.SourceCode)
	}
	fmt.Fprintf(&b, "Rule: %s\n", r.Prediction.RuleID)
	fmt.Fprintf(&b, "Confidence: %.2f (%s)\n\n", r.Prediction.Confidence, r.ConfidenceLevel)

	fmt.Fprintf(&b, "Results:\n  - %s\n  - %s\n\n", r.Affinity, r.Monolayer)

	fmt.Fprintf(&b, "Recommendations:\n")
	for _, rec := range r.Recommendations {
		fmt.Fprintf(&b, "  %s\n", rec)
	}
	fmt.Fprintf(&b, "\nWarnings:\n")
	if len(r.Warnings) == 0 {
		fmt.Fprintf(&b, "  (no critical warnings)\n")
	}
	for _, w := range r.Warnings {
		fmt.Fprintf(&b, "  %s\n", w)
	}
	fmt.Fprintf(&b, "\nSuggested optimizations:\n")
	if len(r.Optimizations) == 0 {
		fmt.Fprintf(&b, "  (none required)\n")
	}
	for _, o := range r.Optimizations {
		fmt.Fprintf(&b, "  - %s\n", o)
	}

	fmt.Fprintf(&b, "\nProduction decision:\n  >>> %s <<<\n", r.Decision.Headline())
	return b.String()
}

// RenderBatchSummary formats the tally header of a batch report.
func RenderBatchSummary(t Tally) string {
	var b strings.Builder
	bar := strings.Repeat("=", 72)
	fmt.Fprintf(&b, "%s\nFORMULATION DECISION REPORT\n%s\n\n", bar, bar)
	fmt.Fprintf(&b, "Formulations analyzed: %d\n", t.Total())
	fmt.Fprintf(&b, "Approved:             %d\n", t.Approved)
	fmt.Fprintf(&b, "Conditional/Viable:   %d\n", t.Conditional+t.Viable)
	fmt.Fprintf(&b, "Not approved:         %d\n", t.NotApproved)
	fmt.Fprintf(&b, "Need validation:      %d\n", t.NeedsValidation+t.Review)
	fmt.Fprintf(&b, "\n%s\n", bar)
	return b.String()
}
