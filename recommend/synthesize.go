// Package recommend turns engine predictions into actionable formulation
// guidance: a production decision band plus recommendation, warning, and
// optimization text, rendered for terminals or plain-text reports.
package recommend

import (
	"strings"

	"github.com/nanoform/nanoform/rdr"
)

// Decision is the go/no-go production band derived from a prediction.
type Decision string

const (
	DecisionApproved        Decision = "approved"
	DecisionConditional     Decision = "conditional"
	DecisionViable          Decision = "viable-with-optimization"
	DecisionNotApproved     Decision = "not-approved"
	DecisionNeedsValidation Decision = "needs-validation"
	DecisionReview          Decision = "review"
)

// Headline returns the production-decision sentence for the band.
func (d Decision) Headline() string {
	switch d {
	case DecisionApproved:
		return "APPROVED for production - proceed with batch validation"
	case DecisionConditional:
		return "CONDITIONAL - validate stability before scaling up"
	case DecisionViable:
		return "VIABLE WITH OPTIMIZATIONS - apply the suggested improvements"
	case DecisionNotApproved:
		return "NOT APPROVED - redesign required"
	case DecisionNeedsValidation:
		return "REQUIRES EXPERIMENTAL VALIDATION - insufficient data"
	default:
		return "REVIEW - consult the formulation team"
	}
}

// minDecisionConfidence is the floor below which no prediction supports a
// production decision.
const minDecisionConfidence = 0.6

// stableOrders are monolayer orders compatible with an approved or viable
// decision.
var stableOrders = map[string]bool{
	"stable":       true,
	"ordered":      true,
	"semi-ordered": true,
}

// Decide maps a prediction onto its production band. Confidence gates
// everything: below the floor the structural result is moot.
func Decide(affinity, monolayer string, confidence float64) Decision {
	if confidence < minDecisionConfidence {
		return DecisionNeedsValidation
	}
	switch {
	case affinity == "high" && stableOrders[monolayer]:
		return DecisionApproved
	case affinity == "high" && (monolayer == "fluid" || monolayer == "disordered"):
		return DecisionConditional
	case affinity == "moderate" && (monolayer == "stable" || monolayer == "semi-ordered"):
		return DecisionViable
	case affinity == "low" || monolayer == "unstable":
		return DecisionNotApproved
	default:
		return DecisionReview
	}
}

// Report is the synthesized guidance for one evaluated formulation.
type Report struct {
	Context    rdr.Context    `json:"context"`
	Prediction rdr.Prediction `json:"prediction"`

	Decision        Decision `json:"decision"`
	ConfidenceLevel string   `json:"confidence_level"`
	Affinity        string   `json:"affinity_summary"`
	Monolayer       string   `json:"monolayer_summary"`
	Recommendations []string `json:"recommendations"`
	Warnings        []string `json:"warnings"`
	Optimizations   []string `json:"optimizations"`
}

var affinitySummaries = map[string]string{
	"high":     "High ligand-nanoparticle affinity",
	"moderate": "Moderate ligand-nanoparticle affinity",
	"low":      "Low ligand-nanoparticle affinity",
	"unknown":  "Affinity not determined",
}

var monolayerSummaries = map[string]string{
	"stable":       "Stable monolayer with structured order",
	"semi-ordered": "Semi-ordered monolayer with intermediate stability",
	"ordered":      "Highly ordered monolayer",
	"fluid":        "Fluid monolayer with dynamic reorganization",
	"disordered":   "Disordered monolayer",
	"unstable":     "Unstable monolayer at risk of destabilization",
	"unknown":      "Monolayer order not determined",
}

func summary(table map[string]string, key string) string {
	if s, ok := table[key]; ok {
		return s
	}
	return key
}

// Synthesize builds the full guidance report for one prediction.
func Synthesize(pred rdr.Prediction, ctx rdr.Context) Report {
	affinity := pred.Affinity
	if affinity == "" {
		affinity = "unknown"
	}
	monolayer := pred.Monolayer
	if monolayer == "" {
		monolayer = "unknown"
	}

	r := Report{
		Context:         ctx,
		Prediction:      pred,
		Decision:        Decide(affinity, monolayer, pred.Confidence),
		ConfidenceLevel: confidenceLevel(pred.Confidence),
		Affinity:        summary(affinitySummaries, affinity),
		Monolayer:       summary(monolayerSummaries, monolayer),
	}

	switch {
	case affinity == "high" && stableOrders[monolayer]:
		r.Recommendations = append(r.Recommendations,
			"Optimal formulation for therapeutic use",
			"Proceed with characterization and stability assays")
		r.Optimizations = append(r.Optimizations,
			"Validate shelf life under controlled temperature",
			"Confirm self-assembly reproducibility across batches")

	case affinity == "high" && (monolayer == "fluid" || monolayer == "disordered"):
		r.Recommendations = append(r.Recommendations,
			"High affinity but suboptimal monolayer structure")
		r.Warnings = append(r.Warnings,
			"Risk of structural reorganization during storage")
		r.Optimizations = append(r.Optimizations,
			"Consider chemical crosslinking to stabilize the monolayer",
			"Evaluate temperature/pH conditions to improve order")

	case affinity == "moderate":
		r.Recommendations = append(r.Recommendations,
			"Viable formulation with recommended optimizations")
		if monolayer == "stable" || monolayer == "semi-ordered" {
			r.Optimizations = append(r.Optimizations,
				"Increase ligand concentration to improve coverage",
				"Try chemical modifications of the ligand (PEGylation, acetylation)")
		} else {
			r.Warnings = append(r.Warnings,
				"Monolayer requires additional stabilization")
			r.Optimizations = append(r.Optimizations,
				"Review the ligand:nanoparticle ratio",
				"Consider stabilizing excipients")
		}

	case affinity == "low":
		r.Warnings = append(r.Warnings,
			"Low ligand-nanoparticle affinity detected")
		r.Recommendations = append(r.Recommendations,
			"NOT RECOMMENDED for production without modification")
		r.Optimizations = append(r.Optimizations,
			"CRITICAL: redesign the surface functionalization",
			"Evaluate alternative ligands with better affinity",
			"Consider a different conjugation strategy")

	default:
		r.Warnings = append(r.Warnings,
			"Insufficient data for a reliable prediction")
		r.Recommendations = append(r.Recommendations,
			"Requires additional experimental characterization")
		r.Optimizations = append(r.Optimizations,
			"Measure zeta potential to determine surface charge",
			"Analyze the chemical composition of the coating")
	}

	if monolayer == "unstable" {
		r.Warnings = append(r.Warnings,
			"CRITICAL: unstable monolayer - high aggregation risk")
		r.Optimizations = append(r.Optimizations,
			"Urgent: revise formulation conditions")
	}
	if monolayer == "fluid" && strings.Contains(strings.ToLower(pred.RuleID), "lipid") {
		r.Recommendations = append(r.Recommendations,
			"Note: fluidity is expected in lipid formulations")
		r.Optimizations = append(r.Optimizations,
			"Validate the phase transition temperature")
	}

	return r
}

func confidenceLevel(confidence float64) string {
	switch {
	case confidence >= 0.9:
		return "high"
	case confidence >= 0.7:
		return "medium"
	default:
		return "low"
	}
}

// Tally accumulates decision-band counts across a batch.
type Tally struct {
	Approved        int `json:"approved"`
	Conditional     int `json:"conditional"`
	Viable          int `json:"viable"`
	NotApproved     int `json:"not_approved"`
	NeedsValidation int `json:"needs_validation"`
	Review          int `json:"review"`
}

// Add counts one decision.
func (t *Tally) Add(d Decision) {
	switch d {
	case DecisionApproved:
		t.Approved++
	case DecisionConditional:
		t.Conditional++
	case DecisionViable:
		t.Viable++
	case DecisionNotApproved:
		t.NotApproved++
	case DecisionNeedsValidation:
		t.NeedsValidation++
	default:
		t.Review++
	}
}

// Total returns the number of decisions tallied.
func (t Tally) Total() int {
	return t.Approved + t.Conditional + t.Viable + t.NotApproved + t.NeedsValidation + t.Review
}
