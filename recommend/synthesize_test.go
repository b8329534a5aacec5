package recommend

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nanoform/nanoform/rdr"
)

func TestDecide(t *testing.T) {
	tests := []struct {
		name       string
		affinity   string
		monolayer  string
		confidence float64
		want       Decision
	}{
		{"low confidence gates everything", "high", "stable", 0.45, DecisionNeedsValidation},
		{"high stable", "high", "stable", 0.85, DecisionApproved},
		{"high ordered", "high", "ordered", 0.81, DecisionApproved},
		{"high semi-ordered", "high", "semi-ordered", 0.83, DecisionApproved},
		{"high fluid", "high", "fluid", 0.7, DecisionConditional},
		{"high disordered", "high", "disordered", 0.7, DecisionConditional},
		{"moderate stable", "moderate", "stable", 0.81, DecisionViable},
		{"moderate semi-ordered", "moderate", "semi-ordered", 0.7, DecisionViable},
		{"moderate fluid falls to review", "moderate", "fluid", 0.67, DecisionReview},
		{"low affinity", "low", "stable", 0.8, DecisionNotApproved},
		{"unstable monolayer", "moderate", "unstable", 0.8, DecisionNotApproved},
		{"unknown everything", "unknown", "unknown", 0.62, DecisionReview},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Decide(tt.affinity, tt.monolayer, tt.confidence))
		})
	}
}

func TestSynthesizeApproved(t *testing.T) {
	r := Synthesize(rdr.Prediction{
		RuleID:     "metallic_adsorption",
		Affinity:   "high",
		Monolayer:  "ordered",
		Confidence: 0.81,
	}, rdr.Context{SourceCode: "C1234", DisplayName: "Gold Nanoparticle Conjugate"})

	assert.Equal(t, DecisionApproved, r.Decision)
	assert.Equal(t, "medium", r.ConfidenceLevel)
	assert.Contains(t, r.Recommendations[0], "Optimal formulation")
	assert.Empty(t, r.Warnings)
	assert.NotEmpty(t, r.Optimizations)
}

func TestSynthesizeLowAffinity(t *testing.T) {
	r := Synthesize(rdr.Prediction{
		RuleID:     "peg_surface_repulsion",
		Affinity:   "low",
		Monolayer:  "disordered",
		Confidence: 0.72,
	}, rdr.Context{DisplayName: "PEG Brush Particle"})

	assert.Equal(t, DecisionNotApproved, r.Decision)
	assert.Contains(t, r.Warnings[0], "Low ligand-nanoparticle affinity")
	assert.Contains(t, r.Recommendations[0], "NOT RECOMMENDED")
}

func TestSynthesizeLipidFluidNote(t *testing.T) {
	r := Synthesize(rdr.Prediction{
		RuleID:     "lipid_general",
		Affinity:   "moderate",
		Monolayer:  "fluid",
		Confidence: 0.665,
	}, rdr.Context{DisplayName: "Plain Liposome"})

	var found bool
	for _, rec := range r.Recommendations {
		if strings.Contains(rec, "fluidity is expected in lipid formulations") {
			found = true
		}
	}
	assert.True(t, found, "lipid fluidity note missing: %v", r.Recommendations)
}

func TestSynthesizeUnknownDefaultsToValidation(t *testing.T) {
	r := Synthesize(rdr.Prediction{
		RuleID:     "root",
		Affinity:   "unknown",
		Monolayer:  "unknown",
		Confidence: 0.0,
	}, rdr.Context{})

	assert.Equal(t, DecisionNeedsValidation, r.Decision)
	assert.Contains(t, r.Warnings[0], "Insufficient data")
	assert.Contains(t, r.Optimizations[0], "zeta potential")
}

func TestTally(t *testing.T) {
	var tally Tally
	for _, d := range []Decision{
		DecisionApproved, DecisionApproved, DecisionConditional,
		DecisionViable, DecisionNotApproved, DecisionNeedsValidation, DecisionReview,
	} {
		tally.Add(d)
	}
	assert.Equal(t, 2, tally.Approved)
	assert.Equal(t, 1, tally.Conditional)
	assert.Equal(t, 1, tally.Viable)
	assert.Equal(t, 1, tally.NotApproved)
	assert.Equal(t, 1, tally.NeedsValidation)
	assert.Equal(t, 1, tally.Review)
	assert.Equal(t, 7, tally.Total())
}

func TestRenderPlainContainsDecision(t *testing.T) {
	r := Synthesize(rdr.Prediction{
		RuleID:     "antibody_targeting",
		Affinity:   "high",
		Monolayer:  "ordered",
		Confidence: 0.855,
	}, rdr.Context{SourceCode: "C2039", DisplayName: "Trastuzumab Conjugate"})

	out := RenderPlain(r)
	assert.Contains(t, out, "Trastuzumab Conjugate")
	assert.Contains(t, out, "antibody_targeting")
	assert.Contains(t, out, ">>> APPROVED for production")
}
