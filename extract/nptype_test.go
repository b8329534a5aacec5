package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInferNanoparticleType(t *testing.T) {
	tests := []struct {
		name       string
		display    string
		synonyms   string
		definition string
		wantValue  string
		wantConf   float64
		wantProv   string
	}{
		{
			name:      "liposome high confidence",
			display:   "Liposomal Doxorubicin",
			wantValue: "lipid-based",
			wantConf:  0.95,
			wantProv:  "keywords:display",
		},
		{
			name:       "gold nanoparticle",
			definition: "A formulation composed of gold nanoparticles conjugated to a payload.",
			wantValue:  "metallic",
			wantConf:   0.9,
			wantProv:   "keywords:definition",
		},
		{
			name:       "plga polymeric",
			display:    "PLGA Nanoparticle Vaccine",
			definition: "A vaccine formulation using PLGA as the carrier matrix.",
			wantValue:  "polymeric",
			wantConf:   0.95, // 0.9 base + 0.05 multi-field boost
			wantProv:   "keywords:display,definition",
		},
		{
			name:       "lipid low tier still beats metallic high tier",
			display:    "Cholesteryl Carrier",
			definition: "A cholesteryl-based particle with a gold nanoparticle core.",
			wantValue:  "lipid-based",
			wantConf:   0.75, // 0.7 + boost
			wantProv:   "indirect:display,definition",
		},
		{
			name:      "carbon nanotube",
			display:   "Carbon Nanotubes",
			wantValue: "carbon-based",
			wantConf:  0.9,
			wantProv:  "keywords:display",
		},
		{
			name:      "quantum dot",
			display:   "CdSe Quantum Dot",
			wantValue: "semiconductor",
			wantConf:  0.9,
			wantProv:  "keywords:display",
		},
		{
			name:       "generic fallback",
			display:    "Therapeutic Agent XR-17",
			definition: "A nanoparticle formulation of an investigational agent.",
			wantValue:  "nanoparticle",
			wantConf:   0.6,
			wantProv:   "heuristic:contains_nanoparticle",
		},
		{
			name:       "no signal",
			display:    "Aspirin",
			definition: "A small-molecule analgesic.",
			wantValue:  "unknown",
			wantConf:   0.0,
			wantProv:   "none",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := InferNanoparticleType(tt.display, tt.synonyms, tt.definition)
			assert.Equal(t, tt.wantValue, rec.Value)
			assert.InDelta(t, tt.wantConf, rec.Confidence, 1e-9)
			assert.Equal(t, tt.wantProv, rec.Provenance)
			require.NoError(t, rec.Validate())
		})
	}
}

func TestMultiFieldBoostIsCapped(t *testing.T) {
	rec := InferNanoparticleType(
		"Stealth Liposome",
		"stealth liposome|pegylated liposome",
		"A stealth liposome formulation.",
	)
	assert.Equal(t, "lipid-based", rec.Value)
	// 0.95 + 2×0.05 would exceed the cap.
	assert.InDelta(t, 0.99, rec.Confidence, 1e-9)
}

func TestSeparatorAndPluralVariants(t *testing.T) {
	for _, text := range []string{
		"nano-emulsion carrier",
		"nanoemulsion carrier",
		"nanoemulsions for oral delivery",
	} {
		rec := InferNanoparticleType(text, "", "")
		assert.Equalf(t, "polymeric", rec.Value, "text %q", text)
	}
}

func TestInferNanoparticleSubtype(t *testing.T) {
	rec := InferNanoparticleSubtype("Superparamagnetic Iron Oxide Nanoparticle", "", "")
	assert.Equal(t, "spio", rec.Value)
	assert.InDelta(t, 0.85, rec.Confidence, 1e-9)

	assert.Equal(t, "unknown", InferNanoparticleSubtype("Gold Nanoparticle", "", "").Value)
}
