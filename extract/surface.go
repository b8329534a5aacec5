package extract

import (
	"regexp"
	"strings"

	"github.com/nanoform/nanoform/rdr"
)

var (
	substrateGlassRE    = regexp.MustCompile(`(?i)\b(glass|silicon|silica substrate|quartz|sio2 surface)\b`)
	substratePlasticRE  = regexp.MustCompile(`(?i)\b(plastic|polystyrene|petri dish|cell culture plate)\b`)
	substrateMembraneRE = regexp.MustCompile(`(?i)\b(cell membrane|lipid bilayer|tissue|extracellular matrix|ecm|in vivo|in vitro surface)\b`)
	substrateMetalRE    = regexp.MustCompile(`(?i)\b(gold surface|au substrate|metal substrate|electrode)\b`)
	membraneNegativeRE  = regexp.MustCompile(`(?i)\b(negatively charged|anionic membrane)\b`)
	membranePositiveRE  = regexp.MustCompile(`(?i)\b(positively charged|cationic membrane)\b`)

	functionalizedRE = regexp.MustCompile(`(?i)\b(functionalized|conjugated|coated|bound|decorated|grafted|targeted|modified)\b`)
	pegylatedRE      = regexp.MustCompile(`(?i)\b(pegylated|peg[-\s]coated|stealth)\b`)

	coatingPhraseRE = regexp.MustCompile(`(?i)\b(?:coated|shell|functionalized|grafted|conjugated)\s*(?:with|by)?\s+([\w\-]+(?:\s+[\w\-]+)?)`)
)

// coatingMaterials maps detected coating phrases to standardized surface
// material labels.
var coatingMaterials = map[string]string{
	"peg": "peg", "polyethylene": "peg", "pegylated": "peg", "polyethylene glycol": "peg",
	"albumin": "albumin", "protein": "protein",
	"silica": "silica", "silicon": "silica", "sio2": "silica", "silicon dioxide": "silica",
	"lipid": "lipid", "liposomal": "lipid", "lipid bilayer": "lipid",
	"gold": "gold", "au": "gold",
	"polymer": "polymer", "polymeric": "polymer",
	"dextran":    "dextran",
	"iron oxide": "iron-oxide", "iron": "iron-oxide",
}

// stopWords are short captures from the coating phrase that are grammar, not
// materials.
var stopWords = map[string]bool{
	"to": true, "with": true, "by": true, "a": true, "an": true, "the": true,
	"c": true, "n": true, "o": true,
}

// surfaceLigands are ligand types that dominate the outer surface when
// present: whatever the core is made of, the environment sees the coating.
var surfaceLigands = map[string]string{
	"polymer-peg": "peg",
	"albumin":     "albumin",
	"antibody":    "antibody",
	"protein":     "protein",
	"peptide":     "peptide",
}

// InferSurfaceMaterial determines the outermost material of the particle.
// Priority: known coating ligand, then explicit coating/shell phrasing, then
// the core material itself.
func InferSurfaceMaterial(display, synonyms, definition string, ligand LigandProfile, npType rdr.AttributeRecord) rdr.AttributeRecord {
	if material, ok := surfaceLigands[ligand.Type.Value]; ok {
		return rdr.AttributeRecord{
			Value:      material,
			Confidence: 0.9,
			Provenance: "ligand:" + ligand.Type.Value,
		}
	}

	s := combine(display, synonyms, definition)
	if m := coatingPhraseRE.FindStringSubmatch(s); m != nil {
		captured := strings.ToLower(strings.TrimSpace(m[1]))
		if !stopWords[captured] {
			material := captured
			if mapped, ok := coatingMaterials[captured]; ok {
				material = mapped
			}
			return rdr.AttributeRecord{
				Value:      material,
				Confidence: 0.85,
				Provenance: "keywords:coating:" + material,
			}
		}
	}

	if npType.Known() {
		return rdr.AttributeRecord{
			Value:      npType.Value,
			Confidence: 0.7,
			Provenance: "propagated_from_np_type",
		}
	}
	return rdr.UnknownAttribute()
}

// InferSubstrateCharge infers the charge of the substrate or environment the
// particle interacts with, when the text names one. Glass and silica carry
// silanol groups (negative); cell membranes default negative for their
// phospholipid and glycocalyx content unless the text says otherwise; metal
// substrates depend on applied potential and stay unknown.
func InferSubstrateCharge(display, synonyms, definition string) rdr.AttributeRecord {
	s := combine(display, synonyms, definition)

	switch {
	case substrateGlassRE.MatchString(s):
		return rdr.AttributeRecord{Value: "negative", Confidence: 0.85, Provenance: "inferred:glass_substrate"}
	case substratePlasticRE.MatchString(s):
		return rdr.AttributeRecord{Value: "neutral", Confidence: 0.7, Provenance: "inferred:plastic_substrate"}
	case substrateMembraneRE.MatchString(s):
		switch {
		case membraneNegativeRE.MatchString(s):
			return rdr.AttributeRecord{Value: "negative", Confidence: 0.9, Provenance: "keywords:cell_membrane"}
		case membranePositiveRE.MatchString(s):
			return rdr.AttributeRecord{Value: "positive", Confidence: 0.9, Provenance: "keywords:cell_membrane"}
		}
		return rdr.AttributeRecord{Value: "negative", Confidence: 0.75, Provenance: "inferred:cell_membrane"}
	case substrateMetalRE.MatchString(s):
		return rdr.UnknownAttribute()
	}
	return rdr.UnknownAttribute()
}

// DetectFunctionalization reports explicit surface-modification phrasing.
// The surface-charge ladder uses it to gate the high-confidence
// ligand-to-surface propagation tier.
func DetectFunctionalization(display, synonyms, definition string) rdr.AttributeRecord {
	if functionalizedRE.MatchString(combine(display, synonyms, definition)) {
		return rdr.AttributeRecord{Value: "explicit", Confidence: 0.9, Provenance: "keywords:functionalized"}
	}
	return rdr.UnknownAttribute()
}

// DetectPegylation reports PEG surface coating phrasing.
func DetectPegylation(display, synonyms, definition string) rdr.AttributeRecord {
	if pegylatedRE.MatchString(combine(display, synonyms, definition)) {
		return rdr.AttributeRecord{Value: "pegylated", Confidence: 0.85, Provenance: "keywords:peg"}
	}
	return rdr.UnknownAttribute()
}
