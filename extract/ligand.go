package extract

import (
	"regexp"

	"github.com/nanoform/nanoform/rdr"
)

var (
	antibodyRE = regexp.MustCompile(`(?i)\b(antibody|immunoconjugate|immunoglobulin|mab|igg|igm|scfv|fab|fc|nanobody|vhh)\b`)
	peptideRE  = regexp.MustCompile(`(?i)\b(peptide|peptid|oligopeptide|rgd|cell-penetrating peptide)\b`)
	aptamerRE  = regexp.MustCompile(`(?i)\b(aptamer)\b`)
	folateRE   = regexp.MustCompile(`(?i)\b(folate|folic acid)\b`)
	albuminRE  = regexp.MustCompile(`(?i)\b(albumin[-\s]bound|nab[-\s]|albumin[-\s]stabilized|albumin[-\s]coated|human\s+serum\s+albumin|hsa)\b`)
	targetRE   = regexp.MustCompile(`(?i)\b(target(ed)?|affinity|receptor-binding|moiety)\b`)

	hydrophobicRE = regexp.MustCompile(`(?i)\b(hydrophobic ligand|lipophilic|nonpolar)\b`)
	hydrophilicRE = regexp.MustCompile(`(?i)\b(hydrophilic|polar ligand)\b`)

	ligandCationicRE     = regexp.MustCompile(`(?i)\b(cationic|positively charged|\+ charge|cationic lipid|chitosan|polyethylenimine)\b`)
	ligandAnionicRE      = regexp.MustCompile(`(?i)\b(anionic|negatively charged|\- charge|carboxylate|sulfate|sulfonate|phosphate)\b`)
	ligandZwitterionicRE = regexp.MustCompile(`(?i)\b(zwitterionic)\b`)
)

// LigandProfile is the full extracted ligand characterization: what the
// ligand is, its polarity, and its electric charge, each with its own
// confidence and provenance.
type LigandProfile struct {
	Type     rdr.AttributeRecord
	Polarity rdr.AttributeRecord
	Charge   rdr.AttributeRecord
}

// InferLigand characterizes the targeting/coating ligand from the concept
// text. Type detection runs specific-first (antibody beats the generic
// "targeted" signal); when the text carries no explicit charge keywords the
// charge is defaulted from the detected type at reduced confidence —
// antibodies are near-neutral at physiological pH, albumin (pI ~4.7) and
// folate carry carboxyl groups and sit negative.
func InferLigand(display, synonyms, definition string) LigandProfile {
	s := combine(display, synonyms, definition)

	p := LigandProfile{
		Type:     rdr.UnknownAttribute(),
		Polarity: rdr.UnknownAttribute(),
		Charge:   rdr.UnknownAttribute(),
	}

	switch {
	case antibodyRE.MatchString(s):
		p.Type = rdr.AttributeRecord{Value: "antibody", Confidence: 0.95, Provenance: "keywords"}
	case peptideRE.MatchString(s):
		p.Type = rdr.AttributeRecord{Value: "peptide", Confidence: 0.9, Provenance: "keywords"}
	case aptamerRE.MatchString(s):
		p.Type = rdr.AttributeRecord{Value: "aptamer", Confidence: 0.9, Provenance: "keywords"}
	case folateRE.MatchString(s):
		p.Type = rdr.AttributeRecord{Value: "folate", Confidence: 0.9, Provenance: "keywords"}
	case albuminRE.MatchString(s):
		p.Type = rdr.AttributeRecord{Value: "albumin", Confidence: 0.9, Provenance: "keywords"}
	case pegRE.MatchString(s):
		p.Type = rdr.AttributeRecord{Value: "polymer-peg", Confidence: 0.8, Provenance: "keywords"}
	case targetRE.MatchString(s):
		p.Type = rdr.AttributeRecord{Value: "targeting", Confidence: 0.7, Provenance: "context"}
	}

	switch {
	case hydrophobicRE.MatchString(s):
		p.Polarity = rdr.AttributeRecord{Value: "nonpolar", Confidence: 0.8, Provenance: "keywords"}
	case hydrophilicRE.MatchString(s):
		p.Polarity = rdr.AttributeRecord{Value: "polar", Confidence: 0.8, Provenance: "keywords"}
	case pegRE.MatchString(s):
		p.Polarity = rdr.AttributeRecord{Value: "hydrophilic", Confidence: 0.7, Provenance: "inferred"}
	}

	cationic := ligandCationicRE.MatchString(s)
	anionic := ligandAnionicRE.MatchString(s)
	switch {
	case cationic && anionic:
		p.Charge = rdr.AttributeRecord{Value: "ambiguous", Confidence: 0.0, Provenance: "conflict:ligand"}
	case cationic:
		p.Charge = rdr.AttributeRecord{Value: "positive", Confidence: 0.85, Provenance: "definition"}
	case anionic:
		p.Charge = rdr.AttributeRecord{Value: "negative", Confidence: 0.85, Provenance: "definition"}
	case ligandZwitterionicRE.MatchString(s):
		p.Charge = rdr.AttributeRecord{Value: "neutral", Confidence: 0.75, Provenance: "keywords"}
	case pegRE.MatchString(s):
		p.Charge = rdr.AttributeRecord{Value: "neutral", Confidence: 0.7, Provenance: "inferred"}
	}

	if !p.Charge.Known() && p.Charge.Value != "ambiguous" {
		switch p.Type.Value {
		case "antibody":
			p.Charge = rdr.AttributeRecord{Value: "neutral", Confidence: 0.6, Provenance: "inferred:from_type:antibody"}
		case "albumin":
			p.Charge = rdr.AttributeRecord{Value: "negative", Confidence: 0.65, Provenance: "inferred:from_type:albumin"}
		case "folate":
			p.Charge = rdr.AttributeRecord{Value: "negative", Confidence: 0.7, Provenance: "inferred:from_type:folate"}
		}
	}

	if !p.Polarity.Known() {
		switch p.Type.Value {
		case "antibody", "peptide", "albumin", "folate":
			p.Polarity = rdr.AttributeRecord{Value: "hydrophilic", Confidence: 0.7, Provenance: "inferred:from_type"}
		}
	}

	return p
}
