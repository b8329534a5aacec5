package extract

import (
	"regexp"

	"github.com/nanoform/nanoform/rdr"
)

var (
	dnaRE            = regexp.MustCompile(`(?i)\b(dna|plasmid|oligonucleotide|oligo)\b`)
	rnaRE            = regexp.MustCompile(`(?i)\b(rna|mrna|sirna|mirna|trna|rrna|microrna)\b`)
	proteinRE        = regexp.MustCompile(`(?i)\b(protein|peptide|enzyme|antibody|immunoglobulin|mab|cytokine)\b`)
	polysaccharideRE = regexp.MustCompile(`(?i)\b(polysaccharide|hyaluronic acid|hyaluronate|dextran|heparin|chitosan)\b`)
	membraneRE       = regexp.MustCompile(`(?i)\b(cell membrane|lipid bilayer|phospholipid|liposome|lipid raft)\b`)
	receptorRE       = regexp.MustCompile(`(?i)\b(receptor|antigen|marker|egfr|her2|cd\d{2,3})\b`)
	geneRE           = regexp.MustCompile(`(?i)\b(gene|oncogene|tumor suppressor|transcription factor|mrna expression)\b`)
)

// InferBiomolecule identifies the encapsulated or transported biomolecule.
// Nucleic acids first: they are the most specific signals and drive the
// carrier-complexation rules.
func InferBiomolecule(display, definition string) rdr.AttributeRecord {
	s := combine(display, definition)

	switch {
	case dnaRE.MatchString(s):
		return rdr.AttributeRecord{Value: "DNA", Confidence: 0.95, Provenance: "keywords"}
	case rnaRE.MatchString(s):
		return rdr.AttributeRecord{Value: "RNA", Confidence: 0.95, Provenance: "keywords"}
	case proteinRE.MatchString(s):
		return rdr.AttributeRecord{Value: "protein", Confidence: 0.9, Provenance: "keywords"}
	case polysaccharideRE.MatchString(s):
		return rdr.AttributeRecord{Value: "polysaccharide", Confidence: 0.85, Provenance: "keywords"}
	case membraneRE.MatchString(s):
		return rdr.AttributeRecord{Value: "membrane", Confidence: 0.8, Provenance: "definition"}
	case receptorRE.MatchString(s):
		return rdr.AttributeRecord{Value: "receptor", Confidence: 0.85, Provenance: "keywords"}
	case geneRE.MatchString(s):
		return rdr.AttributeRecord{Value: "gene", Confidence: 0.8, Provenance: "context"}
	}
	return rdr.UnknownAttribute()
}
