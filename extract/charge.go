package extract

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/nanoform/nanoform/rdr"
)

// Zeta potential with explicit sign and mV units, bounded so catalog codes
// like "ABC-30MV" never parse as measurements.
var zetaRE = regexp.MustCompile(`(?i)zeta\s*potential[^.,]{0,30}?([+\-]\d+(?:[.,]\d+)?)\s*m?v\b`)

var (
	highPosRE       = regexp.MustCompile(`(?i)\b(cationic|positively\s*charged|positive\s*charge|\+\s?charge)\b`)
	highNegRE       = regexp.MustCompile(`(?i)\b(anionic|negatively\s*charged|negative\s*charge|\-\s?charge)\b`)
	cationicLipidRE = regexp.MustCompile(`(?i)\b(dotap|dotma|dope|dodap|ddab|dc-chol|cationic\s*lipid|lipofectamine)\b`)
	// "amino acid" is peptide sequence vocabulary, not a charged group.
	amineRE = regexp.MustCompile(`(?i)\b(amine[-\s]functionalized|amine\s*groups?|amino[-\s]functionalized)\b`)
	pegRE   = regexp.MustCompile(`(?i)\b(peg|pegylat\w*|polyethylene glycol)\b`)
)

var posChemPatterns = compileLiteralTerms(
	"amine-functionalized", "polyethylenimine", "chitosan", "cationic lipid",
	"quaternary ammonium", "polylysine", "branched peimine",
)

var negChemPatterns = compileLiteralTerms(
	"carboxylate", "carboxylic acid", "sulfate", "sulfonate", "phosphate",
	"anionic polymer", "alginate",
)

var lowNeutralPatterns = compileLiteralTerms("zwitterionic", "neutral", "uncharged")

func compileLiteralTerms(terms ...string) []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, len(terms))
	for i, t := range terms {
		patterns[i] = regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(t) + `\b`)
	}
	return patterns
}

func anyMatch(patterns []*regexp.Regexp, s string) bool {
	for _, p := range patterns {
		if p.MatchString(s) {
			return true
		}
	}
	return false
}

type chargeEvidence struct {
	sign       string
	confidence float64
	provenance string
}

// parseZeta extracts a zeta-potential measurement and grades its confidence
// by magnitude: colloidal stability convention puts |ζ| ≥ 30 mV at strong
// evidence, tapering down to weak near zero.
func parseZeta(s string) (chargeEvidence, bool) {
	m := zetaRE.FindStringSubmatch(s)
	if m == nil {
		return chargeEvidence{}, false
	}
	val, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", "."), 64)
	if err != nil {
		return chargeEvidence{}, false
	}
	abs := val
	if abs < 0 {
		abs = -abs
	}
	var conf float64
	switch {
	case abs >= 30:
		conf = 0.95
	case abs >= 15:
		conf = 0.9
	case abs >= 5:
		conf = 0.8
	default:
		conf = 0.7
	}
	sign := "neutral"
	if val > 0 {
		sign = "positive"
	} else if val < 0 {
		sign = "negative"
	}
	return chargeEvidence{sign: sign, confidence: conf, provenance: "parametric:zeta"}, true
}

// InferCharge determines the nanoparticle surface charge from textual and
// parametric signals. Conflicting positive/negative evidence yields
// "ambiguous" at confidence 0.0 rather than guessing; a neutral signal next
// to a strong (≥ 0.9) charged signal loses, which handles phrases like
// "positive PEGylated micelles". Agreement between a textual signal and a
// zeta measurement earns a +0.05 boost.
func InferCharge(display, definition, conceptSubset string) rdr.AttributeRecord {
	s := combine(display, definition, conceptSubset)

	var evidences []chargeEvidence
	if highPosRE.MatchString(s) {
		evidences = append(evidences, chargeEvidence{"positive", 0.95, "keywords"})
	}
	if highNegRE.MatchString(s) {
		evidences = append(evidences, chargeEvidence{"negative", 0.95, "keywords"})
	}
	if cationicLipidRE.MatchString(s) {
		evidences = append(evidences, chargeEvidence{"positive", 0.90, "keywords:cationic_lipid"})
	}
	if amineRE.MatchString(s) {
		evidences = append(evidences, chargeEvidence{"positive", 0.85, "inferred:amine_functionalized"})
	}
	if anyMatch(posChemPatterns, s) {
		evidences = append(evidences, chargeEvidence{"positive", 0.85, "inferred:chemical_group"})
	}
	if anyMatch(negChemPatterns, s) {
		evidences = append(evidences, chargeEvidence{"negative", 0.85, "inferred:chemical_group"})
	}
	if pegRE.MatchString(s) {
		evidences = append(evidences, chargeEvidence{"neutral", 0.85, "keywords:peg"})
	}
	if anyMatch(lowNeutralPatterns, s) {
		evidences = append(evidences, chargeEvidence{"neutral", 0.75, "keywords"})
	}
	zeta, hasZeta := parseZeta(s)
	if hasZeta {
		evidences = append(evidences, zeta)
	}

	signs := map[string]bool{}
	for _, e := range evidences {
		signs[e.sign] = true
	}

	if signs["neutral"] && (signs["positive"] || signs["negative"]) {
		if best, ok := strongestCharged(evidences); ok {
			return rdr.AttributeRecord{Value: best.sign, Confidence: best.confidence, Provenance: best.provenance}
		}
	}

	if signs["positive"] && signs["negative"] {
		provs := map[string]bool{}
		for _, e := range evidences {
			provs[e.provenance] = true
		}
		sorted := make([]string, 0, len(provs))
		for p := range provs {
			sorted = append(sorted, p)
		}
		sort.Strings(sorted)
		return rdr.AttributeRecord{
			Value:      "ambiguous",
			Confidence: 0.0,
			Provenance: "conflict:" + strings.Join(sorted, ","),
		}
	}

	if len(evidences) > 0 {
		best := evidences[0]
		for _, e := range evidences[1:] {
			if e.confidence > best.confidence {
				best = e
			}
		}
		if hasZeta && best.sign == zeta.sign && best.confidence < maxKeywordConfidence && best.provenance != zeta.provenance {
			best.confidence = min(maxKeywordConfidence, best.confidence+0.05)
			best.provenance += ",parametric:zeta"
		}
		return rdr.AttributeRecord{Value: best.sign, Confidence: best.confidence, Provenance: best.provenance}
	}

	return rdr.UnknownAttribute()
}

// strongestCharged returns the highest-confidence non-neutral evidence at or
// above 0.9, if any.
func strongestCharged(evidences []chargeEvidence) (chargeEvidence, bool) {
	var best chargeEvidence
	found := false
	for _, e := range evidences {
		if e.sign == "neutral" || e.confidence < 0.9 {
			continue
		}
		if !found || e.confidence > best.confidence {
			best = e
			found = true
		}
	}
	return best, found
}
