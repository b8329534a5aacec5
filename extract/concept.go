// Package extract turns free-text thesaurus concepts into structured
// evaluation cases: every heuristic emits a value, a confidence in [0,1],
// and a provenance tag naming the mechanism that produced it. Missing
// signals are left unset and read as unknown downstream, never as an error.
package extract

import (
	"regexp"
	"strings"
)

// Concept is one row of the NCI thesaurus subset: a concept code plus the
// free-text fields the heuristics mine.
type Concept struct {
	Code            string `json:"code"`
	DisplayName     string `json:"display_name"`
	Synonyms        string `json:"synonyms"`
	Definition      string `json:"definition"`
	SemanticType    string `json:"semantic_type"`
	ConceptInSubset string `json:"concept_in_subset"`
}

// Display returns the display name, falling back to the first synonym
// (synonyms are pipe-separated) when the name field is empty.
func (c Concept) Display() string {
	if name := strings.TrimSpace(c.DisplayName); name != "" {
		return name
	}
	syn := strings.TrimSpace(c.Synonyms)
	if syn == "" {
		return ""
	}
	first, _, _ := strings.Cut(syn, "|")
	return strings.TrimSpace(first)
}

// combine lowercases and joins non-empty text fields for regex scanning.
func combine(parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p != "" {
			kept = append(kept, strings.ToLower(p))
		}
	}
	return strings.Join(kept, " ")
}

var alphaToken = regexp.MustCompile(`^[A-Za-z]+$`)

// termPattern compiles a keyword into a tolerant regex: hyphen/space
// separator variants between tokens and an optional plural on the last
// token, bounded so long words never match inside other words.
func termPattern(term string) *regexp.Regexp {
	tokens := regexp.MustCompile(`[\s\-]+`).Split(strings.TrimSpace(term), -1)
	parts := make([]string, len(tokens))
	for i, tok := range tokens {
		esc := regexp.QuoteMeta(tok)
		if i == len(tokens)-1 && alphaToken.MatchString(tok) {
			if strings.HasSuffix(tok, "y") && len(tok) > 2 {
				esc = regexp.QuoteMeta(tok[:len(tok)-1]) + `(?:y|ies)`
			} else {
				esc += `(?:s|es)?`
			}
		}
		parts[i] = esc
	}
	return regexp.MustCompile(`(?i)\b` + strings.Join(parts, `[\s\-]*`) + `\b`)
}

func compileTerms(terms []string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, len(terms))
	for i, t := range terms {
		compiled[i] = termPattern(t)
	}
	return compiled
}
