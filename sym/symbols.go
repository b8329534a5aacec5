// Package sym defines canonical symbols for nanoform operations and system markers.
// These symbols are stable across CLI output, logs, and reports.
package sym

// Glyph string constants — the visual expression of each subsystem.
const (
	Rule    = "⊩" // rule evaluation — a conclusion entailed by the knowledge base
	KB      = "⌂" // knowledge base — the rule tree and its assembly
	Case    = "◈" // case — one formulation under evaluation
	Extract = "⨳" // extraction — free text to structured attributes
	Batch   = "≣" // batch — ordered JSONL processing
	Report  = "▣" // report — human-facing recommendations
	DB      = "⊔" // database/storage layer
	Check   = "✓" // success marker
	Cross   = "✗" // failure marker
	Warn    = "⚠" // warning marker
)

// entry binds a glyph to its command and description.
type entry struct {
	glyph       string
	command     string
	description string
}

// registry is the canonical mapping between glyphs and subsystem metadata.
var registry = []entry{
	{Rule, "evaluate", "Evaluate a case against the rule tree"},
	{KB, "kb", "Inspect and validate the knowledge base"},
	{Case, "", "One formulation under evaluation"},
	{Extract, "import", "Extract structured attributes from thesaurus text"},
	{Batch, "batch", "Order-preserving JSONL batch evaluation"},
	{Report, "", "Recommendation report rendering"},
	{DB, "db", "Database and storage layer"},
}

// Command returns the CLI command associated with a glyph, or "" if the
// glyph is a pure marker.
func Command(glyph string) string {
	for _, e := range registry {
		if e.glyph == glyph {
			return e.command
		}
	}
	return ""
}

// Describe returns the description for a glyph, or "" if unknown.
func Describe(glyph string) string {
	for _, e := range registry {
		if e.glyph == glyph {
			return e.description
		}
	}
	return ""
}

// All returns every registered glyph in declaration order.
func All() []string {
	glyphs := make([]string, 0, len(registry))
	for _, e := range registry {
		glyphs = append(glyphs, e.glyph)
	}
	return glyphs
}
