package kb

import (
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/nanoform/nanoform/errors"
	"github.com/nanoform/nanoform/rdr"
)

// Table is the declarative, order-preserving rule table a knowledge base is
// assembled from. Rule order in the table encodes exception priority within
// a parent: the first declared sibling is tried first.
type Table struct {
	// Name identifies the table in logs and reports (e.g. "nanomedicine").
	Name string `toml:"name"`
	// Version is the knowledge base's semantic version, gated against the
	// engine's supported range at build time.
	Version string `toml:"version"`
	Rules   []RuleSpec `toml:"rule"`
}

// RuleSpec declares one rule: its stable id, parent (empty for the root),
// condition name, conclusion, expert confidence, and the cornerstone case
// ids it was authored to classify.
type RuleSpec struct {
	ID           string         `toml:"id"`
	Parent       string         `toml:"parent"`
	Condition    string         `toml:"condition"`
	Confidence   float64        `toml:"confidence"`
	Cornerstones []string       `toml:"cornerstones,omitempty"`
	Conclusion   ConclusionSpec `toml:"conclusion"`
}

// ConclusionSpec is the serialized form of rdr.Conclusion. Kind "label"
// carries affinity/monolayer; kind "assert" carries the target attribute,
// the "slot.attr" source reference, and a provenance template.
type ConclusionSpec struct {
	Kind       string `toml:"kind"`
	Affinity   string `toml:"affinity,omitempty"`
	Monolayer  string `toml:"monolayer,omitempty"`
	Slot       string `toml:"slot,omitempty"`
	Attr       string `toml:"attr,omitempty"`
	Source     string `toml:"source,omitempty"`
	Provenance string `toml:"provenance,omitempty"`
}

// ParseTable decodes a TOML rule table. Decoding preserves declaration
// order, which is semantically load-bearing.
func ParseTable(data []byte) (*Table, error) {
	var t Table
	if err := toml.Unmarshal(data, &t); err != nil {
		return nil, errors.Wrap(err, "parse rule table")
	}
	return &t, nil
}

// conclusion converts the declared form into the engine's tagged variant.
func (cs ConclusionSpec) conclusion() (rdr.Conclusion, error) {
	cl := rdr.Conclusion{
		Affinity:   cs.Affinity,
		Monolayer:  cs.Monolayer,
		Slot:       cs.Slot,
		Attr:       cs.Attr,
		Provenance: cs.Provenance,
	}
	switch cs.Kind {
	case "label", "":
		cl.Kind = rdr.LabelConclusion
	case "assert":
		cl.Kind = rdr.AssertConclusion
	default:
		return rdr.Conclusion{}, errors.Newf("unknown conclusion kind %q", cs.Kind)
	}
	if cs.Source != "" {
		ref, err := parseRef(cs.Source)
		if err != nil {
			return rdr.Conclusion{}, err
		}
		cl.Source = ref
	}
	if err := cl.Validate(); err != nil {
		return rdr.Conclusion{}, err
	}
	return cl, nil
}

func parseRef(s string) (rdr.Ref, error) {
	parts := strings.SplitN(s, ".", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return rdr.Ref{}, errors.Newf("malformed attribute reference %q (want slot.attr)", s)
	}
	return rdr.Ref{Slot: parts[0], Attr: parts[1]}, nil
}
