package rdr

import (
	"strings"

	"github.com/nanoform/nanoform/errors"
)

// Condition is a pure boolean predicate over a case. Conditions read
// attributes through the View so the engine can record which attributes a
// firing rule consumed.
type Condition interface {
	// Name is the stable identifier the knowledge-base table binds rules to.
	Name() string
	// Holds evaluates the predicate. It must be side-effect-free.
	Holds(v *View) bool
}

// AlwaysName is the name of the designated always-true predicate. The root
// rule of every tree must use it.
const AlwaysName = "always"

// ConclusionKind tags the two conclusion variants a rule can assert.
type ConclusionKind string

const (
	// LabelConclusion asserts the affinity/monolayer composite prediction.
	LabelConclusion ConclusionKind = "label"
	// AssertConclusion asserts one case attribute, resolving its value and
	// confidence from a declared source attribute.
	AssertConclusion ConclusionKind = "assert"
)

// Conclusion is the tagged value a rule asserts when it fires.
//
// Label conclusions carry the predicted ligand-nanoparticle affinity and
// monolayer order. Assert conclusions name the attribute being asserted
// (Slot.Attr), the source attribute whose value and extraction confidence
// propagate into the assertion, and a provenance template expanded against
// the case (tokens of the form {slot.attr} resolve to attribute values;
// {source.provenance} resolves to the source record's provenance tag).
type Conclusion struct {
	Kind ConclusionKind

	// Label conclusion
	Affinity  string
	Monolayer string

	// Assert conclusion
	Slot       string
	Attr       string
	Source     Ref
	Provenance string
}

// Validate checks the conclusion is well-formed for its kind.
func (cl Conclusion) Validate() error {
	switch cl.Kind {
	case LabelConclusion:
		if cl.Affinity == "" {
			return errors.New("label conclusion missing affinity")
		}
	case AssertConclusion:
		if cl.Slot == "" || cl.Attr == "" {
			return errors.New("assert conclusion missing target attribute")
		}
	default:
		return errors.Newf("unknown conclusion kind %q", cl.Kind)
	}
	return nil
}

// expandProvenance resolves a provenance template against a case and the
// source record. Unrecognized tokens are left verbatim.
func (cl Conclusion) expandProvenance(c *Case, source AttributeRecord) string {
	tmpl := cl.Provenance
	if tmpl == "" {
		return source.Provenance
	}
	out := tmpl
	for strings.Contains(out, "{") {
		start := strings.Index(out, "{")
		end := strings.Index(out[start:], "}")
		if end < 0 {
			break
		}
		token := out[start+1 : start+end]
		var repl string
		switch {
		case token == "source.provenance":
			repl = source.Provenance
		case strings.Contains(token, "."):
			parts := strings.SplitN(token, ".", 2)
			repl = c.Get(parts[0], parts[1]).Value
		default:
			repl = token
		}
		out = out[:start] + repl + out[start+end+1:]
	}
	return out
}

// Rule is one node of the ripple-down tree: a stable id, a pure condition, a
// conclusion with an expert-assigned confidence, and an ordered list of
// exception children. Exceptions are evaluated only when the rule itself
// fires; they are tried in declaration order and the first match wins,
// descending recursively. Deeper, more specific rules silently override
// shallower, more general ones along the path taken.
//
// Cornerstones lists the case ids this rule was authored to correctly
// classify. They drive the regression self-test and are never consulted at
// evaluation time.
type Rule struct {
	ID           string
	Condition    Condition
	Conclusion   Conclusion
	Confidence   float64
	Exceptions   []*Rule
	Cornerstones []string
}

// AddException appends a child exception rule. Declaration order encodes
// override priority.
func (r *Rule) AddException(child *Rule) {
	r.Exceptions = append(r.Exceptions, child)
}
