package rdr

import (
	"github.com/nanoform/nanoform/errors"
)

// Prediction is the immutable result of one Evaluate call.
//
// RulePath is the ordered sequence of rule ids visited from root to the
// deepest matching rule. ProvenanceChain lists the provenance tags of the
// attributes read by the conditions along the accepted path, in first-read
// order, deduplicated, formatted "slot.attr:provenance".
type Prediction struct {
	RuleID          string           `json:"rule"`
	Affinity        string           `json:"predicted_affinity,omitempty"`
	Monolayer       string           `json:"monolayer_order,omitempty"`
	Asserted        *AttributeRecord `json:"asserted,omitempty"`
	AssertedSlot    string           `json:"asserted_slot,omitempty"`
	AssertedAttr    string           `json:"asserted_attr,omitempty"`
	Confidence      float64          `json:"confidence"`
	RulePath        []string         `json:"rule_path"`
	ProvenanceChain []string         `json:"provenance_chain"`
}

// Label returns the single headline value of the prediction: the affinity
// for label conclusions, the asserted attribute value otherwise.
func (p Prediction) Label() string {
	if p.Asserted != nil {
		return p.Asserted.Value
	}
	return p.Affinity
}

// Evaluate walks the exception hierarchy of the snapshot's rule tree against
// a case and returns the deepest matching conclusion with its confidence
// trace.
//
// The walk is iterative and deterministic: starting at the root (whose
// condition must hold, else ErrNoApplicableRule), each level scans the
// current rule's exceptions in declaration order and descends into the first
// whose condition holds. Siblings are never merged or voted across. The
// engine never mutates the case or the snapshot.
func Evaluate(snap *Snapshot, c *Case) (Prediction, error) {
	root := snap.Root()

	rootView := NewView(c)
	if !root.Condition.Holds(rootView) {
		return Prediction{}, errors.Wrapf(errors.ErrNoApplicableRule,
			"knowledge base %s", snap.Version())
	}

	best := root
	bestReads := rootView.Reads()
	path := []string{root.ID}
	pathReads := append([]Ref(nil), rootView.Reads()...)

	current := root
	for {
		var matched *Rule
		for _, ex := range current.Exceptions {
			// Fresh view per condition so reads of non-matching siblings
			// never pollute the provenance chain.
			v := NewView(c)
			if ex.Condition.Holds(v) {
				matched = ex
				bestReads = v.Reads()
				pathReads = append(pathReads, v.Reads()...)
				break
			}
		}
		if matched == nil {
			break
		}
		current = matched
		best = matched
		path = append(path, matched.ID)
	}

	pred := Prediction{
		RuleID:          best.ID,
		RulePath:        path,
		ProvenanceChain: provenanceChain(c, pathReads),
	}

	switch best.Conclusion.Kind {
	case AssertConclusion:
		rec := resolveAssertion(c, best)
		pred.Asserted = &rec
		pred.AssertedSlot = best.Conclusion.Slot
		pred.AssertedAttr = best.Conclusion.Attr
		pred.Confidence = rec.Confidence
	default:
		pred.Affinity = best.Conclusion.Affinity
		pred.Monolayer = best.Conclusion.Monolayer
		pred.Confidence = clamp01(weakestLink(c, bestReads) * best.Confidence)
	}

	return pred, nil
}

// weakestLink combines the extraction confidences of the attributes the
// firing rule's condition read: the minimum across reads, 0.0 when the
// condition read nothing (the root's tautology reads nothing, so a
// fall-through to the root always yields confidence 0.0).
func weakestLink(c *Case, reads []Ref) float64 {
	if len(reads) == 0 {
		return 0.0
	}
	min := 1.0
	for _, ref := range reads {
		if conf := c.Get(ref.Slot, ref.Attr).Confidence; conf < min {
			min = conf
		}
	}
	return min
}

// resolveAssertion materializes an assert conclusion: the asserted record's
// value comes from the declared source attribute, its confidence is the
// source extraction confidence discounted by the rule confidence, and its
// provenance is the rule's template expanded against the case. A rule with
// no declared source asserts the unknown record (the fall-through default).
func resolveAssertion(c *Case, r *Rule) AttributeRecord {
	cl := r.Conclusion
	if cl.Source.IsZero() {
		rec := UnknownAttribute()
		if cl.Provenance != "" {
			rec.Provenance = cl.expandProvenance(c, rec)
		}
		return rec
	}
	source := c.Get(cl.Source.Slot, cl.Source.Attr)
	return AttributeRecord{
		Value:      source.Value,
		Confidence: clamp01(source.Confidence * r.Confidence),
		Provenance: cl.expandProvenance(c, source),
	}
}

// provenanceChain formats the provenance tags of the attributes read along
// the accepted path, deduplicated in first-read order. Attributes that were
// never produced by any mechanism (provenance "none") are omitted.
func provenanceChain(c *Case, reads []Ref) []string {
	var chain []string
	seen := map[string]bool{}
	for _, ref := range reads {
		rec := c.Get(ref.Slot, ref.Attr)
		if rec.Provenance == "" || rec.Provenance == NoProvenance {
			continue
		}
		tag := ref.String() + ":" + rec.Provenance
		if seen[tag] {
			continue
		}
		seen[tag] = true
		chain = append(chain, tag)
	}
	return chain
}

func clamp01(v float64) float64 {
	if v < 0.0 {
		return 0.0
	}
	if v > 1.0 {
		return 1.0
	}
	return v
}
