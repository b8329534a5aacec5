// Package rdr implements the Generalized Ripple-Down Rule (GRDR) evaluation
// engine: an immutable tree of conclusion-producing rules where each node may
// be overridden by ordered child exception rules, combined with a
// confidence-propagation model that blends per-attribute extraction
// confidence with per-rule confidence.
//
// The engine is a pure function over an immutable Snapshot and an immutable
// Case. It holds no mutable shared state; evaluations may run fully in
// parallel once a snapshot is published.
package rdr

import (
	"github.com/nanoform/nanoform/errors"
)

// Unknown is the canonical value of an attribute no extraction mechanism
// could determine. An unknown attribute always carries confidence 0.0.
const Unknown = "unknown"

// NoProvenance is the provenance tag of attributes that were never produced
// by any mechanism (missing or defaulted).
const NoProvenance = "none"

// AttributeRecord is the normalized representation of one classified
// attribute: its value, the extraction confidence in [0,1], and a provenance
// tag identifying the mechanism that produced the value (e.g. "keywords:peg",
// "inferred:chemical_group", "parametric:zeta"). Provenance is append-only
// audit metadata, never used for matching logic.
//
// Records are produced once by extraction and are immutable afterward; the
// engine consumes them read-only.
type AttributeRecord struct {
	Value      string  `json:"value" yaml:"value"`
	Confidence float64 `json:"confidence" yaml:"confidence"`
	Provenance string  `json:"provenance" yaml:"provenance"`
}

// UnknownAttribute returns the record used for missing or undeterminable
// attributes: {"unknown", 0.0, "none"}.
func UnknownAttribute() AttributeRecord {
	return AttributeRecord{Value: Unknown, Confidence: 0.0, Provenance: NoProvenance}
}

// Known reports whether the record carries an actual extracted value.
func (a AttributeRecord) Known() bool {
	return a.Value != "" && a.Value != Unknown
}

// Validate checks the record invariants: confidence in [0,1], unknown values
// carry confidence 0.0, and provenance is always non-empty.
func (a AttributeRecord) Validate() error {
	if a.Confidence < 0.0 || a.Confidence > 1.0 {
		return errors.Newf("attribute confidence %v out of [0,1]", a.Confidence)
	}
	if !a.Known() && a.Confidence != 0.0 {
		return errors.Newf("unknown value must carry confidence 0.0, got %v", a.Confidence)
	}
	if a.Provenance == "" {
		return errors.New("attribute provenance must be non-empty")
	}
	return nil
}

// Ref identifies one attribute within a case by domain slot and name,
// e.g. {Slot: "ligand", Attr: "charge"}.
type Ref struct {
	Slot string
	Attr string
}

func (r Ref) String() string {
	return r.Slot + "." + r.Attr
}

// IsZero reports whether the ref is empty.
func (r Ref) IsZero() bool {
	return r.Slot == "" && r.Attr == ""
}
