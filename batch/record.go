// Package batch implements the order-preserving JSONL evaluation boundary:
// one case per input line, one result per output line, output order matching
// input order regardless of worker scheduling. A malformed or unclassifiable
// record fails alone; the batch keeps going.
package batch

import (
	"encoding/json"
	"strings"

	"github.com/nanoform/nanoform/errors"
	"github.com/nanoform/nanoform/rdr"
	"github.com/nanoform/nanoform/recommend"
)

// InputRecord is one JSONL input line: the traceability context plus one
// object per slot. Slot objects use flat companion keys — `type`,
// `type_confidence`, `type_provenance` — for every attribute.
type InputRecord struct {
	Context      rdr.Context                `json:"context"`
	Nanoparticle map[string]json.RawMessage `json:"nanoparticle"`
	Ligand       map[string]json.RawMessage `json:"ligand"`
	Biomolecule  map[string]json.RawMessage `json:"biomolecule"`
	Surface      map[string]json.RawMessage `json:"surface"`
}

const (
	confidenceSuffix = "_confidence"
	provenanceSuffix = "_provenance"
)

// Case materializes the record into an evaluation case. Attributes with
// non-string values are rejected; missing confidence defaults to 0.0 and
// missing provenance to "none", then the record invariants are enforced.
func (r InputRecord) Case() (*rdr.Case, error) {
	c := rdr.NewCase()
	c.Context = r.Context

	slots := []struct {
		name  string
		attrs map[string]json.RawMessage
	}{
		{rdr.SlotNanoparticle, r.Nanoparticle},
		{rdr.SlotLigand, r.Ligand},
		{rdr.SlotBiomolecule, r.Biomolecule},
		{rdr.SlotSurface, r.Surface},
	}
	for _, slot := range slots {
		if err := decodeSlot(c, slot.name, slot.attrs); err != nil {
			return nil, err
		}
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func decodeSlot(c *rdr.Case, slot string, attrs map[string]json.RawMessage) error {
	for key, raw := range attrs {
		if strings.HasSuffix(key, confidenceSuffix) || strings.HasSuffix(key, provenanceSuffix) {
			continue
		}

		var value string
		if err := json.Unmarshal(raw, &value); err != nil {
			return errors.Wrapf(err, "%s.%s: attribute value must be a string", slot, key)
		}

		rec := rdr.AttributeRecord{Value: value, Provenance: rdr.NoProvenance}
		if confRaw, ok := attrs[key+confidenceSuffix]; ok {
			if err := json.Unmarshal(confRaw, &rec.Confidence); err != nil {
				return errors.Wrapf(err, "%s.%s%s", slot, key, confidenceSuffix)
			}
		}
		if provRaw, ok := attrs[key+provenanceSuffix]; ok {
			var prov string
			if err := json.Unmarshal(provRaw, &prov); err != nil {
				return errors.Wrapf(err, "%s.%s%s", slot, key, provenanceSuffix)
			}
			if prov != "" {
				rec.Provenance = prov
			}
		}
		c.Set(slot, key, rec)
	}
	return nil
}

// OutputRecord is one JSONL output line. Exactly one of Prediction or Error
// is populated; Index echoes the zero-based input line position.
type OutputRecord struct {
	Index      int                `json:"index"`
	Context    rdr.Context        `json:"context"`
	Prediction *rdr.Prediction    `json:"prediction,omitempty"`
	Decision   recommend.Decision `json:"decision,omitempty"`
	Error      string             `json:"error,omitempty"`

	// kbFault marks an ErrNoApplicableRule failure: a malformed knowledge
	// base rather than a bad record. Run-level, never serialized.
	kbFault bool
}
