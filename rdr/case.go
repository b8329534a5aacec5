package rdr

import "sort"

// Domain slot names. Every attribute a rule condition can read lives under
// one of these slots.
const (
	SlotNanoparticle = "nanoparticle"
	SlotLigand       = "ligand"
	SlotBiomolecule  = "biomolecule"
	SlotSurface      = "surface"
)

// Context is the free-form traceability blob attached to a case. It is used
// only for display and audit, never for rule matching.
type Context struct {
	SourceCode   string `json:"source_code" yaml:"source_code"`
	DisplayName  string `json:"display_name" yaml:"display_name"`
	SemanticType string `json:"semantic_type,omitempty" yaml:"semantic_type,omitempty"`
}

// Case aggregates attribute records for one formulation: nanoparticle,
// ligand, biomolecule, and surface slots, plus traceability context. It is
// created fresh per evaluation request and never mutated by the engine.
//
// Missing attributes read as {"unknown", 0.0, "none"}; a sparse case is
// never an engine fault.
type Case struct {
	Attrs   map[string]map[string]AttributeRecord
	Context Context
}

// NewCase returns an empty case with all slots allocated.
func NewCase() *Case {
	return &Case{
		Attrs: map[string]map[string]AttributeRecord{
			SlotNanoparticle: {},
			SlotLigand:       {},
			SlotBiomolecule:  {},
			SlotSurface:      {},
		},
	}
}

// Set stores an attribute record under slot.attr.
func (c *Case) Set(slot, attr string, rec AttributeRecord) {
	if c.Attrs == nil {
		c.Attrs = map[string]map[string]AttributeRecord{}
	}
	if c.Attrs[slot] == nil {
		c.Attrs[slot] = map[string]AttributeRecord{}
	}
	c.Attrs[slot][attr] = rec
}

// Get returns the attribute record at slot.attr, defaulting missing keys to
// the unknown record.
func (c *Case) Get(slot, attr string) AttributeRecord {
	if c.Attrs == nil {
		return UnknownAttribute()
	}
	sec, ok := c.Attrs[slot]
	if !ok {
		return UnknownAttribute()
	}
	rec, ok := sec[attr]
	if !ok {
		return UnknownAttribute()
	}
	return rec
}

// Refs returns every populated attribute ref in deterministic order.
func (c *Case) Refs() []Ref {
	var refs []Ref
	for slot, sec := range c.Attrs {
		for attr := range sec {
			refs = append(refs, Ref{Slot: slot, Attr: attr})
		}
	}
	sort.Slice(refs, func(i, j int) bool {
		if refs[i].Slot != refs[j].Slot {
			return refs[i].Slot < refs[j].Slot
		}
		return refs[i].Attr < refs[j].Attr
	})
	return refs
}

// Validate checks every populated attribute record's invariants.
func (c *Case) Validate() error {
	for _, ref := range c.Refs() {
		if err := c.Get(ref.Slot, ref.Attr).Validate(); err != nil {
			return err
		}
	}
	return nil
}

// View wraps a Case for one condition evaluation and records which
// attributes the condition actually read, in first-read order. The recorded
// reads are the confidence basis and provenance chain of the firing rule.
type View struct {
	c     *Case
	reads []Ref
	seen  map[Ref]bool
}

// NewView returns a fresh read-tracking view over c.
func NewView(c *Case) *View {
	return &View{c: c, seen: map[Ref]bool{}}
}

// Get returns the record at slot.attr and records the read.
func (v *View) Get(slot, attr string) AttributeRecord {
	ref := Ref{Slot: slot, Attr: attr}
	if !v.seen[ref] {
		v.seen[ref] = true
		v.reads = append(v.reads, ref)
	}
	return v.c.Get(slot, attr)
}

// Value is a convenience accessor for the value at slot.attr.
func (v *View) Value(slot, attr string) string {
	return v.Get(slot, attr).Value
}

// Known reports whether slot.attr carries an extracted value.
func (v *View) Known(slot, attr string) bool {
	return v.Get(slot, attr).Known()
}

// Reads returns the attributes read so far, in first-read order.
func (v *View) Reads() []Ref {
	return v.reads
}
