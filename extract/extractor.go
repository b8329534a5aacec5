package extract

import (
	"github.com/nanoform/nanoform/logger"
	"github.com/nanoform/nanoform/rdr"
	"github.com/nanoform/nanoform/rdr/kb"
)

// Extractor converts thesaurus concepts into evaluation cases. It owns a
// snapshot of the surface-charge propagation ladder, which is itself a rule
// tree: surface charge is the one attribute decided by evaluation rather
// than by a direct heuristic.
type Extractor struct {
	ladder *rdr.Snapshot
}

// New builds an extractor over the embedded surface-charge ladder.
func New() (*Extractor, error) {
	ladder, err := kb.SurfaceCharge()
	if err != nil {
		return nil, err
	}
	return NewWithLadder(ladder), nil
}

// NewWithLadder wires an explicit surface-charge snapshot, e.g. a
// hot-rebuilt one.
func NewWithLadder(ladder *rdr.Snapshot) *Extractor {
	return &Extractor{ladder: ladder}
}

// CaseFromConcept runs every extraction heuristic over a thesaurus concept
// and assembles the structured case. Guarantees: every confidence in [0,1];
// unknown values carry 0.0; every populated record has non-empty provenance;
// any attribute a rule can read is present or defaults to unknown.
func (e *Extractor) CaseFromConcept(concept Concept) *rdr.Case {
	display := concept.Display()

	c := rdr.NewCase()
	c.Context = rdr.Context{
		SourceCode:   concept.Code,
		DisplayName:  display,
		SemanticType: concept.SemanticType,
	}

	setKnown := func(slot, attr string, rec rdr.AttributeRecord) {
		if rec.Known() || rec.Value == "ambiguous" {
			c.Set(slot, attr, rec)
		}
	}

	setKnown(rdr.SlotNanoparticle, "type",
		InferNanoparticleType(display, concept.Synonyms, concept.Definition))
	setKnown(rdr.SlotNanoparticle, "subtype",
		InferNanoparticleSubtype(display, concept.Synonyms, concept.Definition))
	setKnown(rdr.SlotNanoparticle, "surface_charge",
		InferCharge(display, concept.Definition, concept.ConceptInSubset))

	setKnown(rdr.SlotBiomolecule, "type",
		InferBiomolecule(display, concept.Definition))

	ligand := InferLigand(display, concept.Synonyms, concept.Definition)
	setKnown(rdr.SlotLigand, "type", ligand.Type)
	setKnown(rdr.SlotLigand, "polarity", ligand.Polarity)
	setKnown(rdr.SlotLigand, "charge", ligand.Charge)

	npType := c.Get(rdr.SlotNanoparticle, "type")
	setKnown(rdr.SlotSurface, "material",
		InferSurfaceMaterial(display, concept.Synonyms, concept.Definition, ligand, npType))
	setKnown(rdr.SlotSurface, "substrate_charge",
		InferSubstrateCharge(display, concept.Synonyms, concept.Definition))
	setKnown(rdr.SlotSurface, "functionalization",
		DetectFunctionalization(display, concept.Synonyms, concept.Definition))
	setKnown(rdr.SlotSurface, "pegylation",
		DetectPegylation(display, concept.Synonyms, concept.Definition))

	e.resolveSurfaceCharge(c)
	return c
}

// CaseFromText treats a free-text formulation description as an anonymous
// concept, for ad-hoc evaluation from the CLI.
func (e *Extractor) CaseFromText(text string) *rdr.Case {
	return e.CaseFromConcept(Concept{DisplayName: text})
}

// resolveSurfaceCharge runs the propagation ladder over the partially built
// case and asserts surface.charge from its conclusion. The ladder's root is
// tautological, so evaluation can only fail on a broken snapshot; in that
// case the attribute is left unknown and the fault logged.
func (e *Extractor) resolveSurfaceCharge(c *rdr.Case) {
	pred, err := rdr.Evaluate(e.ladder, c)
	if err != nil {
		logger.Errorw("Surface-charge ladder evaluation failed",
			logger.FieldCaseCode, c.Context.SourceCode,
			logger.FieldError, err)
		return
	}
	if pred.Asserted == nil {
		return
	}
	c.Set(pred.AssertedSlot, pred.AssertedAttr, *pred.Asserted)
}
