package kb

import (
	"github.com/nanoform/nanoform/rdr"
)

// Registry maps stable condition names to their predicate implementations.
// The knowledge-base table binds rules to conditions by name, keeping "what
// the rule checks" (code) separate from "how rules compose" (data).
type Registry map[string]rdr.Condition

// Lookup returns the condition registered under name.
func (r Registry) Lookup(name string) (rdr.Condition, bool) {
	c, ok := r[name]
	return c, ok
}

func (r Registry) add(name string, holds func(v *rdr.View) bool) {
	r[name] = rdr.NewCondition(name, holds)
}

// lipidTypes are the nanoparticle type labels treated as lipid carriers.
var lipidTypes = map[string]bool{
	"lipid-based": true,
	"liposomal":   true,
	"lipid":       true,
}

// DefaultRegistry returns the predicate set backing both shipped rule
// tables: the affinity tree and the surface-charge propagation ladder.
func DefaultRegistry() Registry {
	r := Registry{}

	r[rdr.AlwaysName] = rdr.Always

	// Node gates: one per attribute family, in the order the root tries them.
	r.add("biomolecule_known", func(v *rdr.View) bool {
		return v.Known(rdr.SlotBiomolecule, "type")
	})
	r.add("material_known", func(v *rdr.View) bool {
		return v.Known(rdr.SlotNanoparticle, "type")
	})
	r.add("charge_signal", func(v *rdr.View) bool {
		return v.Known(rdr.SlotNanoparticle, "surface_charge") ||
			v.Known(rdr.SlotSurface, "charge")
	})
	r.add("surface_material_known", func(v *rdr.View) bool {
		return v.Known(rdr.SlotSurface, "material")
	})
	r.add("ligand_known", func(v *rdr.View) bool {
		return v.Known(rdr.SlotLigand, "type")
	})

	// Biomolecule refinements.
	r.add("rna_positive_np", func(v *rdr.View) bool {
		return v.Value(rdr.SlotBiomolecule, "type") == "RNA" &&
			v.Value(rdr.SlotNanoparticle, "surface_charge") == "positive"
	})
	r.add("liposomal_rna", func(v *rdr.View) bool {
		return lipidTypes[v.Value(rdr.SlotNanoparticle, "type")] &&
			v.Value(rdr.SlotBiomolecule, "type") == "RNA"
	})

	// Material refinements.
	r.add("spio_np", func(v *rdr.View) bool {
		return v.Value(rdr.SlotNanoparticle, "type") == "metallic" &&
			v.Value(rdr.SlotNanoparticle, "subtype") == "spio"
	})
	r.add("metallic_np", func(v *rdr.View) bool {
		t := v.Value(rdr.SlotNanoparticle, "type")
		return t == "metallic" || t == "metallic-gold"
	})
	r.add("polymeric_np", func(v *rdr.View) bool {
		return v.Value(rdr.SlotNanoparticle, "type") == "polymeric"
	})
	r.add("lipid_np", func(v *rdr.View) bool {
		return lipidTypes[v.Value(rdr.SlotNanoparticle, "type")]
	})

	// Charge refinements.
	r.add("electrostatic_pair", func(v *rdr.View) bool {
		return v.Value(rdr.SlotNanoparticle, "surface_charge") == "positive" &&
			v.Value(rdr.SlotLigand, "charge") == "negative"
	})

	// Surface refinements.
	r.add("pegylated_surface", func(v *rdr.View) bool {
		return v.Value(rdr.SlotSurface, "pegylation") == "pegylated"
	})
	r.add("polymeric_peg_surface", func(v *rdr.View) bool {
		return v.Value(rdr.SlotNanoparticle, "type") == "polymeric" &&
			v.Value(rdr.SlotSurface, "material") == "peg"
	})
	r.add("peg_surface_material", func(v *rdr.View) bool {
		return v.Value(rdr.SlotSurface, "material") == "peg"
	})

	// Ligand refinements.
	r.add("hydrophobic_adsorption", func(v *rdr.View) bool {
		t := v.Value(rdr.SlotNanoparticle, "type")
		return v.Value(rdr.SlotLigand, "polarity") == "nonpolar" &&
			(t == "metallic" || t == "polymeric")
	})
	r.add("hydrophilic_repulsion", func(v *rdr.View) bool {
		return v.Value(rdr.SlotLigand, "polarity") == "polar" &&
			v.Value(rdr.SlotNanoparticle, "surface_charge") == "negative"
	})
	r.add("antibody_ligand", func(v *rdr.View) bool {
		return v.Value(rdr.SlotLigand, "type") == "antibody"
	})
	r.add("polar_ligand", func(v *rdr.View) bool {
		p := v.Value(rdr.SlotLigand, "polarity")
		return p == "polar" || p == "hydrophilic"
	})

	// Surface-charge propagation ladder.
	r.add("substrate_charge_known", func(v *rdr.View) bool {
		return v.Known(rdr.SlotSurface, "substrate_charge")
	})
	r.add("np_charge_known", func(v *rdr.View) bool {
		return v.Known(rdr.SlotNanoparticle, "surface_charge")
	})
	r.add("ligand_charge_explicit", func(v *rdr.View) bool {
		charge := v.Get(rdr.SlotLigand, "charge")
		return charge.Known() && charge.Confidence >= 0.60 &&
			v.Value(rdr.SlotSurface, "functionalization") == "explicit"
	})
	r.add("ligand_material_coincidence", func(v *rdr.View) bool {
		charge := v.Get(rdr.SlotLigand, "charge")
		if !charge.Known() || charge.Confidence < 0.60 {
			return false
		}
		material := v.Value(rdr.SlotSurface, "material")
		ligand := v.Value(rdr.SlotLigand, "type")
		switch {
		case material == "albumin" && ligand == "albumin":
			return true
		case material == "antibody" && ligand == "antibody":
			return true
		case material == "peg" && ligand == "polymer-peg":
			return true
		}
		return false
	})

	return r
}
