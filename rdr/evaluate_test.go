package rdr

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nanoform/nanoform/errors"
)

func labelRule(id string, cond Condition, affinity, monolayer string, conf float64) *Rule {
	return &Rule{
		ID:         id,
		Condition:  cond,
		Conclusion: Conclusion{Kind: LabelConclusion, Affinity: affinity, Monolayer: monolayer},
		Confidence: conf,
	}
}

func materialKnown() Condition {
	return NewCondition("material_known", func(v *View) bool {
		return v.Known(SlotNanoparticle, "type")
	})
}

func npTypeIs(name, want string) Condition {
	return NewCondition(name, func(v *View) bool {
		return v.Value(SlotNanoparticle, "type") == want
	})
}

// testTree builds a miniature affinity tree:
//
//	root (always, unknown, 0.0)
//	└─ material (nanoparticle.type known, low/none, 0.3)
//	   ├─ metallic (type == metallic, high/ordered, 0.9)
//	   └─ polymeric (type == polymeric, moderate/stable, 0.9)
func testTree(t *testing.T) *Snapshot {
	t.Helper()

	root := labelRule("root", Always, "unknown", "unknown", 0.0)
	material := labelRule("material", materialKnown(), "low", "none", 0.3)
	material.AddException(labelRule("metallic", npTypeIs("metallic_np", "metallic"), "high", "ordered", 0.9))
	material.AddException(labelRule("polymeric", npTypeIs("polymeric_np", "polymeric"), "moderate", "stable", 0.9))
	root.AddException(material)

	snap, err := NewSnapshot(root, "1.0.0-test")
	require.NoError(t, err)
	return snap
}

func metallicCase(conf float64) *Case {
	c := NewCase()
	c.Set(SlotNanoparticle, "type", AttributeRecord{Value: "metallic", Confidence: conf, Provenance: "keywords:display"})
	return c
}

func TestEvaluateDeterminism(t *testing.T) {
	snap := testTree(t)
	c := metallicCase(0.9)

	first, err := Evaluate(snap, c)
	require.NoError(t, err)
	second, err := Evaluate(snap, c)
	require.NoError(t, err)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("identical inputs produced different predictions (-first +second):\n%s", diff)
	}
}

func TestEvaluateDeepestMatchWins(t *testing.T) {
	snap := testTree(t)

	pred, err := Evaluate(snap, metallicCase(0.9))
	require.NoError(t, err)

	assert.Equal(t, "metallic", pred.RuleID)
	assert.Equal(t, "high", pred.Affinity)
	assert.Equal(t, "ordered", pred.Monolayer)
	assert.Equal(t, []string{"root", "material", "metallic"}, pred.RulePath)
	// min(0.9) * 0.9
	assert.InDelta(t, 0.81, pred.Confidence, 1e-9)
}

func TestExceptionPrecedenceFirstDeclaredWins(t *testing.T) {
	// Two siblings whose conditions both hold: the result must equal
	// evaluating with only the first present. The second is never reached.
	build := func(withSecond bool) *Snapshot {
		root := labelRule("root", Always, "unknown", "unknown", 0.0)
		parent := labelRule("material", materialKnown(), "low", "none", 0.3)
		parent.AddException(labelRule("first", materialKnown(), "high", "ordered", 0.9))
		if withSecond {
			parent.AddException(labelRule("second", materialKnown(), "low", "unstable", 0.8))
		}
		root.AddException(parent)
		snap, err := NewSnapshot(root, "1.0.0-test")
		require.NoError(t, err)
		return snap
	}

	c := metallicCase(0.9)

	both, err := Evaluate(build(true), c)
	require.NoError(t, err)
	onlyFirst, err := Evaluate(build(false), c)
	require.NoError(t, err)

	if diff := cmp.Diff(onlyFirst, both); diff != "" {
		t.Fatalf("second sibling leaked into the result (-onlyFirst +both):\n%s", diff)
	}
	assert.Equal(t, "first", both.RuleID)
}

func TestConfidenceMonotonicity(t *testing.T) {
	// A rule firing on an attribute with extraction confidence 0.0 must
	// never produce a non-zero prediction confidence.
	snap := testTree(t)

	c := NewCase()
	c.Set(SlotNanoparticle, "type", AttributeRecord{Value: "metallic", Confidence: 0.0, Provenance: "indirect"})

	pred, err := Evaluate(snap, c)
	require.NoError(t, err)
	assert.Equal(t, "metallic", pred.RuleID)
	assert.Equal(t, 0.0, pred.Confidence)
}

func TestConfidenceBounds(t *testing.T) {
	snap := testTree(t)

	for _, conf := range []float64{0.0, 0.01, 0.5, 0.99, 1.0} {
		pred, err := Evaluate(snap, metallicCase(conf))
		require.NoError(t, err)
		assert.GreaterOrEqual(t, pred.Confidence, 0.0)
		assert.LessOrEqual(t, pred.Confidence, 1.0)
	}
}

func TestRootTotality(t *testing.T) {
	// Every syntactically valid case, even all-unknown, falls through to the
	// root conclusion without error.
	snap := testTree(t)

	pred, err := Evaluate(snap, NewCase())
	require.NoError(t, err)

	assert.Equal(t, "root", pred.RuleID)
	assert.Equal(t, "unknown", pred.Affinity)
	assert.Equal(t, 0.0, pred.Confidence)
	assert.Equal(t, []string{"root"}, pred.RulePath)
	assert.Empty(t, pred.ProvenanceChain)
}

func TestNoApplicableRuleIsFatal(t *testing.T) {
	// A root whose condition can fail signals a malformed knowledge base.
	brokenRoot := &Rule{
		ID:         "root",
		Condition:  NewCondition(AlwaysName, func(*View) bool { return false }),
		Conclusion: Conclusion{Kind: LabelConclusion, Affinity: "unknown"},
	}
	snap, err := NewSnapshot(brokenRoot, "1.0.0-test")
	require.NoError(t, err)

	_, err = Evaluate(snap, NewCase())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrNoApplicableRule))
}

func TestWeakestLinkAcrossMultipleReads(t *testing.T) {
	root := labelRule("root", Always, "unknown", "unknown", 0.0)
	electro := labelRule("electro", NewCondition("electrostatic_pair", func(v *View) bool {
		return v.Value(SlotNanoparticle, "surface_charge") == "positive" &&
			v.Value(SlotLigand, "charge") == "negative"
	}), "high", "stable", 0.95)
	root.AddException(electro)
	snap, err := NewSnapshot(root, "1.0.0-test")
	require.NoError(t, err)

	c := NewCase()
	c.Set(SlotNanoparticle, "surface_charge", AttributeRecord{Value: "positive", Confidence: 0.9, Provenance: "parametric:zeta"})
	c.Set(SlotLigand, "charge", AttributeRecord{Value: "negative", Confidence: 0.7, Provenance: "inferred:chemical_group"})

	pred, err := Evaluate(snap, c)
	require.NoError(t, err)

	// min(0.9, 0.7) * 0.95
	assert.InDelta(t, 0.665, pred.Confidence, 1e-9)
	assert.Equal(t, []string{
		"nanoparticle.surface_charge:parametric:zeta",
		"ligand.charge:inferred:chemical_group",
	}, pred.ProvenanceChain)
}

func TestAssertionConclusionPropagation(t *testing.T) {
	// Ligand-to-surface propagation: asserted value and confidence come from
	// the source attribute, discounted by the rule confidence, with the
	// provenance template expanded against the case.
	root := &Rule{
		ID:        "sc_root",
		Condition: Always,
		Conclusion: Conclusion{
			Kind: AssertConclusion, Slot: SlotSurface, Attr: "charge",
			Provenance: "propagated_from_nanoparticle:none",
		},
	}
	coincidence := &Rule{
		ID: "sc_material_coincidence",
		Condition: NewCondition("ligand_material_coincidence", func(v *View) bool {
			return v.Value(SlotSurface, "material") == "albumin" &&
				v.Value(SlotLigand, "type") == "albumin" &&
				v.Get(SlotLigand, "charge").Known()
		}),
		Conclusion: Conclusion{
			Kind: AssertConclusion, Slot: SlotSurface, Attr: "charge",
			Source:     Ref{Slot: SlotLigand, Attr: "charge"},
			Provenance: "inferred_from_surface_material:{ligand.type}",
		},
		Confidence: 0.85,
	}
	root.AddException(coincidence)
	snap, err := NewSnapshot(root, "1.0.0-test")
	require.NoError(t, err)

	c := NewCase()
	c.Set(SlotLigand, "type", AttributeRecord{Value: "albumin", Confidence: 0.60, Provenance: "keywords"})
	c.Set(SlotLigand, "charge", AttributeRecord{Value: "negative", Confidence: 0.65, Provenance: "inferred:from_type:albumin"})
	c.Set(SlotSurface, "material", AttributeRecord{Value: "albumin", Confidence: 0.9, Provenance: "ligand:albumin"})

	pred, err := Evaluate(snap, c)
	require.NoError(t, err)

	require.NotNil(t, pred.Asserted)
	assert.Equal(t, "negative", pred.Asserted.Value)
	assert.InDelta(t, 0.65*0.85, pred.Asserted.Confidence, 1e-9)
	assert.Equal(t, "inferred_from_surface_material:albumin", pred.Asserted.Provenance)
	assert.Equal(t, SlotSurface, pred.AssertedSlot)
	assert.Equal(t, "charge", pred.AssertedAttr)
	assert.Equal(t, "negative", pred.Label())

	// Fall-through root asserts unknown with the declared provenance.
	fallthroughPred, err := Evaluate(snap, NewCase())
	require.NoError(t, err)
	require.NotNil(t, fallthroughPred.Asserted)
	assert.Equal(t, Unknown, fallthroughPred.Asserted.Value)
	assert.Equal(t, 0.0, fallthroughPred.Asserted.Confidence)
	assert.Equal(t, "propagated_from_nanoparticle:none", fallthroughPred.Asserted.Provenance)
}

func TestSnapshotRejectsDuplicateIDs(t *testing.T) {
	root := labelRule("root", Always, "unknown", "unknown", 0.0)
	root.AddException(labelRule("dup", materialKnown(), "low", "none", 0.3))
	root.AddException(labelRule("dup", materialKnown(), "low", "none", 0.3))

	_, err := NewSnapshot(root, "1.0.0-test")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrDuplicateRuleID))
}

func TestSnapshotRejectsNonTautologicalRoot(t *testing.T) {
	root := labelRule("root", materialKnown(), "unknown", "unknown", 0.0)
	_, err := NewSnapshot(root, "1.0.0-test")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrRootNotTautology))
}

func TestEvaluateDoesNotMutateCase(t *testing.T) {
	snap := testTree(t)
	c := metallicCase(0.9)
	want := c.Get(SlotNanoparticle, "type")

	_, err := Evaluate(snap, c)
	require.NoError(t, err)

	assert.Equal(t, want, c.Get(SlotNanoparticle, "type"))
	assert.Len(t, c.Refs(), 1)
}
