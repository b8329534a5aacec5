package kb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nanoform/nanoform/errors"
)

func buildTOML(t *testing.T, src string) error {
	t.Helper()
	table, err := ParseTable([]byte(src))
	require.NoError(t, err)
	_, err = Build(table, DefaultRegistry())
	return err
}

func TestDefaultBuilds(t *testing.T) {
	snap, err := Default()
	require.NoError(t, err)
	assert.Equal(t, "1.2.0", snap.Version())
	assert.Equal(t, 21, snap.Len())

	root := snap.Root()
	assert.Equal(t, "root", root.ID)
	// Attribute families, in priority order, with their leaf counts. The
	// total must stay root + 5 nodes + 15 leaves.
	require.Len(t, root.Exceptions, 5)
	families := []struct {
		id     string
		leaves int
	}{
		{"biomolecule_node", 2},
		{"material_node", 4},
		{"charge_node", 2},
		{"surface_node", 3},
		{"ligand_node", 4},
	}
	leaves := 0
	for i, want := range families {
		node := root.Exceptions[i]
		assert.Equal(t, want.id, node.ID)
		assert.Len(t, node.Exceptions, want.leaves, "leaves under %s", want.id)
		leaves += len(node.Exceptions)
	}
	assert.Equal(t, snap.Len(), 1+len(root.Exceptions)+leaves)
}

func TestSurfaceChargeBuilds(t *testing.T) {
	snap, err := SurfaceCharge()
	require.NoError(t, err)
	assert.Equal(t, "1.1.0", snap.Version())
	assert.Equal(t, 5, snap.Len())
	assert.Equal(t, 1, snap.Depth())
}

func TestBuildRejectsUnknownParent(t *testing.T) {
	err := buildTOML(t, `
name = "t"
version = "1.0.0"

[[rule]]
id = "root"
condition = "always"
confidence = 0.0
[rule.conclusion]
kind = "label"
affinity = "unknown"

[[rule]]
id = "orphan"
parent = "nonexistent"
condition = "material_known"
confidence = 0.5
[rule.conclusion]
kind = "label"
affinity = "high"
`)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrUnknownParent)
}

func TestBuildRejectsDuplicateRuleID(t *testing.T) {
	err := buildTOML(t, `
name = "t"
version = "1.0.0"

[[rule]]
id = "root"
condition = "always"
confidence = 0.0
[rule.conclusion]
kind = "label"
affinity = "unknown"

[[rule]]
id = "root"
parent = "root"
condition = "material_known"
confidence = 0.5
[rule.conclusion]
kind = "label"
affinity = "high"
`)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrDuplicateRuleID)
}

func TestBuildRejectsNonTautologicalRoot(t *testing.T) {
	err := buildTOML(t, `
name = "t"
version = "1.0.0"

[[rule]]
id = "root"
condition = "material_known"
confidence = 0.5
[rule.conclusion]
kind = "label"
affinity = "high"
`)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrRootNotTautology)
}

func TestBuildRejectsUnknownCondition(t *testing.T) {
	err := buildTOML(t, `
name = "t"
version = "1.0.0"

[[rule]]
id = "root"
condition = "always"
confidence = 0.0
[rule.conclusion]
kind = "label"
affinity = "unknown"

[[rule]]
id = "bad"
parent = "root"
condition = "no_such_predicate"
confidence = 0.5
[rule.conclusion]
kind = "label"
affinity = "high"
`)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrUnknownCondition)
}

func TestBuildRejectsUnsupportedVersion(t *testing.T) {
	err := buildTOML(t, `
name = "t"
version = "2.0.0"

[[rule]]
id = "root"
condition = "always"
confidence = 0.0
[rule.conclusion]
kind = "label"
affinity = "unknown"
`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "outside supported range")
}

func TestBuildRejectsEmptyTable(t *testing.T) {
	err := buildTOML(t, `
name = "t"
version = "1.0.0"
`)
	require.Error(t, err)
}

func TestBuildRejectsOutOfRangeConfidence(t *testing.T) {
	err := buildTOML(t, `
name = "t"
version = "1.0.0"

[[rule]]
id = "root"
condition = "always"
confidence = 1.5
[rule.conclusion]
kind = "label"
affinity = "unknown"
`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of [0,1]")
}
