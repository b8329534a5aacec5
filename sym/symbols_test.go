package sym

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCommandLookup(t *testing.T) {
	assert.Equal(t, "evaluate", Command(Rule))
	assert.Equal(t, "kb", Command(KB))
	assert.Equal(t, "", Command(Report))
	assert.Equal(t, "", Command("unregistered"))
}

func TestDescribe(t *testing.T) {
	assert.NotEmpty(t, Describe(Batch))
	assert.Empty(t, Describe("unregistered"))
}

func TestAllUniqueGlyphs(t *testing.T) {
	seen := map[string]bool{}
	for _, g := range All() {
		assert.False(t, seen[g], "glyph %q registered twice", g)
		seen[g] = true
	}
	assert.Len(t, seen, 7)
}
