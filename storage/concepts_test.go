package storage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nanoform/nanoform/errors"
	dbtest "github.com/nanoform/nanoform/internal/testing"
)

const conceptCSV = `Code,Display Name,Synonyms,Definition,Semantic Type,Concept in Subset
C1234,Gold Nanoparticle,AuNP|Colloidal Gold,A nanoparticle composed of gold.,Manufactured Object,Nanoparticle Subset
C5678,PEGylated Liposome,Stealth Liposome,A liposome coated with polyethylene glycol.,Manufactured Object,
,Skipped Row,,,,
C9999,Antibody-Conjugated Silica Nanoparticle,,Mesoporous silica functionalized with antibody.,Manufactured Object,Nanoparticle Subset
`

func openTestDB(t *testing.T) *ConceptStore {
	t.Helper()
	return NewConceptStore(dbtest.CreateTestDB(t))
}

func TestImportCSV(t *testing.T) {
	store := openTestDB(t)

	n, err := store.ImportCSV(strings.NewReader(conceptCSV))
	require.NoError(t, err)
	assert.Equal(t, 3, n, "row with empty code should be skipped")

	count, err := store.Count()
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	c, err := store.GetByCode("C1234")
	require.NoError(t, err)
	assert.Equal(t, "Gold Nanoparticle", c.DisplayName)
	assert.Equal(t, "AuNP|Colloidal Gold", c.Synonyms)
	assert.Equal(t, "Manufactured Object", c.SemanticType)
}

func TestImportCSVReplacesExisting(t *testing.T) {
	store := openTestDB(t)

	_, err := store.ImportCSV(strings.NewReader(conceptCSV))
	require.NoError(t, err)

	updated := `Code,Display Name,Synonyms,Definition,Semantic Type,Concept in Subset
C1234,Gold Nanorod,AuNR,An elongated gold nanoparticle.,Manufactured Object,
`
	n, err := store.ImportCSV(strings.NewReader(updated))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	c, err := store.GetByCode("C1234")
	require.NoError(t, err)
	assert.Equal(t, "Gold Nanorod", c.DisplayName)

	count, err := store.Count()
	require.NoError(t, err)
	assert.Equal(t, 3, count, "re-import should replace, not duplicate")
}

func TestImportCSVRejectsMissingColumns(t *testing.T) {
	store := openTestDB(t)

	_, err := store.ImportCSV(strings.NewReader("Identifier,Label\nC1,Foo\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Code")
}

func TestGetByCodeNotFound(t *testing.T) {
	store := openTestDB(t)

	_, err := store.GetByCode("C0000")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}
