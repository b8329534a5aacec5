package batch

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/nanoform/nanoform/rdr"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// testSnapshot builds a two-rule tree: a material rule over a tautological
// root.
func testSnapshot(t *testing.T) *rdr.Snapshot {
	t.Helper()
	root := &rdr.Rule{
		ID:         "root",
		Condition:  rdr.Always,
		Conclusion: rdr.Conclusion{Kind: rdr.LabelConclusion, Affinity: "unknown", Monolayer: "unknown"},
	}
	root.AddException(&rdr.Rule{
		ID: "material",
		Condition: rdr.NewCondition("material_known", func(v *rdr.View) bool {
			return v.Known(rdr.SlotNanoparticle, "type")
		}),
		Conclusion: rdr.Conclusion{Kind: rdr.LabelConclusion, Affinity: "high", Monolayer: "ordered"},
		Confidence: 0.9,
	})
	snap, err := rdr.NewSnapshot(root, "1.0.0")
	require.NoError(t, err)
	return snap
}

// brokenSnapshot has a root whose "always" condition lies, so every case
// fails with ErrNoApplicableRule.
func brokenSnapshot(t *testing.T) *rdr.Snapshot {
	t.Helper()
	root := &rdr.Rule{
		ID:         "root",
		Condition:  rdr.NewCondition(rdr.AlwaysName, func(*rdr.View) bool { return false }),
		Conclusion: rdr.Conclusion{Kind: rdr.LabelConclusion, Affinity: "unknown"},
	}
	snap, err := rdr.NewSnapshot(root, "1.0.0")
	require.NoError(t, err)
	return snap
}

func inputLine(code string, conf float64) string {
	return fmt.Sprintf(`{"context":{"source_code":%q,"display_name":"Case %s"},`+
		`"nanoparticle":{"type":"metallic","type_confidence":%v,"type_provenance":"keywords"}}`,
		code, code, conf)
}

func decodeOutput(t *testing.T, out *bytes.Buffer) []OutputRecord {
	t.Helper()
	var records []OutputRecord
	scanner := bufio.NewScanner(out)
	for scanner.Scan() {
		var rec OutputRecord
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &rec))
		records = append(records, rec)
	}
	require.NoError(t, scanner.Err())
	return records
}

func TestRunPreservesInputOrder(t *testing.T) {
	var in strings.Builder
	const n = 50
	for i := 0; i < n; i++ {
		in.WriteString(inputLine(fmt.Sprintf("C%04d", i), 0.9))
		in.WriteString("\n")
	}

	var out bytes.Buffer
	summary, err := NewRunner(testSnapshot(t), 8).Run(context.Background(), strings.NewReader(in.String()), &out)
	require.NoError(t, err)
	assert.Equal(t, n, summary.Total)
	assert.Equal(t, n, summary.Succeeded)
	assert.Zero(t, summary.Failed)

	records := decodeOutput(t, &out)
	require.Len(t, records, n)
	for i, rec := range records {
		assert.Equal(t, i, rec.Index)
		assert.Equal(t, fmt.Sprintf("C%04d", i), rec.Context.SourceCode)
		require.NotNil(t, rec.Prediction)
		assert.Equal(t, "material", rec.Prediction.RuleID)
	}
}

func TestRunRecordsErrorsAndContinues(t *testing.T) {
	in := strings.Join([]string{
		inputLine("C0001", 0.9),
		`{this is not json`,
		inputLine("C0003", 0.8),
	}, "\n")

	var out bytes.Buffer
	summary, err := NewRunner(testSnapshot(t), 2).Run(context.Background(), strings.NewReader(in), &out)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 2, summary.Succeeded)
	assert.Equal(t, 1, summary.Failed)
	assert.False(t, summary.KBFault)

	records := decodeOutput(t, &out)
	require.Len(t, records, 3)
	assert.Empty(t, records[0].Error)
	assert.NotEmpty(t, records[1].Error)
	assert.Nil(t, records[1].Prediction)
	assert.Empty(t, records[2].Error)
}

func TestRunInvalidAttributeFailsRecordOnly(t *testing.T) {
	in := strings.Join([]string{
		// Confidence out of bounds.
		`{"context":{"source_code":"C1"},"nanoparticle":{"type":"metallic","type_confidence":1.7}}`,
		inputLine("C2", 0.9),
	}, "\n")

	var out bytes.Buffer
	summary, err := NewRunner(testSnapshot(t), 1).Run(context.Background(), strings.NewReader(in), &out)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 1, summary.Succeeded)

	records := decodeOutput(t, &out)
	assert.Contains(t, records[0].Error, "out of [0,1]")
}

func TestRunMarksKBFault(t *testing.T) {
	in := inputLine("C1", 0.9) + "\n" + inputLine("C2", 0.9) + "\n"

	var out bytes.Buffer
	summary, err := NewRunner(brokenSnapshot(t), 2).Run(context.Background(), strings.NewReader(in), &out)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Failed)
	assert.True(t, summary.KBFault)

	// Both records still produced output.
	records := decodeOutput(t, &out)
	require.Len(t, records, 2)
	for _, rec := range records {
		assert.NotEmpty(t, rec.Error)
	}
}

func TestRunHonorsLimit(t *testing.T) {
	var in strings.Builder
	for i := 0; i < 10; i++ {
		in.WriteString(inputLine(fmt.Sprintf("C%d", i), 0.9))
		in.WriteString("\n")
	}

	var out bytes.Buffer
	summary, err := NewRunner(testSnapshot(t), 2).WithLimit(3).
		Run(context.Background(), strings.NewReader(in.String()), &out)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Total)
}

func TestRunSkipsBlankLines(t *testing.T) {
	in := inputLine("C1", 0.9) + "\n\n   \n" + inputLine("C2", 0.9) + "\n"

	var out bytes.Buffer
	summary, err := NewRunner(testSnapshot(t), 1).Run(context.Background(), strings.NewReader(in), &out)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Total)
}

func TestInputRecordCaseDecodesCompanionKeys(t *testing.T) {
	var rec InputRecord
	require.NoError(t, json.Unmarshal([]byte(`{
		"context": {"source_code": "C42", "display_name": "Liposomal siRNA"},
		"nanoparticle": {"type": "lipid-based", "type_confidence": 0.95, "type_provenance": "keywords"},
		"biomolecule": {"type": "RNA", "type_confidence": 0.95, "type_provenance": "keywords"},
		"ligand": {},
		"surface": {}
	}`), &rec))

	c, err := rec.Case()
	require.NoError(t, err)

	np := c.Get(rdr.SlotNanoparticle, "type")
	assert.Equal(t, "lipid-based", np.Value)
	assert.InDelta(t, 0.95, np.Confidence, 1e-9)
	assert.Equal(t, "keywords", np.Provenance)
	assert.Equal(t, "C42", c.Context.SourceCode)

	// Missing companion keys default safely.
	var sparse InputRecord
	require.NoError(t, json.Unmarshal([]byte(`{"surface":{"material":"unknown"}}`), &sparse))
	sc, err := sparse.Case()
	require.NoError(t, err)
	assert.Equal(t, rdr.NoProvenance, sc.Get(rdr.SlotSurface, "material").Provenance)
}

func TestInputRecordRejectsNonStringValue(t *testing.T) {
	var rec InputRecord
	require.NoError(t, json.Unmarshal([]byte(`{"nanoparticle":{"type":17}}`), &rec))
	_, err := rec.Case()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be a string")
}
