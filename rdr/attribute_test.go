package rdr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAttributeRecordValidate(t *testing.T) {
	tests := []struct {
		name    string
		rec     AttributeRecord
		wantErr bool
	}{
		{"known attribute", AttributeRecord{Value: "positive", Confidence: 0.9, Provenance: "keywords"}, false},
		{"unknown with zero confidence", UnknownAttribute(), false},
		{"unknown with nonzero confidence", AttributeRecord{Value: Unknown, Confidence: 0.5, Provenance: NoProvenance}, true},
		{"confidence above one", AttributeRecord{Value: "negative", Confidence: 1.2, Provenance: "keywords"}, true},
		{"negative confidence", AttributeRecord{Value: "negative", Confidence: -0.1, Provenance: "keywords"}, true},
		{"empty provenance", AttributeRecord{Value: "negative", Confidence: 0.8}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rec.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestKnown(t *testing.T) {
	assert.True(t, AttributeRecord{Value: "albumin", Confidence: 0.9, Provenance: "keywords"}.Known())
	assert.False(t, UnknownAttribute().Known())
	assert.False(t, AttributeRecord{}.Known())
}

func TestRefString(t *testing.T) {
	assert.Equal(t, "ligand.charge", Ref{Slot: SlotLigand, Attr: "charge"}.String())
	assert.True(t, Ref{}.IsZero())
	assert.False(t, Ref{Slot: SlotSurface, Attr: "material"}.IsZero())
}
