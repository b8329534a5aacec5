package kb

import (
	"gopkg.in/yaml.v3"

	"github.com/nanoform/nanoform/errors"
	"github.com/nanoform/nanoform/rdr"
)

// Cornerstone is one recorded case from the authoring history: the concrete
// formulation a rule was added to classify correctly, together with the
// conclusion that rule must keep reproducing.
type Cornerstone struct {
	ID          string                                  `yaml:"id"`
	KB          string                                  `yaml:"kb"`
	Description string                                  `yaml:"description"`
	Attributes  map[string]map[string]cornerstoneRecord `yaml:"attributes"`
	Context     rdr.Context                             `yaml:"context"`
	Expect      Expectation                             `yaml:"expect"`
}

type cornerstoneRecord struct {
	Value      string  `yaml:"value"`
	Confidence float64 `yaml:"confidence"`
	Provenance string  `yaml:"provenance"`
}

// Expectation pins the conclusion a cornerstone case must produce. Affinity
// and Monolayer apply to label conclusions; Value and Provenance to assert
// conclusions.
type Expectation struct {
	Rule       string  `yaml:"rule"`
	Affinity   string  `yaml:"affinity"`
	Monolayer  string  `yaml:"monolayer"`
	Value      string  `yaml:"value"`
	Provenance string  `yaml:"provenance"`
	Confidence float64 `yaml:"confidence"`
}

// Case materializes the cornerstone's attribute records into an evaluation
// case.
func (cs Cornerstone) Case() *rdr.Case {
	c := rdr.NewCase()
	c.Context = cs.Context
	for slot, attrs := range cs.Attributes {
		for attr, rec := range attrs {
			c.Set(slot, attr, rdr.AttributeRecord{
				Value:      rec.Value,
				Confidence: rec.Confidence,
				Provenance: rec.Provenance,
			})
		}
	}
	return c
}

type cornerstoneFile struct {
	Cases []Cornerstone `yaml:"cases"`
}

// Cornerstones returns the embedded cornerstone cases for both knowledge
// bases.
func Cornerstones() ([]Cornerstone, error) {
	data, err := embedded.ReadFile("cornerstones.yaml")
	if err != nil {
		return nil, errors.Wrap(err, "read embedded cornerstones")
	}
	return parseCornerstones(data)
}

func parseCornerstones(data []byte) ([]Cornerstone, error) {
	var file cornerstoneFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, errors.Wrap(err, "parse cornerstones")
	}
	seen := make(map[string]bool, len(file.Cases))
	for _, cs := range file.Cases {
		if cs.ID == "" {
			return nil, errors.New("cornerstone with no id")
		}
		if seen[cs.ID] {
			return nil, errors.Newf("duplicate cornerstone id %q", cs.ID)
		}
		seen[cs.ID] = true
		if cs.Expect.Rule == "" {
			return nil, errors.Newf("cornerstone %q expects no rule", cs.ID)
		}
	}
	return file.Cases, nil
}
