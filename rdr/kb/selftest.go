package kb

import (
	"fmt"
	"math"

	"github.com/nanoform/nanoform/errors"
	"github.com/nanoform/nanoform/rdr"
)

// confidenceTolerance absorbs float rounding when comparing a replayed
// conclusion's confidence against the recorded expectation.
const confidenceTolerance = 1e-9

// Failure describes one cornerstone case whose replay diverged from its
// recorded conclusion.
type Failure struct {
	Case   string
	Reason string
}

func (f Failure) String() string {
	return fmt.Sprintf("%s: %s", f.Case, f.Reason)
}

// Report summarizes a self-test pass over the embedded knowledge bases.
type Report struct {
	Cases    int
	Failures []Failure
}

// OK reports whether every cornerstone replayed to its recorded conclusion.
func (r Report) OK() bool {
	return len(r.Failures) == 0
}

// SelfTest rebuilds both embedded knowledge bases and replays every
// cornerstone case through them. A divergence means a table edit broke a
// conclusion some earlier rule was authored to protect.
//
// Errors are reserved for assembly faults; replay divergences come back in
// the report.
func SelfTest() (Report, error) {
	affinity, err := Default()
	if err != nil {
		return Report{}, err
	}
	charge, err := SurfaceCharge()
	if err != nil {
		return Report{}, err
	}
	cases, err := Cornerstones()
	if err != nil {
		return Report{}, err
	}
	return Replay(map[string]*rdr.Snapshot{
		"nanomedicine":  affinity,
		"surfacecharge": charge,
	}, cases)
}

// Replay evaluates each cornerstone case against its knowledge base and
// collects divergences. It also checks the reverse direction: every
// cornerstone id a rule cites must exist in the case set.
func Replay(snaps map[string]*rdr.Snapshot, cases []Cornerstone) (Report, error) {
	byID := make(map[string]bool, len(cases))
	for _, cs := range cases {
		byID[cs.ID] = true
	}

	report := Report{Cases: len(cases)}

	for name, snap := range snaps {
		snap.Walk(func(r *rdr.Rule, _ int) {
			for _, id := range r.Cornerstones {
				if !byID[id] {
					report.Failures = append(report.Failures, Failure{
						Case:   id,
						Reason: fmt.Sprintf("cited by rule %q in %s but not recorded", r.ID, name),
					})
				}
			}
		})
	}

	for _, cs := range cases {
		snap, ok := snaps[cs.KB]
		if !ok {
			return Report{}, errors.Newf("cornerstone %q names unknown knowledge base %q", cs.ID, cs.KB)
		}
		if fail, diverged := replayOne(snap, cs); diverged {
			report.Failures = append(report.Failures, fail)
		}
	}

	return report, nil
}

func replayOne(snap *rdr.Snapshot, cs Cornerstone) (Failure, bool) {
	pred, err := rdr.Evaluate(snap, cs.Case())
	if err != nil {
		return Failure{Case: cs.ID, Reason: fmt.Sprintf("evaluate: %v", err)}, true
	}

	diverge := func(format string, args ...any) (Failure, bool) {
		return Failure{Case: cs.ID, Reason: fmt.Sprintf(format, args...)}, true
	}

	if pred.RuleID != cs.Expect.Rule {
		return diverge("fired %q, expected %q", pred.RuleID, cs.Expect.Rule)
	}
	if cs.Expect.Affinity != "" && pred.Affinity != cs.Expect.Affinity {
		return diverge("affinity %q, expected %q", pred.Affinity, cs.Expect.Affinity)
	}
	if cs.Expect.Monolayer != "" && pred.Monolayer != cs.Expect.Monolayer {
		return diverge("monolayer %q, expected %q", pred.Monolayer, cs.Expect.Monolayer)
	}
	if cs.Expect.Value != "" {
		if pred.Asserted == nil {
			return diverge("no asserted attribute, expected value %q", cs.Expect.Value)
		}
		if pred.Asserted.Value != cs.Expect.Value {
			return diverge("asserted %q, expected %q", pred.Asserted.Value, cs.Expect.Value)
		}
	}
	if cs.Expect.Provenance != "" {
		if pred.Asserted == nil || pred.Asserted.Provenance != cs.Expect.Provenance {
			got := ""
			if pred.Asserted != nil {
				got = pred.Asserted.Provenance
			}
			return diverge("provenance %q, expected %q", got, cs.Expect.Provenance)
		}
	}
	if math.Abs(pred.Confidence-cs.Expect.Confidence) > confidenceTolerance {
		return diverge("confidence %.4f, expected %.4f", pred.Confidence, cs.Expect.Confidence)
	}
	return Failure{}, false
}
