package kb

import (
	"github.com/Masterminds/semver/v3"

	"github.com/nanoform/nanoform/errors"
	"github.com/nanoform/nanoform/rdr"
)

// SupportedVersions is the semver range of knowledge-base tables this engine
// can load. Major version 2 would signal an incompatible table schema.
const SupportedVersions = ">= 1.0.0, < 2.0.0"

// Build assembles an immutable snapshot from a declarative rule table.
//
// Assembly is pure construction: it validates the table, wires exception
// children to their parents in declaration order, and never evaluates a
// cornerstone case. All validation failures are fatal at startup; no partial
// knowledge base is ever published.
func Build(table *Table, reg Registry) (*rdr.Snapshot, error) {
	if len(table.Rules) == 0 {
		return nil, errors.Newf("rule table %q declares no rules", table.Name)
	}
	if err := checkVersion(table.Version); err != nil {
		return nil, err
	}

	built := make(map[string]*rdr.Rule, len(table.Rules))
	var root *rdr.Rule

	for _, spec := range table.Rules {
		if spec.ID == "" {
			return nil, errors.Newf("rule table %q contains a rule with no id", table.Name)
		}
		if _, dup := built[spec.ID]; dup {
			return nil, errors.Wrapf(errors.ErrDuplicateRuleID, "rule %q", spec.ID)
		}
		if spec.Confidence < 0.0 || spec.Confidence > 1.0 {
			return nil, errors.Newf("rule %q confidence %v out of [0,1]", spec.ID, spec.Confidence)
		}

		cond, ok := reg.Lookup(spec.Condition)
		if !ok {
			return nil, errors.Wrapf(errors.ErrUnknownCondition, "rule %q condition %q", spec.ID, spec.Condition)
		}

		conclusion, err := spec.Conclusion.conclusion()
		if err != nil {
			return nil, errors.Wrapf(err, "rule %q", spec.ID)
		}

		rule := &rdr.Rule{
			ID:           spec.ID,
			Condition:    cond,
			Conclusion:   conclusion,
			Confidence:   spec.Confidence,
			Cornerstones: spec.Cornerstones,
		}

		if spec.Parent == "" {
			if root != nil {
				return nil, errors.Newf("rule %q declares no parent but root is already %q", spec.ID, root.ID)
			}
			if spec.Condition != rdr.AlwaysName {
				return nil, errors.Wrapf(errors.ErrRootNotTautology, "rule %q uses condition %q", spec.ID, spec.Condition)
			}
			root = rule
		} else {
			parent, ok := built[spec.Parent]
			if !ok {
				return nil, errors.Wrapf(errors.ErrUnknownParent, "rule %q declares parent %q", spec.ID, spec.Parent)
			}
			parent.AddException(rule)
		}

		built[spec.ID] = rule
	}

	if root == nil {
		return nil, errors.Newf("rule table %q declares no root rule", table.Name)
	}

	return rdr.NewSnapshot(root, table.Version)
}

func checkVersion(version string) error {
	if version == "" {
		return errors.New("rule table declares no version")
	}
	v, err := semver.NewVersion(version)
	if err != nil {
		return errors.Wrapf(err, "rule table version %q", version)
	}
	constraint, err := semver.NewConstraint(SupportedVersions)
	if err != nil {
		return errors.Wrap(err, "parse supported version constraint")
	}
	if !constraint.Check(v) {
		return errors.Newf("rule table version %s outside supported range %s", version, SupportedVersions)
	}
	return nil
}
