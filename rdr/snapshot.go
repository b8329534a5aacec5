package rdr

import (
	"github.com/nanoform/nanoform/errors"
)

// Snapshot is an immutable, published rule tree. It is constructed once by
// knowledge-base assembly and shared read-only across all evaluation calls;
// extending the rule base rebuilds a fresh snapshot rather than patching the
// live tree.
type Snapshot struct {
	root    *Rule
	byID    map[string]*Rule
	version string
}

// NewSnapshot indexes a built rule tree. The root's condition must be the
// designated always-true predicate; rule ids must be unique across the tree.
func NewSnapshot(root *Rule, version string) (*Snapshot, error) {
	if root == nil {
		return nil, errors.New("snapshot requires a root rule")
	}
	if root.Condition == nil || root.Condition.Name() != AlwaysName {
		return nil, errors.Wrapf(errors.ErrRootNotTautology, "root rule %q", root.ID)
	}

	byID := make(map[string]*Rule)
	var index func(r *Rule) error
	index = func(r *Rule) error {
		if _, dup := byID[r.ID]; dup {
			return errors.Wrapf(errors.ErrDuplicateRuleID, "rule %q", r.ID)
		}
		byID[r.ID] = r
		for _, ex := range r.Exceptions {
			if err := index(ex); err != nil {
				return err
			}
		}
		return nil
	}
	if err := index(root); err != nil {
		return nil, err
	}

	return &Snapshot{root: root, byID: byID, version: version}, nil
}

// Root returns the tree's root rule.
func (s *Snapshot) Root() *Rule {
	return s.root
}

// Rule looks up a rule by id.
func (s *Snapshot) Rule(id string) (*Rule, bool) {
	r, ok := s.byID[id]
	return r, ok
}

// Version returns the knowledge-base semantic version this snapshot was
// built from.
func (s *Snapshot) Version() string {
	return s.version
}

// Len returns the number of rules in the tree.
func (s *Snapshot) Len() int {
	return len(s.byID)
}

// Walk visits every rule depth-first in declaration order, reporting each
// rule's depth (root = 0).
func (s *Snapshot) Walk(visit func(r *Rule, depth int)) {
	var walk func(r *Rule, depth int)
	walk = func(r *Rule, depth int) {
		visit(r, depth)
		for _, ex := range r.Exceptions {
			walk(ex, depth+1)
		}
	}
	walk(s.root, 0)
}

// Depth returns the maximum depth of the tree; evaluation is bounded by this
// many condition evaluations per level transition.
func (s *Snapshot) Depth() int {
	max := 0
	s.Walk(func(_ *Rule, depth int) {
		if depth > max {
			max = depth
		}
	})
	return max
}
