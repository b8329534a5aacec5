package rdr

// predicate is the standard Condition implementation: a named pure function
// over a case view.
type predicate struct {
	name  string
	holds func(v *View) bool
}

func (p predicate) Name() string       { return p.name }
func (p predicate) Holds(v *View) bool { return p.holds(v) }

// NewCondition wraps a pure function as a named condition.
func NewCondition(name string, holds func(v *View) bool) Condition {
	return predicate{name: name, holds: holds}
}

// Always is the designated always-true predicate. Root rules must use it;
// it reads no attributes, so a fall-through to the root carries confidence
// 0.0.
var Always = NewCondition(AlwaysName, func(*View) bool { return true })
