// Package errors provides error handling for nanoform.
//
// This package re-exports github.com/cockroachdb/errors, providing:
//   - Stack traces for debugging
//   - Error wrapping and context
//   - Hints and details for user-facing messages
//
// Usage:
//
//	// Create new error
//	err := errors.New("something went wrong")
//
//	// Wrap with context
//	if err := doSomething(); err != nil {
//	    return errors.Wrap(err, "failed to do something")
//	}
//
//	// Check errors
//	if errors.Is(err, errors.ErrNoApplicableRule) {
//	    // handle broken knowledge base
//	}
//
// For full documentation see: https://pkg.go.dev/github.com/cockroachdb/errors
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
)

// User-facing messages and details
var (
	WithHint    = crdb.WithHint
	WithHintf   = crdb.WithHintf
	WithDetail  = crdb.WithDetail
	WithDetailf = crdb.WithDetailf
)

// Error inspection
var (
	Is            = crdb.Is
	As            = crdb.As
	Unwrap        = crdb.Unwrap
	UnwrapOnce    = crdb.UnwrapOnce
	UnwrapAll     = crdb.UnwrapAll
	GetAllHints   = crdb.GetAllHints
	GetAllDetails = crdb.GetAllDetails
	FlattenHints  = crdb.FlattenHints
)

// Assertions
var (
	AssertionFailedf = crdb.AssertionFailedf
)

// Sentinel errors for the rule engine and knowledge-base assembly.
// Use these with errors.Is() for type-safe error checking.
// Wrap these with errors.Wrap() to add context while preserving the type.
var (
	// ErrNoApplicableRule indicates the root rule's condition did not hold.
	// The root is the catch-all default, so this always means the knowledge
	// base itself is malformed, never that a single case is bad.
	ErrNoApplicableRule = New("no applicable rule: root condition did not fire")

	// ErrUnknownParent indicates a rule declared a parent id that does not
	// exist or is declared after the child. Raised only during assembly.
	ErrUnknownParent = New("unknown parent rule")

	// ErrDuplicateRuleID indicates two rules share an id. Raised only
	// during assembly.
	ErrDuplicateRuleID = New("duplicate rule id")

	// ErrRootNotTautology indicates the root rule's condition is not the
	// designated always-true predicate. Raised only during assembly.
	ErrRootNotTautology = New("root condition is not the always-true predicate")

	// ErrUnknownCondition indicates a rule references a condition name
	// that is not registered. Raised only during assembly.
	ErrUnknownCondition = New("unknown condition")

	// ErrNotFound indicates the requested resource does not exist
	ErrNotFound = New("not found")
)

// IsAssemblyError reports whether err is one of the knowledge-base
// assembly failures. Assembly errors are fatal at startup: no partial
// knowledge base is ever published.
func IsAssemblyError(err error) bool {
	return Is(err, ErrUnknownParent) ||
		Is(err, ErrDuplicateRuleID) ||
		Is(err, ErrRootNotTautology) ||
		Is(err, ErrUnknownCondition)
}
