// Package instructions implements the charter-declared operations that
// reconcile a grid's columns before matching. Instructions are data, not
// code: the charter authors an ordered list of declarations, each of which
// resolves one logical column against the same immutable grid or fails with
// a structured error. Nothing here mutates the grid.
package instructions

import (
	"fmt"
	"strings"

	"github.com/openrec/openrec/pkg/datatype"
	"github.com/openrec/openrec/pkg/grid"
)

// Instruction is one charter-declared operation over the grid. Validate
// resolves the instruction's logical column to a single unified DataType or
// fails; it has no side effects on the grid and may run concurrently with
// other instructions' Validate calls.
type Instruction interface {
	// Kind names the operation in charter vocabulary ("merge", "project",
	// "derive", "filter").
	Kind() string

	// Column is the logical column the instruction establishes.
	Column() string

	// Validate resolves the instruction against the grid.
	Validate(g *grid.Grid) (Resolved, error)
}

// Resolved is the outcome of validating one instruction: the logical column
// name and the unified type the rest of the pipeline may assume for it.
type Resolved struct {
	Column string
	Type   datatype.DataType
}

// EmptyPolicy decides what happens when none of an instruction's declared
// source columns exist in any loaded file. The lenient default treats an
// entirely-optional logical column as a String rather than aborting the
// job; the strict policy fails instead.
type EmptyPolicy uint8

const (
	// DefaultString resolves an empty source set to String.
	DefaultString EmptyPolicy = iota

	// Reject fails an empty source set with ErrNoSourceColumns.
	Reject
)

// ParseEmptyPolicy parses a charter policy name.
func ParseEmptyPolicy(name string) (EmptyPolicy, error) {
	switch strings.ToLower(name) {
	case "", "default-string", "string":
		return DefaultString, nil
	case "reject", "fail":
		return Reject, nil
	}
	return DefaultString, fmt.Errorf("unknown empty-resolution policy %q", name)
}

// String returns the charter name of the policy.
func (p EmptyPolicy) String() string {
	if p == Reject {
		return "reject"
	}
	return "default-string"
}
