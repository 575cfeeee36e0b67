// Package errors provides the structured error types surfaced by the OpenRec
// core. Each component (schema parsing, grid aggregation, instruction
// validation, charter loading) has its own small error kind carrying the
// diagnostic fields an operator needs to fix the charter or the source file;
// JobError joins them into the single top-level error a job run returns.
package errors

import (
	"errors"
	"fmt"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Sentinel errors for programmatic checks with errors.Is.
var (
	// ErrNoSchemaRow indicates the type-code row was absent or unreadable
	// immediately after the header row.
	ErrNoSchemaRow = errors.New("no schema row")

	// ErrUnreadableHeaders indicates the header row itself could not be decoded.
	ErrUnreadableHeaders = errors.New("cannot read headers")

	// ErrMissingTypeCode indicates a column position with no type-code entry.
	ErrMissingTypeCode = errors.New("no schema type for column")

	// ErrUnknownTypeCode indicates an unrecognized (or placeholder "??")
	// type code stored in a schema row.
	ErrUnknownTypeCode = errors.New("unknown data type in column")

	// ErrDuplicateFile indicates two files with the same shortname in one run.
	ErrDuplicateFile = errors.New("duplicate file shortname")

	// ErrDuplicateHeader indicates a header repeated within one schema with a
	// conflicting type code. Repeats with an agreeing code are tolerated.
	ErrDuplicateHeader = errors.New("duplicate header with conflicting type")

	// ErrBadFilename indicates a file name outside the
	// <timestamp>_<shortname>.csv convention.
	ErrBadFilename = errors.New("malformed data file name")

	// ErrMissingColumn indicates a header present in a schema's header list
	// but absent from its type map, a schema-layer inconsistency.
	ErrMissingColumn = errors.New("missing source column")

	// ErrTypeConflict indicates two source columns resolving one logical
	// column to different data types.
	ErrTypeConflict = errors.New("conflicting data types")

	// ErrNoSourceColumns indicates that none of an instruction's declared
	// source columns exist in any loaded file (only raised under the reject
	// empty-resolution policy).
	ErrNoSourceColumns = errors.New("no valid source columns")

	// ErrInvalidCharter indicates a charter document that cannot be compiled
	// into an instruction pipeline.
	ErrInvalidCharter = errors.New("invalid charter")
)

// SchemaError reports a failure parsing one file's schema rows.
type SchemaError struct {
	File   string // shortname or path of the offending file
	Column int    // zero-based column index, -1 when not column-specific
	Header string // column header, when known
	Code   string // offending type code, when applicable
	Err    error  // sentinel classifying the failure
}

// Error implements the error interface.
func (e *SchemaError) Error() string {
	switch {
	case e.Column >= 0 && e.Code != "":
		return fmt.Sprintf("schema for %s: %v %d (%q): code %q", e.File, e.Err, e.Column, e.Header, e.Code)
	case e.Column >= 0:
		return fmt.Sprintf("schema for %s: %v %d (%q)", e.File, e.Err, e.Column, e.Header)
	default:
		return fmt.Sprintf("schema for %s: %v", e.File, e.Err)
	}
}

// Unwrap implements errors.Unwrap.
func (e *SchemaError) Unwrap() error {
	return e.Err
}

// NewSchemaError creates a SchemaError for a file-level failure.
func NewSchemaError(file string, err error) *SchemaError {
	return &SchemaError{File: file, Column: -1, Err: err}
}

// NewSchemaColumnError creates a SchemaError for one column position.
func NewSchemaColumnError(file string, column int, header, code string, err error) *SchemaError {
	return &SchemaError{File: file, Column: column, Header: header, Code: code, Err: err}
}

// GridError reports a failure aggregating files into a grid.
type GridError struct {
	Shortname string
	Path      string
	Err       error
}

// Error implements the error interface.
func (e *GridError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("grid: file %s (%s): %v", e.Shortname, e.Path, e.Err)
	}
	return fmt.Sprintf("grid: file %s: %v", e.Shortname, e.Err)
}

// Unwrap implements errors.Unwrap.
func (e *GridError) Unwrap() error {
	return e.Err
}

// NewGridError creates a new GridError.
func NewGridError(shortname, path string, err error) *GridError {
	return &GridError{Shortname: shortname, Path: path, Err: err}
}

// ConflictError reports two source columns resolving one logical column to
// different data types. Header/File identify the later-iterated physical
// column that diverged; BaselineHeader/BaselineFile identify the column that
// established the resolved type first. Conflicting and Baseline are the
// String() names of the two types.
type ConflictError struct {
	Column         string // logical (charter-authored) column
	Header         string // offending source header
	File           string // file declaring the offending header
	Conflicting    string // type declared by the offending header
	BaselineHeader string // header that resolved the type first
	BaselineFile   string // file that resolved the type first
	Baseline       string // previously resolved type
}

// Error implements the error interface.
func (e *ConflictError) Error() string {
	return fmt.Sprintf("column %s: header %q in %s has type %s, conflicting with %s resolved from %q in %s",
		e.Column, e.Header, e.File, e.Conflicting, e.Baseline, e.BaselineHeader, e.BaselineFile)
}

// Is implements errors.Is support.
func (e *ConflictError) Is(target error) bool {
	return target == ErrTypeConflict
}

// InstructionError wraps a failure validating one charter instruction.
type InstructionError struct {
	Kind   string // instruction kind, e.g. "merge"
	Column string // logical column the instruction targets
	Err    error
}

// Error implements the error interface.
func (e *InstructionError) Error() string {
	return fmt.Sprintf("instruction %s %q: %v", e.Kind, e.Column, e.Err)
}

// Unwrap implements errors.Unwrap.
func (e *InstructionError) Unwrap() error {
	return e.Err
}

// NewInstructionError creates a new InstructionError.
func NewInstructionError(kind, column string, err error) *InstructionError {
	return &InstructionError{Kind: kind, Column: column, Err: err}
}

// CharterError reports a charter document that cannot be loaded or compiled.
type CharterError struct {
	Path  string
	Field string
	Err   error
}

// Error implements the error interface.
func (e *CharterError) Error() string {
	switch {
	case e.Path != "" && e.Field != "":
		return fmt.Sprintf("charter %s: field %s: %v", e.Path, e.Field, e.Err)
	case e.Field != "":
		return fmt.Sprintf("charter field %s: %v", e.Field, e.Err)
	default:
		return fmt.Sprintf("charter %s: %v", e.Path, e.Err)
	}
}

// Unwrap implements errors.Unwrap.
func (e *CharterError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support.
func (e *CharterError) Is(target error) bool {
	return target == ErrInvalidCharter
}

// NewCharterError creates a new CharterError.
func NewCharterError(path, field string, err error) *CharterError {
	return &CharterError{Path: path, Field: field, Err: err}
}

// IOError reports a recoverable I/O failure (missing file, permission error).
// Expected I/O faults are returned to the caller, never turned into aborts.
type IOError struct {
	Operation string // "read", "open", "scan", "write"
	Path      string
	Err       error
}

// Error implements the error interface.
func (e *IOError) Error() string {
	return fmt.Sprintf("IO error during %s of %s: %v", e.Operation, e.Path, e.Err)
}

// Unwrap implements errors.Unwrap.
func (e *IOError) Unwrap() error {
	return e.Err
}

// WrapIO wraps an error as an IOError, passing nil through.
func WrapIO(operation, path string, err error) error {
	if err == nil {
		return nil
	}
	return &IOError{Operation: operation, Path: path, Err: err}
}

// JobError is the top-level error a control run returns. It names the
// pipeline stage that failed and wraps the component error.
type JobError struct {
	Control string // control name from the charter
	Stage   string // "scan", "grid", "charter", "validate"
	Err     error
}

// Error implements the error interface.
func (e *JobError) Error() string {
	if e.Control != "" {
		return fmt.Sprintf("control %s: %s stage: %v", e.Control, e.Stage, e.Err)
	}
	return fmt.Sprintf("%s stage: %v", e.Stage, e.Err)
}

// Unwrap implements errors.Unwrap.
func (e *JobError) Unwrap() error {
	return e.Err
}

// NewJobError creates a new JobError.
func NewJobError(control, stage string, err error) *JobError {
	return &JobError{Control: control, Stage: stage, Err: err}
}

// Helper functions for error checking

// IsSchemaError checks if an error came from schema parsing.
func IsSchemaError(err error) bool {
	var se *SchemaError
	return errors.As(err, &se)
}

// IsTypeConflict checks if an error is a data type conflict.
func IsTypeConflict(err error) bool {
	return errors.Is(err, ErrTypeConflict)
}

// IsDuplicateFile checks if an error is a duplicate shortname failure.
func IsDuplicateFile(err error) bool {
	return errors.Is(err, ErrDuplicateFile)
}

// IsInvalidCharter checks if an error is a charter compilation failure.
func IsInvalidCharter(err error) bool {
	return errors.Is(err, ErrInvalidCharter)
}
