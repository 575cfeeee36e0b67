// Package constants provides shared constants used throughout the OpenRec
// codebase: file permissions, timeouts, and CSV handling limits that should
// stay consistent across the application.
package constants

import "time"

// Timeout constants.
const (
	// DefaultJobTimeout bounds one control run, scan through validation.
	DefaultJobTimeout = 10 * time.Minute
)

// File permission constants.
const (
	// FilePermissions is the default permission for created files (rw-r--r--).
	FilePermissions = 0644
)

// CSV handling constants.
const (
	// CSVExtension is the extension every grid source file must carry.
	CSVExtension = ".csv"

	// SchemaRowCount is the number of header-region rows in a source file:
	// the header row plus the type-code row.
	SchemaRowCount = 2

	// TypeCodeLength is the length of a data type wire code.
	TypeCodeLength = 2

	// TimestampLayout is the delivery-instant layout embedded in file names.
	TimestampLayout = "20060102150405"
)

// Validation limits.
const (
	// MaxParallelValidations caps concurrent instruction validations.
	MaxParallelValidations = 8
)
