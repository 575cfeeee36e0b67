// Package datafile models the metadata of one physical input file bound to
// a grid: its stable shortname, the delivery timestamp embedded in the file
// name, and the canonical name the file had before any status suffix was
// appended. A DataFile is built once from a directory entry and is read-only
// for the rest of the job run.
package datafile

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/openrec/openrec/pkg/constants"
	oerrors "github.com/openrec/openrec/pkg/errors"
)

// DataFile describes one physical input file.
//
// The file name convention is <timestamp>_<shortname>.csv where the
// timestamp is constants.TimestampLayout. Status variants append a suffix
// before the extension, e.g. <timestamp>_<shortname>.unmatched.csv; the
// shortname and timestamp are unaffected by such suffixes.
type DataFile struct {
	shortname string
	filename  string
	path      string
	timestamp time.Time
}

// New builds a DataFile from a path whose base name follows the
// <timestamp>_<shortname>.csv convention.
func New(path string) (*DataFile, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, oerrors.WrapIO("resolve", path, err)
	}

	filename := filepath.Base(abs)
	timestamp, shortname, err := parseFilename(filename)
	if err != nil {
		return nil, err
	}

	return &DataFile{
		shortname: shortname,
		filename:  filename,
		path:      abs,
		timestamp: timestamp,
	}, nil
}

// parseFilename splits <timestamp>_<shortname>[.status].csv into its parts.
func parseFilename(filename string) (time.Time, string, error) {
	if !strings.HasSuffix(filename, constants.CSVExtension) {
		return time.Time{}, "", fmt.Errorf("%w: %q is not a %s file",
			oerrors.ErrBadFilename, filename, constants.CSVExtension)
	}

	// Strip the extension and any status suffix: everything from the first
	// dot onward is status decoration.
	base := filename
	if i := strings.IndexByte(base, '.'); i >= 0 {
		base = base[:i]
	}

	ts, shortname, ok := strings.Cut(base, "_")
	if !ok || shortname == "" {
		return time.Time{}, "", fmt.Errorf("%w: %q has no timestamp separator",
			oerrors.ErrBadFilename, filename)
	}

	timestamp, err := time.Parse(constants.TimestampLayout, ts)
	if err != nil {
		return time.Time{}, "", fmt.Errorf("%w: %q has a bad timestamp %q",
			oerrors.ErrBadFilename, filename, ts)
	}

	return timestamp, shortname, nil
}

// Shortname returns the logical file identity, stable across timestamped
// re-deliveries and status suffixes.
func (f *DataFile) Shortname() string {
	return f.shortname
}

// Filename returns the base name the file was delivered under, suffix
// included.
func (f *DataFile) Filename() string {
	return f.filename
}

// Path returns the canonical absolute path of the file.
func (f *DataFile) Path() string {
	return f.path
}

// Timestamp returns the delivery instant encoded in the file name.
func (f *DataFile) Timestamp() time.Time {
	return f.timestamp
}

// OriginalFilename reconstructs the canonical <timestamp>_<shortname>.csv
// name, independent of any status suffix the delivered file carried.
func (f *DataFile) OriginalFilename() string {
	return fmt.Sprintf("%s_%s%s",
		f.timestamp.Format(constants.TimestampLayout), f.shortname, constants.CSVExtension)
}

// String implements fmt.Stringer for log output.
func (f *DataFile) String() string {
	return f.shortname + " (" + f.filename + ")"
}
