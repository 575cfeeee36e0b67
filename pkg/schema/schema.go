// Package schema parses the two header-region rows of an OpenRec source
// file into an ordered header list and a header→DataType map. Row one names
// the columns, row two carries a two-character type code per column,
// positionally aligned. A schema is built once per file and is read-only
// afterwards.
package schema

import (
	"encoding/csv"

	"github.com/openrec/openrec/pkg/datatype"
	oerrors "github.com/openrec/openrec/pkg/errors"
)

// Schema is one file's ordered header list plus the data type declared for
// each header. Alongside the by-name lookup it keeps every physical column
// position, so rows can be decoded positionally even when a header repeats.
type Schema struct {
	headers []string
	types   map[string]datatype.DataType
	cols    []col
}

// col is one physical column position of the file.
type col struct {
	header string
	dt     datatype.DataType
}

// Parse builds a Schema from a header row and the type-code row beneath it.
// name identifies the file in error diagnostics.
//
// Every column position must carry a recognizable type code; the "??"
// placeholder is not a storable type and fails like any unknown code. A
// header repeated within the file keeps the type of its first occurrence
// (first-wins); a repeat that declares a different code is rejected, since
// the two physical columns could not both back the same logical name.
func Parse(name string, headers, codes []string) (*Schema, error) {
	if len(headers) == 0 {
		return nil, oerrors.NewSchemaError(name, oerrors.ErrUnreadableHeaders)
	}

	types := make(map[string]datatype.DataType, len(headers))
	ordered := make([]string, 0, len(headers))
	cols := make([]col, 0, len(headers))

	for i, header := range headers {
		if i >= len(codes) {
			return nil, oerrors.NewSchemaColumnError(name, i, header, "", oerrors.ErrMissingTypeCode)
		}

		dt, err := datatype.ParseCode(codes[i])
		if err != nil || dt == datatype.Unknown {
			return nil, oerrors.NewSchemaColumnError(name, i, header, codes[i], oerrors.ErrUnknownTypeCode)
		}

		cols = append(cols, col{header: header, dt: dt})

		if existing, ok := types[header]; ok {
			if existing != dt {
				return nil, oerrors.NewSchemaColumnError(name, i, header, codes[i], oerrors.ErrDuplicateHeader)
			}
			continue
		}

		types[header] = dt
		ordered = append(ordered, header)
	}

	return &Schema{headers: ordered, types: types, cols: cols}, nil
}

// Read consumes the two header-region rows from a CSV stream and parses
// them. The reader is left positioned at the first data row.
func Read(name string, r *csv.Reader) (*Schema, error) {
	headers, err := r.Read()
	if err != nil {
		return nil, oerrors.NewSchemaError(name, oerrors.ErrUnreadableHeaders)
	}

	codes, err := r.Read()
	if err != nil {
		// EOF and a short or malformed row both mean the same thing to the
		// operator: the file has no usable type-code row.
		return nil, oerrors.NewSchemaError(name, oerrors.ErrNoSchemaRow)
	}

	return Parse(name, headers, codes)
}

// Headers returns the distinct column names in first-occurrence order. The
// returned slice is a copy; the schema itself never changes after Parse.
func (s *Schema) Headers() []string {
	headers := make([]string, len(s.headers))
	copy(headers, s.headers)
	return headers
}

// DataType returns the declared type for a header and whether the header
// exists in this schema.
func (s *Schema) DataType(header string) (datatype.DataType, bool) {
	dt, ok := s.types[header]
	return dt, ok
}

// HasHeader reports whether the schema declares the header.
func (s *Schema) HasHeader(header string) bool {
	_, ok := s.types[header]
	return ok
}

// Len returns the number of distinct columns.
func (s *Schema) Len() int {
	return len(s.headers)
}

// Width returns the number of physical columns, repeated headers included.
func (s *Schema) Width() int {
	return len(s.cols)
}

// Column returns the header and declared type at a physical column
// position. Positions run 0..Width()-1 in file order.
func (s *Schema) Column(i int) (string, datatype.DataType) {
	c := s.cols[i]
	return c.header, c.dt
}

// TypeRow re-serializes the type-code row in physical column order, the
// exact inverse of the row Parse consumed.
func (s *Schema) TypeRow() []string {
	row := make([]string, len(s.cols))
	for i, c := range s.cols {
		row[i] = c.dt.Code()
	}
	return row
}
