package grid

import (
	"encoding/csv"
	"errors"
	"io"
	"os"

	"github.com/google/uuid"

	"github.com/openrec/openrec/pkg/constants"
	"github.com/openrec/openrec/pkg/datatype"
	oerrors "github.com/openrec/openrec/pkg/errors"
	"github.com/openrec/openrec/pkg/schema"
)

// Record is one decoded data row, keyed by header. Cell values carry the Go
// type of their column's DataType (see datatype.ParseValue); an absent or
// empty cell is nil, except Uuid columns, which synthesize an identifier so
// every record is addressable by the matching stage. A header repeated
// within the file keeps its first physical cell, matching the schema's
// first-wins lookup.
type Record map[string]any

// RecordReader iterates the data rows of one loaded file, decoding each
// cell according to the file's schema. It re-reads the physical file the
// grid indexed at load time; the schema itself is never re-derived.
type RecordReader struct {
	shortname string
	schema    *schema.Schema
	file      *os.File
	csv       *csv.Reader
	row       int
}

// Records opens a typed row iterator over one of the grid's files. The
// caller owns the reader and must Close it.
func (g *Grid) Records(shortname string) (*RecordReader, error) {
	src, ok := g.sources[shortname]
	if !ok {
		return nil, oerrors.NewGridError(shortname, "", oerrors.New("file not loaded"))
	}

	f, err := os.Open(src.File.Path())
	if err != nil {
		return nil, oerrors.WrapIO("open", src.File.Path(), err)
	}

	r := newCSVReader(f, g.opts)

	// Skip the header region; the schema was validated at load time.
	for i := 0; i < constants.SchemaRowCount; i++ {
		if _, err := r.Read(); err != nil {
			f.Close()
			return nil, oerrors.NewSchemaError(shortname, oerrors.ErrNoSchemaRow)
		}
	}

	return &RecordReader{
		shortname: shortname,
		schema:    src.Schema,
		file:      f,
		csv:       r,
	}, nil
}

// Next decodes the next data row. It returns io.EOF after the last row.
func (r *RecordReader) Next() (Record, error) {
	row, err := r.csv.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, oerrors.WrapIO("read", r.file.Name(), err)
	}
	r.row++

	// Decode by physical position: the schema's deduplicated header list is
	// narrower than the row when a header repeats, so cells must be matched
	// to their own column's type, not to the deduped order.
	record := make(Record, r.schema.Len())
	for i := 0; i < r.schema.Width(); i++ {
		header, dt := r.schema.Column(i)

		raw := ""
		if i < len(row) {
			raw = row[i]
		}

		value, err := datatype.ParseValue(dt, raw)
		if err != nil {
			return nil, oerrors.NewGridError(r.shortname, r.file.Name(), err)
		}

		if value == nil && dt == datatype.Uuid {
			value = uuid.New()
		}

		if _, seen := record[header]; !seen {
			record[header] = value
		}
	}

	return record, nil
}

// Row returns the number of data rows decoded so far.
func (r *RecordReader) Row() int {
	return r.row
}

// Close releases the underlying file.
func (r *RecordReader) Close() error {
	return r.file.Close()
}
