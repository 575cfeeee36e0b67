// Package grid unifies the source files of one job run into a single
// logical view. The grid owns every DataFile and Schema loaded for the run
// and is the only entity with authority to answer "does logical column X
// exist, and with what type, across all loaded files". It holds no row data
// itself; row materialization belongs to the downstream matching stage,
// which reads records through RecordReader.
//
// A grid is never partially valid: any schema parse failure or duplicate
// shortname aborts Load, and a loaded grid is immutable. Instructions
// validate against it, they do not rewrite schemas.
package grid

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/openrec/openrec/pkg/constants"
	"github.com/openrec/openrec/pkg/datafile"
	"github.com/openrec/openrec/pkg/datatype"
	oerrors "github.com/openrec/openrec/pkg/errors"
	"github.com/openrec/openrec/pkg/logging"
	"github.com/openrec/openrec/pkg/schema"
)

// Source pairs one data file with its parsed schema.
type Source struct {
	File   *datafile.DataFile
	Schema *schema.Schema
}

// ColumnRef locates one physical column: the file declaring it and the type
// it is declared with.
type ColumnRef struct {
	Shortname string
	Type      datatype.DataType
}

// Grid is the unified schema registry over all files of one run.
type Grid struct {
	order   []string // shortnames in load order
	sources map[string]Source
	opts    options
}

type options struct {
	comma   rune
	decoder *encoding.Decoder
	charset string
}

// Option configures grid loading.
type Option func(*options) error

// WithDelimiter sets the CSV field delimiter. The default is a comma.
func WithDelimiter(comma rune) Option {
	return func(o *options) error {
		o.comma = comma
		return nil
	}
}

// WithCharset selects the character encoding of the source files. Supported
// names: "utf-8" (default), "iso-8859-1"/"latin-1", "windows-1252".
func WithCharset(name string) Option {
	return func(o *options) error {
		switch strings.ToLower(name) {
		case "", "utf-8", "utf8":
			o.decoder = nil
		case "iso-8859-1", "latin-1", "latin1":
			o.decoder = charmap.ISO8859_1.NewDecoder()
		case "windows-1252", "cp1252":
			o.decoder = charmap.Windows1252.NewDecoder()
		default:
			return oerrors.New("unsupported charset " + name)
		}
		o.charset = name
		return nil
	}
}

func defaultOptions() options {
	return options{comma: ','}
}

// New builds a grid from already-parsed sources. Duplicate shortnames are
// rejected; the run would otherwise have two files claiming one logical
// identity.
func New(sources []Source, opts ...Option) (*Grid, error) {
	o := defaultOptions()
	for _, opt := range opts {
		if err := opt(&o); err != nil {
			return nil, err
		}
	}

	g := &Grid{
		sources: make(map[string]Source, len(sources)),
		opts:    o,
	}

	for _, src := range sources {
		shortname := src.File.Shortname()
		if _, exists := g.sources[shortname]; exists {
			return nil, oerrors.NewGridError(shortname, src.File.Path(), oerrors.ErrDuplicateFile)
		}
		g.sources[shortname] = src
		g.order = append(g.order, shortname)
	}

	return g, nil
}

// Load scans a directory for CSV files, parses each file's schema rows, and
// aggregates them into a grid. Files whose names fall outside the
// <timestamp>_<shortname>.csv convention fail the load; a missing or
// unreadable directory is returned as a recoverable IOError, never a
// process abort.
func Load(dir string, opts ...Option) (*Grid, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, oerrors.WrapIO("scan", dir, err)
	}

	o := defaultOptions()
	for _, opt := range opts {
		if err := opt(&o); err != nil {
			return nil, err
		}
	}

	// Directory iteration order is platform-dependent; sort so load order,
	// and with it conflict blame order, is reproducible.
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != constants.CSVExtension {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	sources := make([]Source, 0, len(names))
	for _, name := range names {
		path := filepath.Join(dir, name)

		file, err := datafile.New(path)
		if err != nil {
			return nil, err
		}

		s, err := readSchema(file, o)
		if err != nil {
			return nil, err
		}

		logging.Debug().
			Str("file", file.Shortname()).
			Int("columns", s.Len()).
			Msg("Loaded schema")

		sources = append(sources, Source{File: file, Schema: s})
	}

	g, err := New(sources, opts...)
	if err != nil {
		return nil, err
	}

	logging.Info().
		Str("dir", dir).
		Int("files", len(sources)).
		Msg("Grid loaded")

	return g, nil
}

// readSchema opens the file and parses its two header-region rows.
func readSchema(file *datafile.DataFile, o options) (*schema.Schema, error) {
	f, err := os.Open(file.Path())
	if err != nil {
		return nil, oerrors.WrapIO("open", file.Path(), err)
	}
	defer f.Close()

	r := newCSVReader(f, o)
	return schema.Read(file.Shortname(), r)
}

// newCSVReader wraps a raw reader with charset decoding and CSV parsing.
func newCSVReader(r io.Reader, o options) *csv.Reader {
	if o.decoder != nil {
		r = transform.NewReader(r, o.decoder)
	}
	cr := csv.NewReader(r)
	cr.Comma = o.comma
	// Row widths are validated against the schema, not by the CSV layer; a
	// short type row must surface as a missing-type-code error.
	cr.FieldsPerRecord = -1
	return cr
}

// Files returns the loaded data files in load order.
func (g *Grid) Files() []*datafile.DataFile {
	files := make([]*datafile.DataFile, 0, len(g.order))
	for _, shortname := range g.order {
		files = append(files, g.sources[shortname].File)
	}
	return files
}

// SchemaOf returns the schema for a shortname, if that file was loaded.
func (g *Grid) SchemaOf(shortname string) (*schema.Schema, bool) {
	src, ok := g.sources[shortname]
	if !ok {
		return nil, false
	}
	return src.Schema, true
}

// Headers returns every loaded schema's headers concatenated in load order.
// The view is deliberately not deduplicated: a header shared by two files
// appears twice, because "does a file's schema contain header H" is the
// unit query instructions build on.
func (g *Grid) Headers() []string {
	var headers []string
	for _, shortname := range g.order {
		headers = append(headers, g.sources[shortname].Schema.Headers()...)
	}
	return headers
}

// HasHeader reports whether any loaded schema declares the header.
func (g *Grid) HasHeader(header string) bool {
	for _, shortname := range g.order {
		if g.sources[shortname].Schema.HasHeader(header) {
			return true
		}
	}
	return false
}

// DataType returns the type declared for a header by the first file (in
// load order) that declares it. When a header appears in multiple files it
// is the calling instruction's job to detect and reject conflicting types;
// the grid does not silently arbitrate. Use DataTypes for the full set.
func (g *Grid) DataType(header string) (datatype.DataType, bool) {
	for _, shortname := range g.order {
		if dt, ok := g.sources[shortname].Schema.DataType(header); ok {
			return dt, true
		}
	}
	return datatype.Unknown, false
}

// DataTypes returns every declaration of a header across the loaded files,
// in load order. An empty result means no file carries the column.
func (g *Grid) DataTypes(header string) []ColumnRef {
	var refs []ColumnRef
	for _, shortname := range g.order {
		if dt, ok := g.sources[shortname].Schema.DataType(header); ok {
			refs = append(refs, ColumnRef{Shortname: shortname, Type: dt})
		}
	}
	return refs
}

// Len returns the number of loaded files.
func (g *Grid) Len() int {
	return len(g.order)
}
