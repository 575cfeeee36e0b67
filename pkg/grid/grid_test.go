package grid_test

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openrec/openrec/pkg/datatype"
	oerrors "github.com/openrec/openrec/pkg/errors"
	"github.com/openrec/openrec/pkg/grid"
)

// writeFile drops a source file into dir under the timestamped convention.
func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "20240131093000_invoices.csv", "id,amount\nID,DE\n")
	writeFile(t, dir, "20240131100000_payments.csv", "id,amount,memo\nID,DE,ST\n")

	g, err := grid.Load(dir)
	require.NoError(t, err)

	assert.Equal(t, 2, g.Len())

	// Load order follows sorted file names; the union view keeps every
	// file's headers, shared names included.
	assert.Equal(t, []string{"id", "amount", "id", "amount", "memo"}, g.Headers())

	assert.True(t, g.HasHeader("memo"))
	assert.False(t, g.HasHeader("missing"))

	dt, ok := g.DataType("amount")
	require.True(t, ok)
	assert.Equal(t, datatype.Decimal, dt)

	refs := g.DataTypes("id")
	require.Len(t, refs, 2)
	assert.Equal(t, "invoices", refs[0].Shortname)
	assert.Equal(t, "payments", refs[1].Shortname)
	assert.Equal(t, datatype.Uuid, refs[0].Type)

	s, ok := g.SchemaOf("payments")
	require.True(t, ok)
	assert.Equal(t, 3, s.Len())
}

func TestLoadDuplicateShortname(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "20240131093000_invoices.csv", "id\nID\n")
	writeFile(t, dir, "20240201093000_invoices.csv", "id\nID\n")

	_, err := grid.Load(dir)
	assert.True(t, oerrors.IsDuplicateFile(err))
}

func TestLoadFailsFast(t *testing.T) {
	t.Run("schema failure aborts the whole load", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "20240131093000_invoices.csv", "id\nID\n")
		writeFile(t, dir, "20240131100000_payments.csv", "id\nZZ\n")

		_, err := grid.Load(dir)
		assert.True(t, errors.Is(err, oerrors.ErrUnknownTypeCode))
	})

	t.Run("bad filename aborts", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "invoices.csv", "id\nID\n")

		_, err := grid.Load(dir)
		assert.True(t, errors.Is(err, oerrors.ErrBadFilename))
	})

	t.Run("missing directory is recoverable", func(t *testing.T) {
		_, err := grid.Load(filepath.Join(t.TempDir(), "nope"))
		require.Error(t, err)

		var ioErr *oerrors.IOError
		assert.True(t, errors.As(err, &ioErr))
	})
}

func TestLoadIgnoresNonCSV(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "20240131093000_invoices.csv", "id\nID\n")
	writeFile(t, dir, "README.txt", "not a feed")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "archive"), 0o755))

	g, err := grid.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 1, g.Len())
}

func TestRecords(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "20240131093000_invoices.csv",
		"id,amount,qty,booked,delivered_at,memo\n"+
			"ID,DE,IN,BO,DT,ST\n"+
			"5aa2296d-84f7-4f8c-bd78-63b31500cbc7,12.50,3,1,1706692500000,first\n"+
			",0.10,,0,,second\n")

	g, err := grid.Load(dir)
	require.NoError(t, err)

	r, err := g.Records("invoices")
	require.NoError(t, err)
	defer r.Close()

	first, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, "5aa2296d-84f7-4f8c-bd78-63b31500cbc7", mustFormat(t, first["id"]))
	assert.Equal(t, int64(3), first["qty"])
	assert.Equal(t, true, first["booked"])
	assert.Equal(t, "first", first["memo"])

	second, err := r.Next()
	require.NoError(t, err)
	// Empty Uuid cells synthesize an identifier; other empty cells are nil.
	assert.NotNil(t, second["id"])
	assert.Nil(t, second["qty"])
	assert.Nil(t, second["delivered_at"])
	assert.Equal(t, false, second["booked"])

	_, err = r.Next()
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, 2, r.Row())
}

func TestRecordsDuplicateHeader(t *testing.T) {
	dir := t.TempDir()
	// The agreeing repeat of "ref" narrows the deduped header list to two
	// names while the rows stay three cells wide; "amount" must still decode
	// from its own physical column.
	writeFile(t, dir, "20240131093000_invoices.csv",
		"ref,ref,amount\nST,ST,DE\nx,y,3.5\n")

	g, err := grid.Load(dir)
	require.NoError(t, err)

	r, err := g.Records("invoices")
	require.NoError(t, err)
	defer r.Close()

	rec, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, "x", rec["ref"])

	amount, _ := decimal.NewFromString("3.5")
	assert.True(t, amount.Equal(rec["amount"].(decimal.Decimal)))

	_, err = r.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestRecordsUnknownFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "20240131093000_invoices.csv", "id\nID\n")

	g, err := grid.Load(dir)
	require.NoError(t, err)

	_, err = g.Records("payments")
	assert.Error(t, err)
}

func TestLoadCharset(t *testing.T) {
	dir := t.TempDir()
	// "café" in ISO-8859-1: the é is the single byte 0xE9.
	content := append([]byte("id,caf"), 0xE9)
	content = append(content, []byte("\nID,ST\n")...)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "20240131093000_menu.csv"), content, 0o644))

	g, err := grid.Load(dir, grid.WithCharset("iso-8859-1"))
	require.NoError(t, err)
	assert.True(t, g.HasHeader("café"))
}

func TestWithCharsetUnsupported(t *testing.T) {
	_, err := grid.Load(t.TempDir(), grid.WithCharset("ebcdic"))
	require.Error(t, err)
	// An option fault is a configuration error, not a file error; the
	// message must not carry an empty file identity.
	assert.EqualError(t, err, "unsupported charset ebcdic")
}

func TestLoadDelimiter(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "20240131093000_invoices.csv", "id;amount\nID;DE\n")

	g, err := grid.Load(dir, grid.WithDelimiter(';'))
	require.NoError(t, err)
	assert.True(t, g.HasHeader("amount"))
}

// mustFormat renders a uuid cell for comparison.
func mustFormat(t *testing.T, v any) string {
	t.Helper()
	s, err := datatype.FormatValue(datatype.Uuid, v)
	require.NoError(t, err)
	return s
}
