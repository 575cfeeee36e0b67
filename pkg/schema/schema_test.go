package schema_test

import (
	"encoding/csv"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openrec/openrec/pkg/datatype"
	oerrors "github.com/openrec/openrec/pkg/errors"
	"github.com/openrec/openrec/pkg/schema"
)

func TestParseRoundTrip(t *testing.T) {
	headers := []string{"id", "amount", "booked", "delivered_at", "qty", "memo"}
	codes := []string{"ID", "DE", "BO", "DT", "IN", "ST"}

	s, err := schema.Parse("invoices", headers, codes)
	require.NoError(t, err)

	assert.Equal(t, headers, s.Headers())
	assert.Equal(t, len(headers), s.Len())

	// Every header maps to exactly the type whose code appeared at the same
	// position, and TypeRow is the exact inverse.
	want := []datatype.DataType{
		datatype.Uuid, datatype.Decimal, datatype.Boolean,
		datatype.Datetime, datatype.Integer, datatype.String,
	}
	for i, header := range headers {
		dt, ok := s.DataType(header)
		require.True(t, ok, header)
		assert.Equal(t, want[i], dt)
	}
	assert.Equal(t, codes, s.TypeRow())
}

func TestParseFailures(t *testing.T) {
	t.Run("empty headers", func(t *testing.T) {
		_, err := schema.Parse("f", nil, nil)
		assert.True(t, errors.Is(err, oerrors.ErrUnreadableHeaders))
	})

	t.Run("type row shorter than headers", func(t *testing.T) {
		_, err := schema.Parse("f", []string{"a", "b"}, []string{"ST"})
		require.True(t, errors.Is(err, oerrors.ErrMissingTypeCode))

		var se *oerrors.SchemaError
		require.True(t, errors.As(err, &se))
		assert.Equal(t, 1, se.Column)
		assert.Equal(t, "b", se.Header)
	})

	t.Run("unrecognized code", func(t *testing.T) {
		_, err := schema.Parse("f", []string{"a"}, []string{"ZZ"})
		require.True(t, errors.Is(err, oerrors.ErrUnknownTypeCode))

		var se *oerrors.SchemaError
		require.True(t, errors.As(err, &se))
		assert.Equal(t, "ZZ", se.Code)
	})

	t.Run("placeholder is not a storable type", func(t *testing.T) {
		_, err := schema.Parse("f", []string{"a"}, []string{"??"})
		assert.True(t, errors.Is(err, oerrors.ErrUnknownTypeCode))
	})
}

func TestParseDuplicateHeaders(t *testing.T) {
	t.Run("agreeing duplicate keeps first occurrence", func(t *testing.T) {
		s, err := schema.Parse("f", []string{"a", "b", "a"}, []string{"ST", "IN", "ST"})
		require.NoError(t, err)

		assert.Equal(t, []string{"a", "b"}, s.Headers())
		dt, ok := s.DataType("a")
		require.True(t, ok)
		assert.Equal(t, datatype.String, dt)
	})

	t.Run("conflicting duplicate is rejected", func(t *testing.T) {
		_, err := schema.Parse("f", []string{"a", "a"}, []string{"ST", "IN"})
		assert.True(t, errors.Is(err, oerrors.ErrDuplicateHeader))
	})

	t.Run("physical positions survive deduplication", func(t *testing.T) {
		s, err := schema.Parse("f", []string{"a", "a", "b"}, []string{"ST", "ST", "DE"})
		require.NoError(t, err)

		// The by-name view collapses the repeat, the positional view does not.
		assert.Equal(t, 2, s.Len())
		assert.Equal(t, 3, s.Width())
		assert.Equal(t, []string{"ST", "ST", "DE"}, s.TypeRow())

		header, dt := s.Column(1)
		assert.Equal(t, "a", header)
		assert.Equal(t, datatype.String, dt)

		header, dt = s.Column(2)
		assert.Equal(t, "b", header)
		assert.Equal(t, datatype.Decimal, dt)
	})
}

func TestRead(t *testing.T) {
	t.Run("two rows then data", func(t *testing.T) {
		r := csv.NewReader(strings.NewReader("id,amount\nID,DE\nrow1,1.50\n"))
		r.FieldsPerRecord = -1

		s, err := schema.Read("invoices", r)
		require.NoError(t, err)
		assert.Equal(t, []string{"id", "amount"}, s.Headers())

		// The reader is left at the first data row.
		row, err := r.Read()
		require.NoError(t, err)
		assert.Equal(t, []string{"row1", "1.50"}, row)
	})

	t.Run("missing type row", func(t *testing.T) {
		r := csv.NewReader(strings.NewReader("id,amount\n"))
		r.FieldsPerRecord = -1

		_, err := schema.Read("invoices", r)
		assert.True(t, errors.Is(err, oerrors.ErrNoSchemaRow))
	})

	t.Run("empty file", func(t *testing.T) {
		r := csv.NewReader(strings.NewReader(""))
		_, err := schema.Read("invoices", r)
		assert.True(t, errors.Is(err, oerrors.ErrUnreadableHeaders))
	})
}
