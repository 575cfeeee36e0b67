package errors_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	oerrors "github.com/openrec/openrec/pkg/errors"
)

func TestSchemaError(t *testing.T) {
	t.Run("file-level", func(t *testing.T) {
		err := oerrors.NewSchemaError("invoices", oerrors.ErrNoSchemaRow)
		assert.Equal(t, "schema for invoices: no schema row", err.Error())
		assert.True(t, errors.Is(err, oerrors.ErrNoSchemaRow))
		assert.True(t, oerrors.IsSchemaError(err))
	})

	t.Run("column-level", func(t *testing.T) {
		err := oerrors.NewSchemaColumnError("invoices", 3, "amount", "ZZ", oerrors.ErrUnknownTypeCode)
		assert.Contains(t, err.Error(), "invoices")
		assert.Contains(t, err.Error(), `"amount"`)
		assert.Contains(t, err.Error(), `"ZZ"`)
		assert.True(t, errors.Is(err, oerrors.ErrUnknownTypeCode))
	})

	t.Run("missing code has no code field", func(t *testing.T) {
		err := oerrors.NewSchemaColumnError("invoices", 2, "qty", "", oerrors.ErrMissingTypeCode)
		assert.Contains(t, err.Error(), "no schema type for column 2")
		assert.True(t, errors.Is(err, oerrors.ErrMissingTypeCode))
	})
}

func TestGridError(t *testing.T) {
	err := oerrors.NewGridError("invoices", "/drop/20240131093000_invoices.csv", oerrors.ErrDuplicateFile)
	assert.Contains(t, err.Error(), "invoices")
	assert.True(t, oerrors.IsDuplicateFile(err))
}

func TestConflictError(t *testing.T) {
	err := &oerrors.ConflictError{
		Column:         "amount",
		Header:         "pay_amount",
		File:           "payments",
		Conflicting:    "Integer",
		BaselineHeader: "inv_amount",
		BaselineFile:   "invoices",
		Baseline:       "Decimal",
	}

	assert.True(t, errors.Is(err, oerrors.ErrTypeConflict))
	assert.True(t, oerrors.IsTypeConflict(err))
	// Both types and both headers appear in the message for operators.
	assert.Contains(t, err.Error(), "Integer")
	assert.Contains(t, err.Error(), "Decimal")
	assert.Contains(t, err.Error(), "pay_amount")
	assert.Contains(t, err.Error(), "inv_amount")
}

func TestInstructionError(t *testing.T) {
	inner := &oerrors.ConflictError{Column: "amount", Baseline: "Decimal", Conflicting: "Integer"}
	err := oerrors.NewInstructionError("merge", "amount", inner)

	assert.Contains(t, err.Error(), `merge "amount"`)
	assert.True(t, oerrors.IsTypeConflict(err))

	var ce *oerrors.ConflictError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "amount", ce.Column)
}

func TestCharterError(t *testing.T) {
	err := oerrors.NewCharterError("/etc/openrec/control.yaml", "instructions.amount",
		oerrors.New("unknown instruction kind"))
	assert.Contains(t, err.Error(), "instructions.amount")
	assert.True(t, oerrors.IsInvalidCharter(err))
}

func TestJobError(t *testing.T) {
	inner := oerrors.NewGridError("payments", "", oerrors.ErrDuplicateFile)
	err := oerrors.NewJobError("invoices-vs-payments", "grid", inner)

	assert.Contains(t, err.Error(), "invoices-vs-payments")
	assert.Contains(t, err.Error(), "grid stage")
	// The component error stays reachable through the job wrapper.
	assert.True(t, oerrors.IsDuplicateFile(err))
}

func TestWrapIO(t *testing.T) {
	assert.Nil(t, oerrors.WrapIO("read", "/tmp/x", nil))

	inner := errors.New("permission denied")
	err := oerrors.WrapIO("open", "/drop", inner)
	assert.Contains(t, err.Error(), "/drop")
	assert.True(t, errors.Is(err, inner))
}
