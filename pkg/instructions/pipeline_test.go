package instructions_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openrec/openrec/pkg/datatype"
	oerrors "github.com/openrec/openrec/pkg/errors"
	"github.com/openrec/openrec/pkg/instructions"
)

func TestPipelineValidate(t *testing.T) {
	g := buildGrid(t,
		fileSpec{"invoices", []string{"id", "inv_amount", "status"}, []string{"ID", "DE", "ST"}},
		fileSpec{"payments", []string{"id", "pay_amount"}, []string{"ID", "DE"}},
	)

	pipeline, err := instructions.NewPipeline(
		&instructions.MergeColumn{Target: "id", Sources: []string{"id"}},
		&instructions.MergeColumn{Target: "amount", Sources: []string{"inv_amount", "pay_amount"}},
		&instructions.Filter{Target: "live", Expression: "status != 'VOID'", Refs: []string{"status"}},
	)
	require.NoError(t, err)

	result, err := pipeline.Validate(context.Background(), g)
	require.NoError(t, err)

	assert.Equal(t, []string{"id", "amount", "live"}, result.Columns())

	dt, ok := result.Type("amount")
	require.True(t, ok)
	assert.Equal(t, datatype.Decimal, dt)

	dt, ok = result.Type("live")
	require.True(t, ok)
	assert.Equal(t, datatype.Boolean, dt)
}

func TestPipelineRejectsDuplicateTargets(t *testing.T) {
	_, err := instructions.NewPipeline(
		&instructions.MergeColumn{Target: "amount", Sources: []string{"a"}},
		&instructions.Project{Target: "amount", Source: "b"},
	)
	require.Error(t, err)

	var ie *oerrors.InstructionError
	require.True(t, errors.As(err, &ie))
	assert.Equal(t, "amount", ie.Column)
}

func TestPipelineFailsFastInCharterOrder(t *testing.T) {
	g := buildGrid(t,
		fileSpec{"invoices", []string{"amount"}, []string{"DE"}},
		fileSpec{"payments", []string{"amount"}, []string{"IN"}},
	)

	pipeline, err := instructions.NewPipeline(
		&instructions.MergeColumn{Target: "first", Sources: []string{"amount"}},  // conflicts
		&instructions.MergeColumn{Target: "second", Sources: []string{"amount"}}, // would also conflict
	)
	require.NoError(t, err)

	_, err = pipeline.Validate(context.Background(), g)
	require.Error(t, err)

	var ie *oerrors.InstructionError
	require.True(t, errors.As(err, &ie))
	assert.Equal(t, "first", ie.Column)
}

func TestPipelineContextCancellation(t *testing.T) {
	g := buildGrid(t, fileSpec{"invoices", []string{"id"}, []string{"ID"}})

	pipeline, err := instructions.NewPipeline(
		&instructions.MergeColumn{Target: "id", Sources: []string{"id"}},
	)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = pipeline.Validate(ctx, g)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestValidateParallel(t *testing.T) {
	g := buildGrid(t,
		fileSpec{"invoices", []string{"id", "inv_amount"}, []string{"ID", "DE"}},
		fileSpec{"payments", []string{"id", "pay_amount"}, []string{"ID", "DE"}},
	)

	pipeline, err := instructions.NewPipeline(
		&instructions.MergeColumn{Target: "id", Sources: []string{"id"}},
		&instructions.MergeColumn{Target: "amount", Sources: []string{"inv_amount", "pay_amount"}},
		&instructions.MergeColumn{Target: "memo", Sources: []string{"note"}},
	)
	require.NoError(t, err)

	sequential, err := pipeline.Validate(context.Background(), g)
	require.NoError(t, err)

	parallel, err := pipeline.ValidateParallel(context.Background(), g, 4)
	require.NoError(t, err)

	// Fan-out must produce the identical contract, in charter order.
	assert.Equal(t, sequential.Columns(), parallel.Columns())
	for _, column := range sequential.Columns() {
		want, _ := sequential.Type(column)
		got, ok := parallel.Type(column)
		require.True(t, ok)
		assert.Equal(t, want, got)
	}
}

func TestValidateParallelReportsFirstCharterError(t *testing.T) {
	g := buildGrid(t,
		fileSpec{"invoices", []string{"amount", "qty"}, []string{"DE", "IN"}},
		fileSpec{"payments", []string{"amount", "qty"}, []string{"IN", "ST"}},
	)

	// Instructions two and four both conflict; regardless of goroutine
	// scheduling the reported error must be the earlier one's.
	pipeline, err := instructions.NewPipeline(
		&instructions.MergeColumn{Target: "ok", Sources: []string{"missing"}},
		&instructions.MergeColumn{Target: "amount", Sources: []string{"amount"}},
		&instructions.MergeColumn{Target: "also-ok", Sources: []string{"missing"}},
		&instructions.MergeColumn{Target: "qty", Sources: []string{"qty"}},
	)
	require.NoError(t, err)

	for n := 0; n < 20; n++ {
		_, err := pipeline.ValidateParallel(context.Background(), g, 4)
		require.Error(t, err)

		var ie *oerrors.InstructionError
		require.True(t, errors.As(err, &ie))
		assert.Equal(t, "amount", ie.Column)
	}
}
