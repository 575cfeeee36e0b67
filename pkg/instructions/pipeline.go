package instructions

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/openrec/openrec/pkg/constants"
	"github.com/openrec/openrec/pkg/datatype"
	oerrors "github.com/openrec/openrec/pkg/errors"
	"github.com/openrec/openrec/pkg/grid"
	"github.com/openrec/openrec/pkg/logging"
)

// Pipeline is the ordered list of instructions a charter declares for one
// control. Order is meaningful twice over: conflicts blame the first
// divergence, and job logs must report errors in charter order even when
// validation fans out across goroutines.
type Pipeline struct {
	items []Instruction
}

// NewPipeline builds a pipeline, rejecting duplicate target columns: two
// instructions establishing the same logical column would leave the matcher
// with an ambiguous type contract.
func NewPipeline(items ...Instruction) (*Pipeline, error) {
	seen := make(map[string]string, len(items))
	for _, item := range items {
		if prior, dup := seen[item.Column()]; dup {
			return nil, oerrors.NewInstructionError(item.Kind(), item.Column(),
				fmt.Errorf("column already established by a %s instruction", prior))
		}
		seen[item.Column()] = item.Kind()
	}
	return &Pipeline{items: items}, nil
}

// Instructions returns the pipeline's instructions in charter order.
func (p *Pipeline) Instructions() []Instruction {
	items := make([]Instruction, len(p.items))
	copy(items, p.items)
	return items
}

// Len returns the number of instructions.
func (p *Pipeline) Len() int {
	return len(p.items)
}

// Result holds every resolved logical column after a successful validation
// pass, in charter order. This is the type contract handed to the matching
// stage.
type Result struct {
	order []string
	types map[string]datatype.DataType
}

// Columns returns the resolved logical columns in charter order.
func (r *Result) Columns() []string {
	order := make([]string, len(r.order))
	copy(order, r.order)
	return order
}

// Type returns the resolved type of a logical column.
func (r *Result) Type(column string) (datatype.DataType, bool) {
	dt, ok := r.types[column]
	return dt, ok
}

// Validate runs every instruction against the grid in charter order,
// failing fast on the first error. The grid is never mutated.
func (p *Pipeline) Validate(ctx context.Context, g *grid.Grid) (*Result, error) {
	result := &Result{types: make(map[string]datatype.DataType, len(p.items))}

	for _, item := range p.items {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		res, err := item.Validate(g)
		if err != nil {
			return nil, err
		}

		logging.Debug().
			Str("kind", item.Kind()).
			Str("column", res.Column).
			Str("type", res.Type.String()).
			Msg("Instruction resolved")

		result.order = append(result.order, res.Column)
		result.types[res.Column] = res.Type
	}

	return result, nil
}

// ValidateParallel fans validation out across goroutines. Each instruction
// reads the same immutable grid, so only the error reporting needs
// reconciling: every instruction runs to completion and the first failure in
// charter order is the one returned, keeping job logs reproducible
// regardless of scheduling.
func (p *Pipeline) ValidateParallel(ctx context.Context, g *grid.Grid, limit int) (*Result, error) {
	if limit <= 0 {
		limit = constants.MaxParallelValidations
	}

	resolved := make([]Resolved, len(p.items))
	failures := make([]error, len(p.items))

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(limit)

	for i, item := range p.items {
		i, item := i, item
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				failures[i] = err
				return nil
			}
			res, err := item.Validate(g)
			if err != nil {
				failures[i] = err
				return nil
			}
			resolved[i] = res
			return nil
		})
	}

	// Goroutines record failures instead of returning them, so Wait cannot
	// fail; charter order decides which failure the job reports.
	_ = eg.Wait()

	for _, err := range failures {
		if err != nil {
			return nil, err
		}
	}

	result := &Result{types: make(map[string]datatype.DataType, len(p.items))}
	for _, res := range resolved {
		result.order = append(result.order, res.Column)
		result.types[res.Column] = res.Type
	}

	return result, nil
}
