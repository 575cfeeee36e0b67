package instructions

import (
	"fmt"

	"github.com/openrec/openrec/pkg/datatype"
	oerrors "github.com/openrec/openrec/pkg/errors"
	"github.com/openrec/openrec/pkg/grid"
)

// Filter declares a row predicate over existing physical columns. Like
// Derive, the predicate expression is opaque here; the instruction resolves
// to Boolean once its referenced columns are known to exist.
type Filter struct {
	// Target names the filter for job logs and the resolved-column map.
	Target string

	// Expression is the charter-authored predicate text.
	Expression string

	// Refs are the physical headers the predicate reads.
	Refs []string
}

// Kind implements Instruction.
func (f *Filter) Kind() string { return "filter" }

// Column implements Instruction.
func (f *Filter) Column() string { return f.Target }

// Validate checks the referenced columns and resolves to Boolean.
func (f *Filter) Validate(g *grid.Grid) (Resolved, error) {
	for _, ref := range f.Refs {
		if !g.HasHeader(ref) {
			return Resolved{}, oerrors.NewInstructionError(f.Kind(), f.Target,
				fmt.Errorf("%w: %q", oerrors.ErrMissingColumn, ref))
		}
	}

	return Resolved{Column: f.Target, Type: datatype.Boolean}, nil
}
