package instructions

import (
	"fmt"

	"github.com/openrec/openrec/pkg/datatype"
	oerrors "github.com/openrec/openrec/pkg/errors"
	"github.com/openrec/openrec/pkg/grid"
)

// Derive declares a column computed by a charter expression. The expression
// itself is opaque to this core; evaluation belongs to the scripting
// collaborator. Validation is structural: the declared result type must be a
// real type and every referenced physical column must exist somewhere in the
// grid.
type Derive struct {
	// Target is the logical column the expression produces.
	Target string

	// Expression is the charter-authored expression text, passed through
	// untouched.
	Expression string

	// Refs are the physical headers the expression reads.
	Refs []string

	// Type is the charter-declared result type.
	Type datatype.DataType
}

// Kind implements Instruction.
func (d *Derive) Kind() string { return "derive" }

// Column implements Instruction.
func (d *Derive) Column() string { return d.Target }

// Validate checks the declaration against the grid and resolves to the
// declared type.
func (d *Derive) Validate(g *grid.Grid) (Resolved, error) {
	if !d.Type.IsValid() || d.Type == datatype.Unknown {
		return Resolved{}, oerrors.NewInstructionError(d.Kind(), d.Target,
			oerrors.New("derived column must declare a concrete result type"))
	}

	for _, ref := range d.Refs {
		if !g.HasHeader(ref) {
			return Resolved{}, oerrors.NewInstructionError(d.Kind(), d.Target,
				fmt.Errorf("%w: %q", oerrors.ErrMissingColumn, ref))
		}
	}

	return Resolved{Column: d.Target, Type: d.Type}, nil
}
