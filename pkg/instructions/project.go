package instructions

import (
	"errors"

	oerrors "github.com/openrec/openrec/pkg/errors"
	"github.com/openrec/openrec/pkg/grid"
)

// Project exposes one physical column under a logical name without merging
// across headers. It is a single-source merge: every file declaring the
// source header must agree on its type.
type Project struct {
	// Target is the logical column name.
	Target string

	// Source is the physical header being projected.
	Source string

	// OnEmpty decides the outcome when no file declares the source.
	OnEmpty EmptyPolicy
}

// Kind implements Instruction.
func (p *Project) Kind() string { return "project" }

// Column implements Instruction.
func (p *Project) Column() string { return p.Target }

// Validate resolves the projection against the grid. The empty policy and
// conflict semantics are those of MergeColumn over a one-element source
// list; failures are reported under the projection's own kind.
func (p *Project) Validate(g *grid.Grid) (Resolved, error) {
	merge := &MergeColumn{Target: p.Target, Sources: []string{p.Source}, OnEmpty: p.OnEmpty}
	res, err := merge.Validate(g)
	if err != nil {
		var ie *oerrors.InstructionError
		if errors.As(err, &ie) {
			err = ie.Err
		}
		return Resolved{}, oerrors.NewInstructionError(p.Kind(), p.Target, err)
	}
	return res, nil
}
