package instructions

import (
	"github.com/openrec/openrec/pkg/datatype"
	oerrors "github.com/openrec/openrec/pkg/errors"
	"github.com/openrec/openrec/pkg/grid"
	"github.com/openrec/openrec/pkg/logging"
)

// MergeColumn reconciles one logical column that may be physically present
// in zero, one, or several source files into a single unified data type.
type MergeColumn struct {
	// Target is the logical column the merge establishes.
	Target string

	// Sources are the physical headers that may back the column, in
	// charter-declared order. Order is meaningful: the first header found
	// sets the baseline type, and the first divergence from it is blamed.
	Sources []string

	// OnEmpty decides the outcome when no source exists anywhere.
	OnEmpty EmptyPolicy
}

// Kind implements Instruction.
func (m *MergeColumn) Kind() string { return "merge" }

// Column implements Instruction.
func (m *MergeColumn) Column() string { return m.Target }

// Validate resolves the merge against the grid.
//
// Headers absent from every loaded schema are skipped, not failed: a source
// file legitimately may not be delivered in a given run, and "file not
// delivered" must stay distinct from "file delivered but malformed". The
// first header found in any file sets the resolved type; every later
// declaration must agree with it, and the first that does not fails the
// merge immediately with both types in the error. When nothing declares any
// source header the empty policy applies.
func (m *MergeColumn) Validate(g *grid.Grid) (Resolved, error) {
	resolved := datatype.Unknown
	var baselineHeader, baselineFile string

	for _, header := range m.Sources {
		refs := g.DataTypes(header)
		if len(refs) == 0 {
			logging.Debug().
				Str("column", m.Target).
				Str("header", header).
				Msg("Source column absent from every file, skipping")
			continue
		}

		for _, ref := range refs {
			if resolved == datatype.Unknown {
				resolved = ref.Type
				baselineHeader = header
				baselineFile = ref.Shortname
				continue
			}

			if ref.Type != resolved {
				return Resolved{}, oerrors.NewInstructionError(m.Kind(), m.Target, &oerrors.ConflictError{
					Column:         m.Target,
					Header:         header,
					File:           ref.Shortname,
					Conflicting:    ref.Type.String(),
					BaselineHeader: baselineHeader,
					BaselineFile:   baselineFile,
					Baseline:       resolved.String(),
				})
			}
		}
	}

	if resolved == datatype.Unknown {
		if m.OnEmpty == Reject {
			return Resolved{}, oerrors.NewInstructionError(m.Kind(), m.Target, oerrors.ErrNoSourceColumns)
		}
		// Permissive fallback: an entirely-optional logical column becomes a
		// String instead of aborting the job.
		resolved = datatype.String
	}

	return Resolved{Column: m.Target, Type: resolved}, nil
}
