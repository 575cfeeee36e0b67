// Package openrec runs file-based reconciliation controls. A Control binds
// an operator-authored charter to a drop directory of schema'd CSV
// extracts; Run loads the files into a typed grid, validates the charter's
// instruction pipeline against it, and hands the fully typed result to the
// downstream matching stage.
package openrec

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/openrec/openrec/pkg/charter"
	"github.com/openrec/openrec/pkg/datatype"
	oerrors "github.com/openrec/openrec/pkg/errors"
	"github.com/openrec/openrec/pkg/grid"
	"github.com/openrec/openrec/pkg/instructions"
	"github.com/openrec/openrec/pkg/logging"
)

// Control is one managed reconciliation job governed by a charter.
type Control struct {
	config *config
	logger zerolog.Logger
}

// Result is what a successful run exposes to the matching stage: the
// validated grid plus the resolved type of every logical column, in charter
// order.
type Result struct {
	// Control is the charter's control name.
	Control string

	// Grid is the validated, immutable grid over the run's files.
	Grid *grid.Grid

	// Columns holds the resolved logical columns in charter order.
	Columns *instructions.Result

	// Stats summarizes the run for job logs.
	Stats Stats
}

// Stats summarizes one run.
type Stats struct {
	Files        int
	Instructions int
	Duration     time.Duration
}

// New creates a Control from options. A charter is required; the input
// directory may come from the charter or from WithInputDir.
func New(opts ...Option) (*Control, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, fmt.Errorf("applying options: %w", err)
		}
	}

	if cfg.charter == nil {
		return nil, oerrors.NewCharterError("", "", oerrors.New("a charter is required"))
	}
	if cfg.inputDir == "" {
		cfg.inputDir = cfg.charter.Input.Dir
	}
	if cfg.inputDir == "" {
		return nil, oerrors.NewCharterError(cfg.charter.Path(), "input.dir",
			oerrors.New("no input directory configured"))
	}

	if cfg.emptyPolicy != nil {
		cfg.charter.ApplyEmptyPolicy(cfg.emptyPolicy.String())
	}

	logger := logging.Default().With().
		Str("control", cfg.charter.Control).
		Logger()
	if cfg.logger != nil {
		logger = cfg.logger.With().Str("control", cfg.charter.Control).Logger()
	}

	return &Control{config: cfg, logger: logger}, nil
}

// Run executes the control once: scan the drop directory, aggregate the
// grid, and validate the instruction pipeline in charter order. Any failure
// aborts the whole job; there is no partial-success mode for schema and
// type reconciliation.
func (c *Control) Run(ctx context.Context) (*Result, error) {
	name := c.config.charter.Control
	start := time.Now()

	c.logger.Info().Str("dir", c.config.inputDir).Msg("Control run starting")

	g, err := grid.Load(c.config.inputDir, c.gridOptions()...)
	if err != nil {
		return nil, oerrors.NewJobError(name, "grid", err)
	}

	if err := c.checkRequiredFiles(g); err != nil {
		return nil, oerrors.NewJobError(name, "grid", err)
	}

	pipeline, err := c.config.charter.Build()
	if err != nil {
		return nil, oerrors.NewJobError(name, "charter", err)
	}

	columns, err := c.validate(ctx, pipeline, g)
	if err != nil {
		return nil, oerrors.NewJobError(name, "validate", err)
	}

	result := &Result{
		Control: name,
		Grid:    g,
		Columns: columns,
		Stats: Stats{
			Files:        g.Len(),
			Instructions: pipeline.Len(),
			Duration:     time.Since(start),
		},
	}

	c.logger.Info().
		Int("files", result.Stats.Files).
		Int("instructions", result.Stats.Instructions).
		Dur("took", result.Stats.Duration).
		Msg("Control run validated")

	return result, nil
}

// validate picks sequential or parallel validation per configuration.
func (c *Control) validate(ctx context.Context, pipeline *instructions.Pipeline, g *grid.Grid) (*instructions.Result, error) {
	if c.config.parallel {
		return pipeline.ValidateParallel(ctx, g, c.config.parallelLimit)
	}
	return pipeline.Validate(ctx, g)
}

// checkRequiredFiles verifies every non-optional charter file was delivered.
func (c *Control) checkRequiredFiles(g *grid.Grid) error {
	for _, shortname := range c.config.charter.Required() {
		if _, ok := g.SchemaOf(shortname); !ok {
			return oerrors.NewGridError(shortname, "",
				oerrors.New("required file not delivered"))
		}
	}
	return nil
}

// gridOptions translates charter input settings into grid options.
func (c *Control) gridOptions() []grid.Option {
	var opts []grid.Option
	input := c.config.charter.Input
	if input.Charset != "" {
		opts = append(opts, grid.WithCharset(input.Charset))
	}
	if input.Delimiter != "" {
		opts = append(opts, grid.WithDelimiter([]rune(input.Delimiter)[0]))
	}
	return opts
}

// Charter returns the control's charter.
func (c *Control) Charter() *charter.Charter {
	return c.config.charter
}

// ColumnType is a convenience lookup on a run result.
func (r *Result) ColumnType(column string) (datatype.DataType, bool) {
	return r.Columns.Type(column)
}
