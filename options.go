package openrec

import (
	"github.com/rs/zerolog"

	"github.com/openrec/openrec/pkg/charter"
	oerrors "github.com/openrec/openrec/pkg/errors"
	"github.com/openrec/openrec/pkg/instructions"
)

// Option is a function that configures a Control.
type Option func(*config) error

// config holds Control configuration assembled from options.
type config struct {
	charter       *charter.Charter
	inputDir      string
	parallel      bool
	parallelLimit int
	emptyPolicy   *instructions.EmptyPolicy
	logger        *zerolog.Logger
}

func defaultConfig() *config {
	return &config{}
}

// WithCharter sets the control's charter.
func WithCharter(c *charter.Charter) Option {
	return func(cfg *config) error {
		if c == nil {
			return oerrors.New("charter cannot be nil")
		}
		cfg.charter = c
		return nil
	}
}

// WithCharterFile loads the charter from a YAML file.
func WithCharterFile(path string) Option {
	return func(cfg *config) error {
		c, err := charter.Load(path)
		if err != nil {
			return err
		}
		cfg.charter = c
		return nil
	}
}

// WithInputDir overrides the drop directory declared in the charter.
func WithInputDir(dir string) Option {
	return func(cfg *config) error {
		cfg.inputDir = dir
		return nil
	}
}

// WithParallelValidation fans instruction validation out across goroutines.
// Error reporting stays in charter order regardless. limit <= 0 uses the
// default cap.
func WithParallelValidation(limit int) Option {
	return func(cfg *config) error {
		cfg.parallel = true
		cfg.parallelLimit = limit
		return nil
	}
}

// WithEmptyPolicy overrides the empty-resolution policy of every merge and
// project instruction that did not declare one in the charter.
func WithEmptyPolicy(policy instructions.EmptyPolicy) Option {
	return func(cfg *config) error {
		cfg.emptyPolicy = &policy
		return nil
	}
}

// WithLogger sets the logger the control runs with.
func WithLogger(logger zerolog.Logger) Option {
	return func(cfg *config) error {
		cfg.logger = &logger
		return nil
	}
}
