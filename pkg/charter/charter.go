// Package charter loads the operator-authored declaration of a control: the
// source files a job expects and the ordered instruction list that must
// reconcile them. Charters are YAML documents; loading one produces plain
// data, and Build compiles that data into an instruction pipeline with
// typed errors for anything the operator got wrong.
package charter

import (
	"errors"
	"os"
	"strconv"

	"github.com/goccy/go-yaml"

	"github.com/openrec/openrec/pkg/datatype"
	oerrors "github.com/openrec/openrec/pkg/errors"
	"github.com/openrec/openrec/pkg/instructions"
)

// Charter is one control's declaration.
type Charter struct {
	// Control is the job's name, used in logs and the top-level JobError.
	Control string `yaml:"control"`

	// Description is free operator text.
	Description string `yaml:"description,omitempty"`

	// Input configures where and how source files are read.
	Input Input `yaml:"input,omitempty"`

	// Files declares the source files the control expects.
	Files []FileDecl `yaml:"files"`

	// Instructions is the ordered operation list.
	Instructions []InstructionDecl `yaml:"instructions"`

	path string
}

// Input configures source file reading.
type Input struct {
	// Dir is the drop directory holding the run's files. The CLI may
	// override it.
	Dir string `yaml:"dir,omitempty"`

	// Charset names the file encoding (utf-8, iso-8859-1, windows-1252).
	Charset string `yaml:"charset,omitempty"`

	// Delimiter overrides the CSV field delimiter.
	Delimiter string `yaml:"delimiter,omitempty"`
}

// FileDecl declares one expected source file.
type FileDecl struct {
	// Shortname is the file's stable logical identity.
	Shortname string `yaml:"shortname"`

	// Optional marks a feed that legitimately may not be delivered in a
	// given run. Non-optional files must be present or the job fails.
	Optional bool `yaml:"optional,omitempty"`
}

// InstructionDecl is the charter form of one instruction, before compiling.
type InstructionDecl struct {
	Kind       string   `yaml:"kind"`
	Column     string   `yaml:"column"`
	Sources    []string `yaml:"sources,omitempty"`
	Source     string   `yaml:"source,omitempty"`
	Refs       []string `yaml:"refs,omitempty"`
	Expression string   `yaml:"expression,omitempty"`
	Type       string   `yaml:"type,omitempty"`
	OnEmpty    string   `yaml:"on_empty,omitempty"`
}

// Load reads and parses a charter file.
func Load(path string) (*Charter, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, oerrors.WrapIO("read", path, err)
	}

	c, err := Parse(data)
	if err != nil {
		var ce *oerrors.CharterError
		if errors.As(err, &ce) {
			ce.Path = path
			return nil, ce
		}
		return nil, oerrors.NewCharterError(path, "", err)
	}

	c.path = path
	return c, nil
}

// Parse parses a charter document from bytes.
func Parse(data []byte) (*Charter, error) {
	var c Charter
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, oerrors.NewCharterError("", "", err)
	}

	if c.Control == "" {
		return nil, oerrors.NewCharterError("", "control",
			oerrors.New("control name is required"))
	}

	return &c, nil
}

// Path returns the file the charter was loaded from, when it was.
func (c *Charter) Path() string {
	return c.path
}

// Required returns the shortnames of the non-optional files.
func (c *Charter) Required() []string {
	var required []string
	for _, f := range c.Files {
		if !f.Optional {
			required = append(required, f.Shortname)
		}
	}
	return required
}

// ApplyEmptyPolicy sets the empty-resolution policy on every instruction
// that did not declare one of its own. Declared policies are left alone.
func (c *Charter) ApplyEmptyPolicy(policy string) {
	for i := range c.Instructions {
		if c.Instructions[i].OnEmpty == "" {
			c.Instructions[i].OnEmpty = policy
		}
	}
}

// Build compiles the charter's instruction declarations into a pipeline.
func (c *Charter) Build() (*instructions.Pipeline, error) {
	items := make([]instructions.Instruction, 0, len(c.Instructions))

	for i, decl := range c.Instructions {
		item, err := compile(decl)
		if err != nil {
			return nil, oerrors.NewCharterError(c.path, fieldAt(i, decl), err)
		}
		items = append(items, item)
	}

	pipeline, err := instructions.NewPipeline(items...)
	if err != nil {
		return nil, oerrors.NewCharterError(c.path, "instructions", err)
	}

	return pipeline, nil
}

// compile turns one declaration into a concrete instruction.
func compile(decl InstructionDecl) (instructions.Instruction, error) {
	if decl.Column == "" {
		return nil, oerrors.New("column is required")
	}

	switch decl.Kind {
	case "merge":
		if len(decl.Sources) == 0 {
			return nil, oerrors.New("merge requires at least one source")
		}
		policy, err := instructions.ParseEmptyPolicy(decl.OnEmpty)
		if err != nil {
			return nil, err
		}
		return &instructions.MergeColumn{
			Target:  decl.Column,
			Sources: decl.Sources,
			OnEmpty: policy,
		}, nil

	case "project":
		if decl.Source == "" {
			return nil, oerrors.New("project requires a source")
		}
		policy, err := instructions.ParseEmptyPolicy(decl.OnEmpty)
		if err != nil {
			return nil, err
		}
		return &instructions.Project{
			Target:  decl.Column,
			Source:  decl.Source,
			OnEmpty: policy,
		}, nil

	case "derive":
		if decl.Expression == "" {
			return nil, oerrors.New("derive requires an expression")
		}
		dt, err := datatype.ParseCode(decl.Type)
		if err != nil {
			return nil, err
		}
		if dt == datatype.Unknown {
			return nil, oerrors.New("derive cannot declare the ?? placeholder as its type")
		}
		return &instructions.Derive{
			Target:     decl.Column,
			Expression: decl.Expression,
			Refs:       decl.Refs,
			Type:       dt,
		}, nil

	case "filter":
		if decl.Expression == "" {
			return nil, oerrors.New("filter requires an expression")
		}
		return &instructions.Filter{
			Target:     decl.Column,
			Expression: decl.Expression,
			Refs:       decl.Refs,
		}, nil
	}

	return nil, oerrors.New("unknown instruction kind " + decl.Kind)
}

// fieldAt names a declaration for error reporting.
func fieldAt(index int, decl InstructionDecl) string {
	if decl.Column != "" {
		return "instructions." + decl.Column
	}
	return "instructions[" + strconv.Itoa(index) + "]"
}
