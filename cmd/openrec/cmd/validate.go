package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openrec/openrec/pkg/charter"
)

var validateCmd = &cobra.Command{
	Use:   "validate <charter.yaml>",
	Short: "Check that a charter compiles",
	Long: `Validate loads a charter file and compiles its instruction list
without touching any source files. Use it to vet charter edits before the
next scheduled run.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := charter.Load(args[0])
		if err != nil {
			return err
		}

		pipeline, err := c.Build()
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "charter %s: %d files declared, %d instructions, ok\n",
			c.Control, len(c.Files), pipeline.Len())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
