package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/openrec/openrec"
	"github.com/openrec/openrec/pkg/constants"
	"github.com/openrec/openrec/pkg/instructions"
	"github.com/openrec/openrec/pkg/logging"
)

var (
	runCharterPath string
	runInputDir    string
	runParallel    int
	runOnEmpty     string
	runTimeout     time.Duration
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a control once",
	Long: `Run loads the charter, scans the input directory, aggregates the
source files into a typed grid, and validates the charter's instructions
against it. The resolved column types are printed on success.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		opts := []openrec.Option{
			openrec.WithCharterFile(runCharterPath),
		}
		if runInputDir != "" {
			opts = append(opts, openrec.WithInputDir(runInputDir))
		}
		if runParallel > 0 {
			opts = append(opts, openrec.WithParallelValidation(runParallel))
		}
		if runOnEmpty != "" {
			policy, err := instructions.ParseEmptyPolicy(runOnEmpty)
			if err != nil {
				return err
			}
			opts = append(opts, openrec.WithEmptyPolicy(policy))
		}

		control, err := openrec.New(opts...)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), runTimeout)
		defer cancel()

		result, err := control.Run(ctx)
		if err != nil {
			logging.Err(err).Msg("Control run failed")
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "control %s: %d files, %d instructions, took %s\n",
			result.Control, result.Stats.Files, result.Stats.Instructions, result.Stats.Duration)
		for _, column := range result.Columns.Columns() {
			dt, _ := result.Columns.Type(column)
			fmt.Fprintf(out, "  %-24s %s (%s)\n", column, dt, dt.Code())
		}
		return nil
	},
}

func init() {
	runCmd.Flags().StringVarP(&runCharterPath, "charter", "c", "", "charter YAML file (required)")
	runCmd.Flags().StringVarP(&runInputDir, "input", "i", "", "input directory (overrides the charter)")
	runCmd.Flags().IntVar(&runParallel, "parallel", 0, "validate instructions in parallel with this many workers")
	runCmd.Flags().StringVar(&runOnEmpty, "on-empty", "", "empty-resolution policy override (default-string, reject)")
	runCmd.Flags().DurationVar(&runTimeout, "timeout", constants.DefaultJobTimeout, "abort the run after this long")
	_ = runCmd.MarkFlagRequired("charter")

	rootCmd.AddCommand(runCmd)
}
