package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openrec/openrec/pkg/grid"
)

var inspectCharset string

var inspectCmd = &cobra.Command{
	Use:   "inspect <dir>",
	Short: "Show the schemas of a drop directory",
	Long: `Inspect scans a drop directory the way a control run would and
prints every loaded file's headers and declared types, without running any
instructions.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var opts []grid.Option
		if inspectCharset != "" {
			opts = append(opts, grid.WithCharset(inspectCharset))
		}

		g, err := grid.Load(args[0], opts...)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, file := range g.Files() {
			s, _ := g.SchemaOf(file.Shortname())
			fmt.Fprintf(out, "%s  delivered %s  (%s)\n",
				file.Shortname(), file.Timestamp().Format("2006-01-02 15:04:05"), file.Filename())
			for _, header := range s.Headers() {
				dt, _ := s.DataType(header)
				fmt.Fprintf(out, "  %-24s %s (%s)\n", header, dt, dt.Code())
			}
		}
		return nil
	},
}

func init() {
	inspectCmd.Flags().StringVar(&inspectCharset, "charset", "", "source file charset (utf-8, iso-8859-1, windows-1252)")
	rootCmd.AddCommand(inspectCmd)
}
