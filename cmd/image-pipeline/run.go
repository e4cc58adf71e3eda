package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	imagepipeline "github.com/menta2k/image-pipeline"
	"github.com/menta2k/image-pipeline/pkg/pipeline"
)

// newRunCmd creates the run command.
func newRunCmd() *cobra.Command {
	var (
		pipelinePath string
		cycles       int
		showTables   bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a pipeline file",
		Long: `Run loads a pipeline from a YAML file and executes it against the local
filesystem. Settings written by older module revisions are upgraded before
the first cycle starts.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			engine := imagepipeline.New()

			frame := pipeline.NewFrame()
			cfg := pipeline.RunConfig{Frame: frame, Cycles: cycles}
			if _, err := engine.RunFile(cmd.Context(), pipelinePath, cfg); err != nil {
				return err
			}

			if showTables {
				printTables(cmd.OutOrStdout(), frame.Tables())
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&pipelinePath, "pipeline", "p", "", "path to the pipeline YAML file")
	cmd.Flags().IntVar(&cycles, "cycles", 0, "number of cycles to run (0 derives the count from the pipeline)")
	cmd.Flags().BoolVar(&showTables, "show-tables", false, "print the tables modules produced while running")
	_ = cmd.MarkFlagRequired("pipeline")

	return cmd
}

func printTables(w io.Writer, tables []pipeline.Table) {
	for _, table := range tables {
		fmt.Fprintln(w, table.Title)
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		for _, row := range table.Rows {
			fmt.Fprintf(tw, "  %s\t%s\n", row[0], row[1])
		}
		tw.Flush()
		fmt.Fprintln(w)
	}
}
