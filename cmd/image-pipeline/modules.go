package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	imagepipeline "github.com/menta2k/image-pipeline"
	"github.com/menta2k/image-pipeline/pkg/setting"
)

// newModulesCmd creates the modules command and its describe subcommand.
func newModulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "modules",
		Short: "List the registered modules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			engine := imagepipeline.New()

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tCATEGORY\tREVISION")
			for _, name := range engine.ModuleNames() {
				m, err := engine.NewModule(name)
				if err != nil {
					return err
				}
				fmt.Fprintf(tw, "%s\t%s\t%d\n", m.Name(), m.Category(), m.Revision())
			}
			return tw.Flush()
		},
	}

	cmd.AddCommand(newModulesDescribeCmd())

	return cmd
}

func newModulesDescribeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "describe <module>",
		Short: "Show the settings a module exposes",
		Long: `Describe prints a module's visible settings in order: the prompt shown
next to each control, the control type and the default value. Choice
settings also list their options.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine := imagepipeline.New()
			m, err := engine.NewModule(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (%s, revision %d)\n\n", m.Name(), m.Category(), m.Revision())

			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			for _, s := range m.VisibleSettings() {
				value := s.Text()
				if action, ok := s.(*setting.Action); ok {
					value = action.Label()
				}
				fmt.Fprintf(tw, "%s\t[%s]\t%s\n", s.Prompt(), s.Widget(), value)
				if choice, ok := s.(*setting.Choice); ok {
					fmt.Fprintf(tw, "\toptions:\t%s\n", strings.Join(choice.Options(), " | "))
				}
			}
			return tw.Flush()
		},
	}
}
