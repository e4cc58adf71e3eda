// Package main implements the command-line interface for the image
// pipeline tool.
//
// The main CLI commands are:
//   - run: load a pipeline file and execute it cycle by cycle
//   - modules: list the registered modules
//   - modules describe: show the settings a module exposes
//
// Each command has various flags for configuration. See the help output
// for details.
package main

import (
	"github.com/spf13/cobra"

	imagepipeline "github.com/menta2k/image-pipeline"
	"github.com/menta2k/image-pipeline/pkg/log"
)

func newRootCmd() *cobra.Command {
	var (
		logLevel  string
		logFormat string
	)

	cmd := &cobra.Command{
		Use:   "image-pipeline",
		Short: "Run image processing pipelines from the command line",
		Long: `image-pipeline executes pipeline files headless. A pipeline file names a
sequence of modules (loaders, filters, savers) together with their settings;
the tool loads it, upgrades legacy settings to the current revisions and runs
every module over each image set.`,
		Version:       imagepipeline.Version,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			if err := log.SetLevel(logLevel); err != nil {
				return err
			}
			return log.SetFormat(logFormat)
		},
	}

	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&logFormat, "log-format", "json", "log output format (json or text)")

	cmd.AddCommand(newRunCmd())
	cmd.AddCommand(newModulesCmd())

	return cmd
}
