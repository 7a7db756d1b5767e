// Package cli implements the scoresheet command line tool. Every command
// works offline on a match file and shares the derivation core with the
// HTTP service.
package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/openvolley/scoresheet/pkg/logger"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command of the scoresheet CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "scoresheet",
		Short: "Derive volleyball scoresheets from match event logs",
		Long: `Derive the official volleyball scoresheet from a match file.

A match file holds the match record, the stored set records and the event
log, encoded as YAML, JSON or msgpack (chosen by file extension).`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			level := "warn"
			if opts.Verbose {
				level = "debug"
			}
			if err := logger.Init(logger.WithWriter(cmd.ErrOrStderr())); err != nil {
				return WrapExitError(ExitCommandError, "init logging", err)
			}
			return logger.SetLevelString(level)
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewDeriveCommand(opts))
	cmd.AddCommand(NewSummaryCommand(opts))
	cmd.AddCommand(NewReplayCommand(opts))
	cmd.AddCommand(NewConvertCommand(opts))

	return cmd
}
