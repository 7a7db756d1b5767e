package cli

import (
	"github.com/spf13/cobra"

	"github.com/openvolley/scoresheet/pkg/logger"
)

// NewConvertCommand creates the convert command.
func NewConvertCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "convert <input> <output>",
		Short: "Convert a match file between YAML, JSON and msgpack",
		Long: `Convert a match file. Encodings follow the file extensions:
.yaml/.yml, .json and .msgpack/.mpk/.mp.

Examples:
  scoresheet convert match.yaml match.msgpack
  scoresheet convert log.msgpack log.json`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			mf, err := LoadMatchFile(args[0])
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to load match file", err)
			}
			if err := SaveMatchFile(args[1], mf); err != nil {
				return WrapExitError(ExitCommandError, "failed to write match file", err)
			}
			logger.Get().Debug(cmd.Context(), "match file converted",
				logger.String("from", args[0]), logger.String("to", args[1]), logger.Int("events", len(mf.Events)))
			return nil
		},
	}
}
