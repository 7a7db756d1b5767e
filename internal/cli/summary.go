package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/openvolley/scoresheet/internal/domain/derive"
	"github.com/openvolley/scoresheet/internal/domain/ledger"
	"github.com/openvolley/scoresheet/pkg/logger"
)

// SummaryOptions holds flags for the summary command.
type SummaryOptions struct {
	*RootOptions
	SanctionRows int
}

// NewSummaryCommand creates the summary command.
func NewSummaryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SummaryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "summary <match-file>",
		Short: "Print the results box of a match",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mf, err := LoadMatchFile(args[0])
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to load match file", err)
			}
			logger.Get().Debug(cmd.Context(), "match file loaded",
				logger.String("path", args[0]), logger.Int("events", len(mf.Events)))

			sum := derive.Summarize(mf.Events, mf.Match, mf.Sets, derive.WithSanctionRows(opts.SanctionRows))
			if opts.Format == "json" {
				return writeJSON(cmd.OutOrStdout(), sum)
			}
			writeSummaryText(cmd.OutOrStdout(), sum)
			return nil
		},
	}

	cmd.Flags().IntVar(&opts.SanctionRows, "sanction-rows", ledger.DefaultSanctionRows, "rows of the sanctions box")

	return cmd
}

func writeSummaryText(w io.Writer, s derive.MatchSummary) {
	fmt.Fprintf(w, "Match %s: %s vs %s\n", s.MatchID, s.TeamA, s.TeamB)
	for _, row := range s.Result.Sets {
		if !row.Played {
			continue
		}
		mark := ""
		if !row.Finished {
			mark = " *"
		}
		duration := "-"
		if row.Duration != nil {
			duration = fmt.Sprintf("%d'", *row.Duration)
		}
		fmt.Fprintf(w, "  Set %d  %2d - %-2d  %s%s\n", row.Index, row.TeamAPoints, row.TeamBPoints, duration, mark)
	}
	fmt.Fprintf(w, "Sets: %d - %d\n", s.Result.TeamASets, s.Result.TeamBSets)
	if s.Result.IsMatchFinished {
		fmt.Fprintf(w, "Winner: %s (%s)\n", s.Result.Winner, s.Result.Result)
	}
}
