package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/openvolley/scoresheet/internal/domain/derive"
	"github.com/openvolley/scoresheet/internal/domain/ledger"
	"github.com/openvolley/scoresheet/internal/domain/lineup"
	"github.com/openvolley/scoresheet/internal/domain/model"
	"github.com/openvolley/scoresheet/internal/domain/sides"
	"github.com/openvolley/scoresheet/pkg/logger"
)

// DeriveOptions holds flags for the derive command.
type DeriveOptions struct {
	*RootOptions
	Set          int
	View         string
	SanctionRows int
}

// NewDeriveCommand creates the derive command.
func NewDeriveCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DeriveOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "derive <match-file>",
		Short: "Derive the scoresheet view of one set",
		Long: `Derive the scoresheet of one set from a match file.

Examples:
  scoresheet derive match.yaml --set 2
  scoresheet derive match.json --set 5 --view first_referee --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDerive(opts, cmd, args[0])
		},
	}

	cmd.Flags().IntVar(&opts.Set, "set", 1, "set index (1-5)")
	cmd.Flags().StringVar(&opts.View, "view", string(sides.ViewSecondReferee), "court view (second_referee|first_referee)")
	cmd.Flags().IntVar(&opts.SanctionRows, "sanction-rows", ledger.DefaultSanctionRows, "rows of the sanctions box")

	return cmd
}

func runDerive(opts *DeriveOptions, cmd *cobra.Command, path string) error {
	if opts.Set < model.MinSet || opts.Set > model.MaxSet {
		return NewExitError(ExitCommandError, fmt.Sprintf("set must be between %d and %d, got %d", model.MinSet, model.MaxSet, opts.Set))
	}
	view, err := parseView(opts.View)
	if err != nil {
		return err
	}
	mf, err := LoadMatchFile(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load match file", err)
	}
	logger.Get().Debug(cmd.Context(), "match file loaded",
		logger.String("path", path), logger.Int("events", len(mf.Events)), logger.Int("sets", len(mf.Sets)))

	v := derive.Derive(mf.Events, mf.Match, mf.Sets, opts.Set, view, derive.WithSanctionRows(opts.SanctionRows))
	if opts.Format == "json" {
		return writeJSON(cmd.OutOrStdout(), v)
	}
	writeSetText(cmd.OutOrStdout(), v)
	return nil
}

func parseView(s string) (sides.View, error) {
	switch sides.View(s) {
	case "":
		return sides.ViewSecondReferee, nil
	case sides.ViewSecondReferee, sides.ViewFirstReferee:
		return sides.View(s), nil
	}
	return "", NewExitError(ExitCommandError, fmt.Sprintf("invalid view %q", s))
}

func writeSetText(w io.Writer, v derive.SetView) {
	state := "not started"
	switch {
	case v.Finished:
		state = "finished"
	case v.Started:
		state = "in progress"
	}
	fmt.Fprintf(w, "Match %s, set %d (%s)\n", v.MatchID, v.SetIndex, state)
	fmt.Fprintf(w, "Rally: %s  Server: %s\n", v.Rally, v.ServerLabel)
	if v.CourtSwitchDue {
		fmt.Fprintln(w, "Court switch due")
	}
	for _, t := range []derive.TeamView{v.A, v.B} {
		fmt.Fprintf(w, "\n%s %s (%s, %s) %s\n", t.Label, t.ShortName, t.Side, t.Position, t.Serves)
		fmt.Fprintf(w, "  Points:        %d\n", t.Points)
		fmt.Fprintf(w, "  Lineup:        %s\n", lineupText(t.Lineup))
		fmt.Fprintf(w, "  Timeouts:      %s %s\n", countText(t.Counts.Timeouts), strings.Join(t.TimeoutScores, " "))
		fmt.Fprintf(w, "  Substitutions: %s\n", countText(t.Counts.Substitutions))
	}
	if n := len(v.Sanctions.Records); n > 0 {
		fmt.Fprintf(w, "\nSanctions: %d", n)
		if o := len(v.Sanctions.Overflow); o > 0 {
			fmt.Fprintf(w, " (+%d overflow)", o)
		}
		fmt.Fprintln(w)
	}
}

func lineupText(s lineup.State) string {
	if !s.Known {
		return "-"
	}
	return strings.Join(s.Numbers(), " ")
}

func countText(n *int) string {
	if n == nil {
		return "-"
	}
	return fmt.Sprint(*n)
}
