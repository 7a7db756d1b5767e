package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math/rand/v2"

	"github.com/spf13/cobra"

	"github.com/openvolley/scoresheet/internal/domain/derive"
	"github.com/openvolley/scoresheet/internal/domain/model"
	"github.com/openvolley/scoresheet/internal/domain/sides"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Rounds int
	Seed   uint64
}

// ReplayResult is the outcome of a determinism check.
type ReplayResult struct {
	MatchID       string   `json:"matchId"`
	Events        int      `json:"events"`
	Rounds        int      `json:"rounds"`
	Deterministic bool     `json:"deterministic"`
	Differences   []string `json:"differences,omitempty"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay <match-file>",
		Short: "Re-derive a match from shuffled logs and verify determinism",
		Long: `Derive every set view and the match summary from the file, then derive
them again from shuffled copies of the event log. Any difference means the
derivation depends on arrival order.

Exit codes:
  0 - All views are identical
  1 - Determinism verification failed (differences detected)
  2 - Command error (file not found, etc.)`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, cmd, args[0])
		},
	}

	cmd.Flags().IntVar(&opts.Rounds, "rounds", 3, "number of shuffled replays")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", 1, "shuffle seed")

	return cmd
}

func runReplay(opts *ReplayOptions, cmd *cobra.Command, path string) error {
	if opts.Rounds < 1 {
		return NewExitError(ExitCommandError, "rounds must be at least 1")
	}
	mf, err := LoadMatchFile(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load match file", err)
	}

	result, err := Replay(mf, opts.Rounds, opts.Seed)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to replay match", err)
	}

	if opts.Format == "json" {
		if err := writeJSON(cmd.OutOrStdout(), result); err != nil {
			return err
		}
	} else {
		writeReplayText(cmd.OutOrStdout(), result)
	}
	if !result.Deterministic {
		return NewExitError(ExitFailure, "determinism verification failed")
	}
	return nil
}

// Replay derives every view of mf once in file order and again from rounds
// shuffled copies of its log, reporting each view that differs.
func Replay(mf *MatchFile, rounds int, seed uint64) (ReplayResult, error) {
	want, err := snapshotViews(mf.Events, mf)
	if err != nil {
		return ReplayResult{}, err
	}

	res := ReplayResult{MatchID: mf.Match.ID, Events: len(mf.Events), Rounds: rounds, Deterministic: true}
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	for round := 1; round <= rounds; round++ {
		shuffled := make([]model.Event, len(mf.Events))
		copy(shuffled, mf.Events)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

		got, err := snapshotViews(shuffled, mf)
		if err != nil {
			return ReplayResult{}, err
		}
		for _, name := range viewNames() {
			if !bytes.Equal(want[name], got[name]) {
				res.Deterministic = false
				res.Differences = append(res.Differences, fmt.Sprintf("round %d: %s", round, name))
			}
		}
	}
	return res, nil
}

func viewNames() []string {
	names := []string{"summary"}
	for set := model.MinSet; set <= model.MaxSet; set++ {
		for _, view := range []sides.View{sides.ViewSecondReferee, sides.ViewFirstReferee} {
			names = append(names, fmt.Sprintf("set %d (%s)", set, view))
		}
	}
	return names
}

func snapshotViews(events []model.Event, mf *MatchFile) (map[string][]byte, error) {
	out := make(map[string][]byte, 1+2*model.MaxSet)
	sum, err := json.Marshal(derive.Summarize(events, mf.Match, mf.Sets))
	if err != nil {
		return nil, err
	}
	out["summary"] = sum
	for set := model.MinSet; set <= model.MaxSet; set++ {
		for _, view := range []sides.View{sides.ViewSecondReferee, sides.ViewFirstReferee} {
			data, err := json.Marshal(derive.Derive(events, mf.Match, mf.Sets, set, view))
			if err != nil {
				return nil, err
			}
			out[fmt.Sprintf("set %d (%s)", set, view)] = data
		}
	}
	return out, nil
}

func writeReplayText(w io.Writer, r ReplayResult) {
	fmt.Fprintf(w, "Match %s: %d events, %d shuffled replays\n", r.MatchID, r.Events, r.Rounds)
	if r.Deterministic {
		fmt.Fprintln(w, "All views deterministic.")
		return
	}
	fmt.Fprintln(w, "Differences:")
	for _, d := range r.Differences {
		fmt.Fprintf(w, "  %s\n", d)
	}
}
