package cli

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/ptcheck/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	DB     string
	Limit  int
	Verify bool
}

// HistoryEntry is one run in the history listing.
type HistoryEntry struct {
	store.RunSummary
	Verified *bool  `json:"verified,omitempty"` // set with --verify
	Problem  string `json:"problem,omitempty"`
}

// HistoryResult is the data returned by the history command.
type HistoryResult struct {
	Runs          []HistoryEntry `json:"runs"`
	CheckFailures map[string]int `json:"check_failures"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded conformance runs",
		Long: `List the runs recorded in a history database, oldest first, with
the number of failed automatic checks in each.

With --verify, every listed run's digest is recomputed from its stored
outcomes; a mismatch means the rows were changed after recording.

Exit codes:
  0 - Listing succeeded (and every run verified)
  1 - A run failed verification
  2 - Command error (missing database, etc.)

Examples:
  ptcheck history --db runs.db
  ptcheck history --db runs.db --limit 5 --verify
  ptcheck history --db runs.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.DB, "db", "", "history database (required)")
	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 20, "show the most recent N runs (0 for all)")
	cmd.Flags().BoolVar(&opts.Verify, "verify", false, "recompute and compare run digests")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	out := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
	ctx := cmd.Context()

	if _, err := os.Stat(opts.DB); os.IsNotExist(err) {
		return NewExitError(ExitCommandError, fmt.Sprintf("database not found: %s", opts.DB))
	}
	st, err := store.Open(opts.DB)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	runs, err := st.ListRuns(ctx, opts.Limit)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list runs", err)
	}
	failures, err := st.CheckFailures(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to count failures", err)
	}

	result := HistoryResult{
		Runs:          make([]HistoryEntry, len(runs)),
		CheckFailures: failures,
	}
	mismatches := 0
	for i, r := range runs {
		result.Runs[i] = HistoryEntry{RunSummary: r}
		if !opts.Verify {
			continue
		}
		ok := true
		if err := st.VerifyRun(ctx, r.ID); err != nil {
			var mismatch *store.DigestMismatchError
			if !errors.As(err, &mismatch) {
				return WrapExitError(ExitCommandError, "failed to verify run", err)
			}
			ok = false
			mismatches++
			result.Runs[i].Problem = mismatch.Error()
		}
		result.Runs[i].Verified = &ok
	}

	if out.JSON() {
		if mismatches > 0 {
			if err := out.Failure(CodeDigestMismatch, fmt.Sprintf("%d run(s) failed verification", mismatches), result); err != nil {
				return err
			}
		} else if err := out.Success(result); err != nil {
			return err
		}
	} else {
		printHistory(out, result, opts.Verify)
	}

	if mismatches > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d run(s) failed verification", mismatches))
	}
	return nil
}

func printHistory(out *OutputFormatter, result HistoryResult, verify bool) {
	if len(result.Runs) == 0 {
		fmt.Fprintln(out.Writer, "No runs recorded.")
		return
	}

	tw := tabwriter.NewWriter(out.Writer, 0, 4, 2, ' ', 0)
	header := "SEQ\tID\tAPP\tT\tFDT\tCDT\tVERDICT\tFAILED\tDIGEST"
	if verify {
		header += "\tVERIFIED"
	}
	fmt.Fprintln(tw, header)
	for _, r := range result.Runs {
		verdict := "pass"
		if !r.Pass {
			verdict = "fail"
		}
		line := fmt.Sprintf("%d\t%s\t%s\t%g\t%g\t%g\t%s\t%d/%d\t%.12s",
			r.Seq, r.ID, r.App, r.T, r.FDT, r.CDT, verdict, r.Failed, r.Outcomes, r.Digest)
		if verify {
			v := "ok"
			if r.Verified != nil && !*r.Verified {
				v = "MISMATCH"
			}
			line += "\t" + v
		}
		fmt.Fprintln(tw, line)
	}
	tw.Flush()

	if len(result.CheckFailures) == 0 {
		return
	}
	checks := make([]string, 0, len(result.CheckFailures))
	for c := range result.CheckFailures {
		checks = append(checks, c)
	}
	sort.Strings(checks)
	fmt.Fprintln(out.Writer)
	fmt.Fprintln(out.Writer, "Failures by check:")
	for _, c := range checks {
		fmt.Fprintf(out.Writer, "  %s: %d\n", c, result.CheckFailures[c])
	}
}
