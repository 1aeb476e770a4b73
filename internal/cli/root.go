// Package cli implements the ptcheck command tree.
package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"github.com/roach88/ptcheck/pkg/report"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
	NoColor bool
	Rank    int // this process's rank; taken from the launcher environment unless set
	Primary int // rank that writes the transcript

	// Logger is built in PersistentPreRunE from the flags above.
	Logger *slog.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the ptcheck CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "ptcheck",
		Short: "Conformance checks for parallel-in-time vector implementations",
		Long: `ptcheck runs the conformance checks a parallel-in-time solver relies on
against a vector implementation: clone, sum, spatial norm, buffer
round trip and, when supplied, spatial coarsening and refinement.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			opts.Logger = newLogger(cmd.ErrOrStderr(), opts.Verbose, opts.NoColor)
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().BoolVar(&opts.NoColor, "no-color", false, "disable colored log output")
	cmd.PersistentFlags().IntVar(&opts.Rank, "rank", 0, "rank of this process (default: from launcher environment)")
	cmd.PersistentFlags().IntVar(&opts.Primary, "primary", 0, "rank that writes the transcript")

	cmd.AddCommand(NewAllCommand(opts))
	cmd.AddCommand(NewCheckCommand(opts))
	cmd.AddCommand(NewScenarioCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// newLogger returns a tint handler on w. Verbose lowers the level to Debug.
func newLogger(w io.Writer, verbose, noColor bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: "15:04:05",
		NoColor:    noColor,
	}))
}

// logger returns the configured logger, or a discarding one when the
// command runs without the root's PersistentPreRunE (as in unit tests).
func (o *RootOptions) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return o.Logger
}

// comm returns the rank source: the --rank flag when set, otherwise the
// launcher environment.
func (o *RootOptions) comm(cmd *cobra.Command) report.Comm {
	if f := cmd.Flags().Lookup("rank"); f != nil && f.Changed {
		return report.StaticComm(o.Rank)
	}
	return report.RankFromEnv()
}

// primary returns the --primary flag when set, otherwise fallback.
func (o *RootOptions) primary(cmd *cobra.Command, fallback int) int {
	if f := cmd.Flags().Lookup("primary"); f != nil && f.Changed {
		return o.Primary
	}
	return fallback
}
