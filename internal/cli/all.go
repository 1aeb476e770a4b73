package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/ptcheck/internal/config"
	"github.com/roach88/ptcheck/pkg/conform"
)

// AllOptions holds flags for the all command.
type AllOptions struct {
	*RootOptions
	AppFlags
}

// NewAllCommand creates the all command.
func NewAllCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AllOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "all",
		Short: "Run every conformance check",
		Long: `Run the full conformance sequence against a reference vector.

Each automatic check runs twice, at t and at fdt. Clone and sum are
smoke checks whose output must be inspected by eye; they do not
affect the verdict.

Exit codes:
  0 - All automatic checks passed
  1 - At least one automatic check failed
  2 - Command error (bad flags, config or database)

Examples:
  ptcheck all
  ptcheck all --kind grid --points 33
  ptcheck all --kind grid --fault truncate-pack
  ptcheck all --config run.cue --db runs.db --metrics-file ptcheck.prom`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return execute(cmd.Context(), opts.RootOptions, &opts.AppFlags, cmd, "all", allDriver)
		},
	}

	opts.AppFlags.register(cmd)
	return cmd
}

func allDriver(r conform.Runner, times config.TimesConfig) (bool, error) {
	return r.All(times.T, times.FDT, times.CDT), nil
}
