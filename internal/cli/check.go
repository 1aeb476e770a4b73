package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/ptcheck/internal/config"
	"github.com/roach88/ptcheck/pkg/conform"
)

// CheckOptions holds flags for the check command.
type CheckOptions struct {
	*RootOptions
	AppFlags
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CheckOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "check <name>",
		Short: "Run a single conformance check",
		Long: fmt.Sprintf(`Run one conformance check against a reference vector.

Unlike the full sequence, a single check prints the vector's own
access output when the vector provides it.

Checks: %s

Examples:
  ptcheck check buf --kind grid
  ptcheck check coarsen_refine --kind grid --fault noisy-coarsen
  ptcheck check spatial_norm --t 0.25 --format json`, strings.Join(conform.CheckNames, ", ")),
		Args:          cobra.ExactArgs(1),
		ValidArgs:     conform.CheckNames,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			return execute(cmd.Context(), opts.RootOptions, &opts.AppFlags, cmd, name,
				func(r conform.Runner, times config.TimesConfig) (bool, error) {
					pass, ok := r.Run(name, times.T, times.FDT, times.CDT)
					if !ok {
						return false, NewExitError(ExitCommandError,
							fmt.Sprintf("unknown check %q: must be one of %v", name, conform.CheckNames))
					}
					return pass, nil
				})
		},
	}

	opts.AppFlags.register(cmd)
	return cmd
}
