// Command ptcheck runs parallel-in-time vector conformance checks.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/ptcheck/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
