package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/ptcheck/internal/store"
	"github.com/roach88/ptcheck/internal/testutil"
)

// decodeReport parses a JSON response carrying a RunReport.
func decodeReport(t *testing.T, stdout string) (CLIResponse, RunReport) {
	t.Helper()
	var raw struct {
		CLIResponse
		Data RunReport `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &raw), "stdout must be pure JSON: %s", stdout)
	return raw.CLIResponse, raw.Data
}

func TestAllCommand_ScalarPasses(t *testing.T) {
	stdout, _, err := execRoot(t, "--rank", "0", "all")
	require.NoError(t, err)

	assert.Contains(t, stdout, "Finished TestAll: all tests passed successfully")
	assert.Contains(t, stdout, "PASS all on scalar (11 outcomes")
}

func TestAllCommand_JSONKeepsTranscriptOnStderr(t *testing.T) {
	stdout, stderr, err := execRoot(t, "--rank", "0", "--format", "json", "all", "--kind", "grid", "--points", "9")
	require.NoError(t, err)

	resp, report := decodeReport(t, stdout)
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, report.Pass)
	assert.Equal(t, "grid", report.App)
	assert.Equal(t, 9, report.Points)
	assert.Empty(t, report.Faults)
	assert.Len(t, report.Outcomes, 11)
	assert.Len(t, report.Digest, 64)
	assert.Zero(t, report.Live)

	assert.Contains(t, stderr, "Finished TestAll")
	assert.NotContains(t, stdout, "TestAll")
}

func TestAllCommand_FaultFails(t *testing.T) {
	stdout, _, err := execRoot(t, "--rank", "0", "--format", "json", "all",
		"--kind", "grid", "--points", "9", "--fault", "truncate-pack")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	resp, report := decodeReport(t, stdout)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeCheckFailed, resp.Error.Code)
	assert.False(t, report.Pass)
}

func TestAllCommand_NonPrimaryRankIsSilent(t *testing.T) {
	stdout, _, err := execRoot(t, "--rank", "1", "all")
	require.NoError(t, err)

	assert.NotContains(t, stdout, "TestAll")
	assert.Contains(t, stdout, "PASS all on scalar")
}

func TestAllCommand_PrimaryFlagSelectsRank(t *testing.T) {
	stdout, _, err := execRoot(t, "--rank", "1", "--primary", "1", "all")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Finished TestAll")
}

func TestAllCommand_InvalidKind(t *testing.T) {
	_, _, err := execRoot(t, "all", "--kind", "sparse")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), `app.kind: unknown kind "sparse"`)
}

func TestAllCommand_UnknownFault(t *testing.T) {
	_, _, err := execRoot(t, "all", "--fault", "melt-cpu")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "melt-cpu")
}

func TestAllCommand_ConfigFileWithFlagOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "run.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
app:
  kind: grid
  points: 9
  faults: [truncate-pack]
times:
  t: 0.25
`), 0o644))

	// Only --kind is set, so the file's faults and times survive.
	stdout, _, err := execRoot(t, "--rank", "0", "--format", "json", "all", "--config", path, "--kind", "scalar")
	require.Error(t, err, "truncate-pack applies to the scalar vector too")

	_, report := decodeReport(t, stdout)
	assert.Equal(t, "scalar", report.App)
	assert.Equal(t, 0.25, report.T)
	assert.Equal(t, 0.5, report.FDT)
}

func TestAllCommand_MissingConfig(t *testing.T) {
	_, _, err := execRoot(t, "all", "--config", filepath.Join(t.TempDir(), "absent.cue"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestAllCommand_RecordsRunAndMetrics(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "runs.db")
	prom := filepath.Join(dir, "ptcheck.prom")

	stdout, _, err := execRoot(t, "--rank", "0", "--format", "json", "all", "--db", db, "--metrics-file", prom)
	require.NoError(t, err)

	_, report := decodeReport(t, stdout)
	require.NotEmpty(t, report.RunID)

	st, err := store.Open(db)
	require.NoError(t, err)
	defer st.Close()

	run, err := st.ReadRun(context.Background(), report.RunID)
	require.NoError(t, err)
	assert.Equal(t, report.Digest, run.Digest)
	assert.True(t, run.Pass)
	require.NoError(t, st.VerifyRun(context.Background(), report.RunID))

	data, err := os.ReadFile(prom)
	require.NoError(t, err)
	assert.Contains(t, string(data), `ptcheck_last_run_pass{app="scalar"} 1`)
	assert.Contains(t, string(data), `ptcheck_checks_total{check="buf",outcome="pass"} 2`)
}

func TestAllCommand_RecordsPointsAndFaults(t *testing.T) {
	db := filepath.Join(t.TempDir(), "runs.db")

	stdout, _, err := execRoot(t, "--rank", "0", "--format", "json", "all",
		"--kind", "grid", "--fault", "noisy-refine", "--db", db)
	require.Error(t, err)

	_, report := decodeReport(t, stdout)
	assert.Equal(t, 17, report.Points, "grid without --points uses the default size")
	assert.Equal(t, []string{"noisy-refine"}, report.Faults)

	st, err := store.Open(db)
	require.NoError(t, err)
	defer st.Close()

	run, err := st.ReadRun(context.Background(), report.RunID)
	require.NoError(t, err)
	assert.Equal(t, 17, run.Points)
	assert.Equal(t, []string{"noisy-refine"}, run.Faults)
	assert.NoError(t, st.VerifyRun(context.Background(), report.RunID))
}

func TestExecute_UsesInjectedIDs(t *testing.T) {
	db := filepath.Join(t.TempDir(), "runs.db")
	stdout := &bytes.Buffer{}

	root := &RootOptions{Format: "json"}
	opts := &AllOptions{RootOptions: root}
	opts.IDs = testutil.NewFixedIDGenerator("cli")

	cmd := &cobra.Command{Use: "all"}
	opts.AppFlags.register(cmd)
	cmd.SetOut(stdout)
	cmd.SetErr(&bytes.Buffer{})
	require.NoError(t, cmd.Flags().Set("db", db))

	err := execute(context.Background(), root, &opts.AppFlags, cmd, "all", allDriver)
	require.NoError(t, err)

	_, report := decodeReport(t, stdout.String())
	assert.Equal(t, "cli-0001", report.RunID)
}

func TestCheckCommand_SingleCheckWithAccess(t *testing.T) {
	stdout, _, err := execRoot(t, "--rank", "0", "check", "coarsen_refine", "--kind", "grid", "--points", "9")
	require.NoError(t, err)

	assert.Contains(t, stdout, "grid t=1.00e+00 level=1 n=5 ")
	assert.Contains(t, stdout, "PASS coarsen_refine on grid (1 outcomes")
}

func TestCheckCommand_Fails(t *testing.T) {
	_, _, err := execRoot(t, "--rank", "0", "check", "buf", "--kind", "grid", "--points", "9", "--fault", "truncate-pack")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestCheckCommand_UnknownCheck(t *testing.T) {
	_, _, err := execRoot(t, "check", "teleport")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), `unknown check "teleport"`)
}

func TestCheckCommand_MissingArg(t *testing.T) {
	_, _, err := execRoot(t, "check")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
